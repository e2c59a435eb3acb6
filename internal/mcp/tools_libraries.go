package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/chessnote/internal/domain/library"
)

func registerLibraryTools(server *sdkmcp.Server, libraries LibraryService) {
	addTool(server, "create_library",
		"Create a library to group games.",
		func(ctx context.Context, ownerID string, in CreateLibraryParams) (any, error) {
			return libraries.Create(ctx, ownerID, library.CreateRequest{
				Title:       in.Title,
				Description: in.Description,
				IsPublic:    in.IsPublic,
			})
		})

	addTool(server, "list_libraries",
		"List your libraries, or every public library with public=true.",
		func(ctx context.Context, ownerID string, in ListLibrariesParams) (any, error) {
			list, err := libraries.List(ctx, in.Public, ownerID)
			if err != nil {
				return nil, err
			}
			if list == nil {
				list = []library.Library{}
			}
			return ListLibrariesResponse{Libraries: list}, nil
		})

	addTool(server, "update_library",
		"Change the title, description or visibility of a library you own.",
		func(ctx context.Context, ownerID string, in UpdateLibraryParams) (any, error) {
			return libraries.Update(ctx, ownerID, in.ID, library.UpdateRequest{
				Title:       in.Title,
				Description: in.Description,
				IsPublic:    in.IsPublic,
			})
		})

	addTool(server, "delete_library",
		"Delete a library you own. Its games move to uncategorized unless detach_games is false.",
		func(ctx context.Context, ownerID string, in DeleteLibraryParams) (any, error) {
			detach := true
			if in.DetachGames != nil {
				detach = *in.DetachGames
			}
			if err := libraries.Delete(ctx, ownerID, in.ID, library.DeleteOptions{DetachGames: detach}); err != nil {
				return nil, err
			}
			return DeletedResponse{ID: in.ID, Deleted: true}, nil
		})
}
