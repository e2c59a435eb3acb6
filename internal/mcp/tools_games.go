package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/chessnote/internal/domain/game"
	"github.com/rpggio/chessnote/internal/domain/tree"
)

func registerGameTools(server *sdkmcp.Server, games GameService) {
	addTool(server, "save_game",
		"Save an analysis tree as a new game. Boards are dropped before storage and regenerated on load.",
		func(ctx context.Context, ownerID string, in SaveGameParams) (any, error) {
			root, err := decodeRoot(in.Root)
			if err != nil {
				return nil, err
			}
			g, err := games.Save(ctx, ownerID, game.SaveRequest{
				Title:     in.Title,
				FEN:       in.FEN,
				Root:      root,
				Metadata:  in.Metadata,
				IsPublic:  in.IsPublic,
				LibraryID: emptyAsNil(in.LibraryID),
			})
			if err != nil {
				return nil, err
			}
			return gameResponse(games, g), nil
		})

	addTool(server, "load_game",
		"Load a game and its analysis tree. Private games load only for their owner. Set hydrate to regenerate boards and parent links.",
		func(ctx context.Context, ownerID string, in LoadGameParams) (any, error) {
			loaded, err := games.Load(ctx, ownerID, in.ID, game.LoadOptions{Hydrate: in.Hydrate})
			if err != nil {
				return nil, err
			}
			return LoadGameResponse{
				Game:     gameResponse(games, &loaded.Game),
				Root:     loaded.Root,
				Metadata: loaded.Metadata,
				Nodes:    tree.Count(loaded.Root),
			}, nil
		})

	addTool(server, "resave_game",
		"Replace the analysis tree of a game you own.",
		func(ctx context.Context, ownerID string, in ResaveGameParams) (any, error) {
			root, err := decodeRoot(in.Root)
			if err != nil {
				return nil, err
			}
			g, err := games.Resave(ctx, ownerID, in.ID, game.ResaveRequest{
				Root:     root,
				FEN:      in.FEN,
				Title:    in.Title,
				Metadata: in.Metadata,
			})
			if err != nil {
				return nil, err
			}
			return gameResponse(games, g), nil
		})

	addTool(server, "delete_game",
		"Permanently delete a game you own.",
		func(ctx context.Context, ownerID string, in GameIDParams) (any, error) {
			if err := games.Delete(ctx, ownerID, in.ID); err != nil {
				return nil, err
			}
			return DeletedResponse{ID: in.ID, Deleted: true}, nil
		})

	addTool(server, "set_game_visibility",
		"Make a game you own public or private. Public games appear in the public listing.",
		func(ctx context.Context, ownerID string, in SetGameVisibilityParams) (any, error) {
			g, err := games.SetVisibility(ctx, ownerID, in.ID, in.IsPublic)
			if err != nil {
				return nil, err
			}
			return gameResponse(games, g), nil
		})

	addTool(server, "move_game",
		"File a game you own under one of your libraries, or omit library_id to make it uncategorized.",
		func(ctx context.Context, ownerID string, in MoveGameParams) (any, error) {
			g, err := games.Move(ctx, ownerID, in.ID, emptyAsNil(in.LibraryID))
			if err != nil {
				return nil, err
			}
			return gameResponse(games, g), nil
		})

	addTool(server, "list_games",
		"List games by scope: library (needs library_id), uncategorized (yours, or every public one with public=true), or owner (all of yours).",
		func(ctx context.Context, ownerID string, in ListGamesParams) (any, error) {
			scope, err := listScope(ownerID, in)
			if err != nil {
				return nil, err
			}
			list, err := games.List(ctx, scope)
			if err != nil {
				return nil, err
			}
			return ListGamesResponse{Games: summaries(list)}, nil
		})

	addTool(server, "list_public_games",
		"List recent public games. Results are cached for a few minutes; set force to refetch.",
		func(ctx context.Context, _ string, in ListPublicGamesParams) (any, error) {
			list, err := games.ListPublic(ctx, in.Force)
			if err != nil {
				return nil, err
			}
			return ListGamesResponse{Games: summaries(list)}, nil
		})

	addTool(server, "share_game",
		"Get the share link of a game. Private games only resolve for their owner.",
		func(ctx context.Context, ownerID string, in GameIDParams) (any, error) {
			p, err := games.Preview(ctx, ownerID, in.ID)
			if err != nil {
				return nil, err
			}
			return ShareGameResponse{ID: p.ID, ShareURL: p.ShareURL, IsPublic: p.IsPublic}, nil
		})
}

func listScope(ownerID string, in ListGamesParams) (game.ListScope, error) {
	switch game.ScopeKind(in.Scope) {
	case game.ScopeLibrary:
		if in.LibraryID == "" {
			return game.ListScope{}, fmt.Errorf("%w: library_id is required for the library scope", game.ErrInvalidInput)
		}
		return game.ByLibrary(in.LibraryID), nil
	case game.ScopeUncategorized:
		return game.Uncategorized(ownerID, in.Public), nil
	case game.ScopeOwner, "":
		return game.ByOwner(ownerID), nil
	default:
		return game.ListScope{}, fmt.Errorf("%w: unknown scope %q", game.ErrInvalidInput, in.Scope)
	}
}

// decodeRoot converts the loosely typed root argument into a tree.
func decodeRoot(v any) (*tree.Node, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: root: %v", game.ErrInvalidInput, err)
	}
	var root tree.Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: root is not an analysis tree: %v", game.ErrInvalidInput, err)
	}
	return &root, nil
}

func gameResponse(games GameService, g *game.Game) GameResponse {
	return GameResponse{Game: *g, ShareURL: games.ShareURL(g.ID)}
}

func summaries(list []game.Game) []GameSummary {
	out := make([]GameSummary, 0, len(list))
	for _, g := range list {
		s := GameSummary{
			ID:        g.ID,
			Title:     g.Title,
			FEN:       g.FEN,
			Metadata:  g.Metadata,
			OwnerID:   g.OwnerID,
			IsPublic:  g.IsPublic,
			LibraryID: g.LibraryID,
		}
		if t := g.SortTime(); !t.IsZero() {
			s.UpdatedAt = t.UTC().Format(time.RFC3339)
		}
		out = append(out, s)
	}
	return out
}

func emptyAsNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
