package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `chessnote stores Chinese-chess (xiangqi) analysis trees as games, optionally grouped into libraries.

Core concepts:
- Game: a titled analysis tree with a starting FEN, an owner and a public flag. It belongs to at most one library.
- Analysis tree: nested nodes, one per position. Each node has id, parentId, move, children, comment, turn and fen.
- Library: a named group of games with a game_count. The count can lag behind reality after concurrent saves.
- Uncategorized: games with no library.

Typical workflow:
1) Save: save_game with a root node (boards are optional and dropped before storage).
2) Browse: list_games (scope library | uncategorized | owner) or list_public_games.
3) Load: load_game by id; pass hydrate=true to get board grids and parent links back. Private games load only for their owner.
4) Change: resave_game replaces the tree; set_game_visibility and move_game change flags and filing.
5) Share: share_game returns the share link.

Errors are JSON objects with code, message, details and recovery_hint. MISSING_INDEX carries
details.index_url, the address where the missing composite index can be created.

Docs:
- chessnote://docs/index
- chessnote://docs/tree-format
- chessnote://docs/libraries
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "chessnote://docs/index",
		Name:        "docs_index",
		Title:       "chessnote docs index",
		Description: "Entry point: what each tool does and which doc to read next.",
		Content: `# chessnote: Agent Docs Index

## Tools

- ` + "`save_game`" + `, ` + "`resave_game`" + ` write analysis trees.
- ` + "`load_game`" + ` reads one back; ` + "`hydrate`" + ` regenerates board grids. Someone else's private game is not found.
- ` + "`list_games`" + `, ` + "`list_public_games`" + ` browse without loading trees.
- ` + "`set_game_visibility`" + `, ` + "`move_game`" + `, ` + "`delete_game`" + ` change a game you own.
- ` + "`share_game`" + ` returns the share link.
- ` + "`create_library`" + `, ` + "`list_libraries`" + `, ` + "`update_library`" + `, ` + "`delete_library`" + ` manage libraries.

## Docs (read on demand)

- ` + "`chessnote://docs/tree-format`" + ` node fields, FEN, what is stored.
- ` + "`chessnote://docs/libraries`" + ` filing, counters, deletion.

## Limitations

- The public listing is cached for a few minutes. Pass ` + "`force=true`" + ` to refetch.
- Listings are capped: 100 per library or owner, 50 for public views.
`,
	},
	{
		URI:         "chessnote://docs/tree-format",
		Name:        "docs_tree_format",
		Title:       "Analysis tree format",
		Description: "Node fields, FEN conventions, and what the server stores.",
		Content: `# Analysis tree format

A tree is a root node with nested ` + "`children`" + `. Children are ordered; the first is the main line.

## Node fields

| field | meaning |
|---|---|
| ` + "`id`" + ` | unique within the tree |
| ` + "`parentId`" + ` | id of the parent, null on the root |
| ` + "`move`" + ` | ` + "`{from:{r,c}, to:{r,c}, piece, captured, notation}`" + `, null on the root |
| ` + "`children`" + ` | variations reached from this position |
| ` + "`comment`" + ` | free text |
| ` + "`turn`" + ` | ` + "`red`" + ` or ` + "`black`" + `, the side to move |
| ` + "`fen`" + ` | position after the move |
| ` + "`selectedChildId`" + ` | optional, the variation last viewed |
| ` + "`boardState`" + ` | optional 10x9 grid; derived from fen |

## FEN

Ten ranks from black's side (row 0) to red's (row 9), separated by ` + "`/`" + `. Letters ` + "`K A B N R C P`" + `
are red in upper case and black in lower case; digits skip empty points. The field after the board is the
side to move: ` + "`w`" + ` means red, anything else black.

## Storage

Boards are stripped before encoding and regenerated from fen when loaded with ` + "`hydrate=true`" + `. Trees are
stored compressed and are opaque to other clients. Records saved before compression was introduced still load.
`,
	},
	{
		URI:         "chessnote://docs/libraries",
		Name:        "docs_libraries",
		Title:       "Libraries",
		Description: "How games are filed into libraries and what deletion does.",
		Content: `# Libraries

- A game is in at most one library; without one it is uncategorized.
- ` + "`game_count`" + ` is maintained on save and is not atomic. Concurrent saves can undercount it; an
  operator job recounts and repairs it.
- ` + "`delete_library`" + ` moves member games to uncategorized first (` + "`detach_games`" + ` defaults to true). With
  ` + "`detach_games=false`" + ` the games keep pointing at the deleted library and only show up under the owner scope.
- Only the owner can change or delete a library, or file games into it.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
