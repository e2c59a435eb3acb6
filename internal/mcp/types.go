package mcp

import (
	"github.com/rpggio/chessnote/internal/domain/game"
	"github.com/rpggio/chessnote/internal/domain/library"
	"github.com/rpggio/chessnote/internal/domain/tree"
)

type SaveGameParams struct {
	Title     string         `json:"title,omitempty"`
	FEN       string         `json:"fen,omitempty"`
	Root      any            `json:"root"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IsPublic  bool           `json:"is_public,omitempty"`
	LibraryID *string        `json:"library_id,omitempty"`
}

type LoadGameParams struct {
	ID      string `json:"id"`
	Hydrate bool   `json:"hydrate,omitempty"`
}

type ResaveGameParams struct {
	ID       string         `json:"id"`
	Root     any            `json:"root"`
	FEN      string         `json:"fen,omitempty"`
	Title    *string        `json:"title,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type GameIDParams struct {
	ID string `json:"id"`
}

type SetGameVisibilityParams struct {
	ID       string `json:"id"`
	IsPublic bool   `json:"is_public"`
}

type MoveGameParams struct {
	ID string `json:"id"`
	// LibraryID nil or empty moves the game to uncategorized.
	LibraryID *string `json:"library_id,omitempty"`
}

type ListGamesParams struct {
	Scope     string `json:"scope"`
	LibraryID string `json:"library_id,omitempty"`
	Public    bool   `json:"public,omitempty"`
}

type ListPublicGamesParams struct {
	Force bool `json:"force,omitempty"`
}

type CreateLibraryParams struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsPublic    bool   `json:"is_public,omitempty"`
}

type ListLibrariesParams struct {
	Public bool `json:"public,omitempty"`
}

type UpdateLibraryParams struct {
	ID          string  `json:"id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPublic    *bool   `json:"is_public,omitempty"`
}

type DeleteLibraryParams struct {
	ID string `json:"id"`
	// DetachGames defaults to true.
	DetachGames *bool `json:"detach_games,omitempty"`
}

type GameResponse struct {
	game.Game
	ShareURL string `json:"share_url"`
}

type LoadGameResponse struct {
	Game     GameResponse   `json:"game"`
	Root     *tree.Node     `json:"root"`
	Metadata map[string]any `json:"metadata"`
	Nodes    int            `json:"nodes"`
}

type ListGamesResponse struct {
	Games []GameSummary `json:"games"`
}

// GameSummary is a listing entry; listings never carry the tree.
type GameSummary struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	FEN       string         `json:"fen"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	OwnerID   string         `json:"owner_id"`
	IsPublic  bool           `json:"is_public"`
	LibraryID *string        `json:"library_id"`
	UpdatedAt string         `json:"updated_at,omitempty"`
}

type ShareGameResponse struct {
	ID       string `json:"id"`
	ShareURL string `json:"share_url"`
	IsPublic bool   `json:"is_public"`
}

type DeletedResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type ListLibrariesResponse struct {
	Libraries []library.Library `json:"libraries"`
}
