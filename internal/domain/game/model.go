package game

import (
	"time"

	"github.com/rpggio/chessnote/internal/domain/tree"
)

// DefaultTitle is stored when a game is saved without a title.
const DefaultTitle = "無標題"

// Game is a stored game record. Payload is the encoded analysis tree and is
// opaque outside the codec.
type Game struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	FEN       string         `json:"fen"`
	Payload   string         `json:"-"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	OwnerID   string         `json:"owner_id"`
	IsPublic  bool           `json:"is_public"`
	LibraryID *string        `json:"library_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	// Date is the timestamp older records carry instead of UpdatedAt.
	Date time.Time `json:"-"`
	// Older records keep player names at the top level instead of in Metadata.
	RedName   string `json:"-"`
	BlackName string `json:"-"`
}

// SortTime is the listing sort key: UpdatedAt, else the legacy Date, else zero.
func (g *Game) SortTime() time.Time {
	if !g.UpdatedAt.IsZero() {
		return g.UpdatedAt
	}
	return g.Date
}

// Uncategorized reports whether the game belongs to no library.
func (g *Game) Uncategorized() bool {
	return g.LibraryID == nil
}

// NewGame holds the fields of a game being created.
type NewGame struct {
	Title    string
	FEN      string
	Payload  string
	Metadata map[string]any
}

// Update is a partial update. Nil fields are left untouched. Uncategorize
// clears the library link and takes precedence over LibraryID.
type Update struct {
	Title        *string
	FEN          *string
	Payload      *string
	Metadata     map[string]any
	IsPublic     *bool
	LibraryID    *string
	Uncategorize bool
}

// ScopeKind selects a game listing.
type ScopeKind string

const (
	ScopeLibrary       ScopeKind = "library"
	ScopeUncategorized ScopeKind = "uncategorized"
	ScopeOwner         ScopeKind = "owner"
)

// ListScope describes which games a listing returns.
type ListScope struct {
	Kind      ScopeKind
	LibraryID string
	OwnerID   string
	// Public selects the public uncategorized view instead of the owner's.
	Public bool
}

// ByLibrary lists the games of one library.
func ByLibrary(libraryID string) ListScope {
	return ListScope{Kind: ScopeLibrary, LibraryID: libraryID}
}

// Uncategorized lists games without a library, either the owner's own or
// every public one.
func Uncategorized(ownerID string, public bool) ListScope {
	return ListScope{Kind: ScopeUncategorized, OwnerID: ownerID, Public: public}
}

// ByOwner lists every game of one owner.
func ByOwner(ownerID string) ListScope {
	return ListScope{Kind: ScopeOwner, OwnerID: ownerID}
}

// Loaded is a game with its decoded analysis tree.
type Loaded struct {
	Game     Game
	Root     *tree.Node
	Metadata map[string]any
}

// Preview is what a share link reveals about a game.
type Preview struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	FEN      string         `json:"fen"`
	Metadata map[string]any `json:"metadata,omitempty"`
	IsPublic bool           `json:"is_public"`
	ShareURL string         `json:"share_url"`
}
