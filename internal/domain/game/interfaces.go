package game

import "context"

// Repository provides persistence for games.
type Repository interface {
	Create(ctx context.Context, ownerID string, g NewGame, isPublic bool, libraryID *string) (string, error)
	Get(ctx context.Context, id string) (*Game, error)
	Update(ctx context.Context, id string, u Update) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, scope ListScope) ([]Game, error)
	ListPublic(ctx context.Context, force bool) ([]Game, error)
	MemberIDs(ctx context.Context, libraryID string) ([]string, error)
	CountByLibrary(ctx context.Context, libraryID string) (int, error)
}

// LibraryOwners resolves the owner of a library so games are only filed
// into the caller's own libraries, and keeps library game counts in step
// when a game moves between them.
type LibraryOwners interface {
	OwnerOf(ctx context.Context, libraryID string) (string, error)
	IncrementGameCount(ctx context.Context, libraryID string) error
	DecrementGameCount(ctx context.Context, libraryID string) error
}
