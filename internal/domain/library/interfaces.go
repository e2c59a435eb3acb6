package library

import (
	"context"

	"github.com/rpggio/chessnote/internal/domain/game"
)

// Repository provides persistence for libraries.
type Repository interface {
	Create(ctx context.Context, ownerID string, l NewLibrary) (string, error)
	Get(ctx context.Context, id string) (*Library, error)
	List(ctx context.Context, publicView bool, ownerID string) ([]Library, error)
	ListAll(ctx context.Context) ([]Library, error)
	Update(ctx context.Context, id string, u Update) error
	Delete(ctx context.Context, id string) error
	IncrementGameCount(ctx context.Context, id string) error
	SetGameCount(ctx context.Context, id string, n int) error
}

// Games is the part of the game repository the library service needs.
type Games interface {
	Update(ctx context.Context, id string, u game.Update) error
	MemberIDs(ctx context.Context, libraryID string) ([]string, error)
	CountByLibrary(ctx context.Context, libraryID string) (int, error)
}
