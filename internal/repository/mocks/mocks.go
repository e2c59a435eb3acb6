package mocks

import (
	"context"

	"github.com/rpggio/chessnote/internal/domain/game"
	"github.com/rpggio/chessnote/internal/domain/library"
	"github.com/stretchr/testify/mock"
)

// GameRepository is a mock for game.Repository.
type GameRepository struct {
	mock.Mock
}

func (m *GameRepository) Create(ctx context.Context, ownerID string, g game.NewGame, isPublic bool, libraryID *string) (string, error) {
	args := m.Called(ctx, ownerID, g, isPublic, libraryID)
	return args.String(0), args.Error(1)
}

func (m *GameRepository) Get(ctx context.Context, id string) (*game.Game, error) {
	args := m.Called(ctx, id)
	if g, ok := args.Get(0).(*game.Game); ok {
		return g, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GameRepository) Update(ctx context.Context, id string, u game.Update) error {
	args := m.Called(ctx, id, u)
	return args.Error(0)
}

func (m *GameRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *GameRepository) List(ctx context.Context, scope game.ListScope) ([]game.Game, error) {
	args := m.Called(ctx, scope)
	if list, ok := args.Get(0).([]game.Game); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GameRepository) ListPublic(ctx context.Context, force bool) ([]game.Game, error) {
	args := m.Called(ctx, force)
	if list, ok := args.Get(0).([]game.Game); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GameRepository) MemberIDs(ctx context.Context, libraryID string) ([]string, error) {
	args := m.Called(ctx, libraryID)
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GameRepository) CountByLibrary(ctx context.Context, libraryID string) (int, error) {
	args := m.Called(ctx, libraryID)
	return args.Int(0), args.Error(1)
}

// LibraryRepository is a mock for library.Repository and game.LibraryOwners.
type LibraryRepository struct {
	mock.Mock
}

func (m *LibraryRepository) Create(ctx context.Context, ownerID string, l library.NewLibrary) (string, error) {
	args := m.Called(ctx, ownerID, l)
	return args.String(0), args.Error(1)
}

func (m *LibraryRepository) Get(ctx context.Context, id string) (*library.Library, error) {
	args := m.Called(ctx, id)
	if lib, ok := args.Get(0).(*library.Library); ok {
		return lib, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LibraryRepository) OwnerOf(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *LibraryRepository) List(ctx context.Context, publicView bool, ownerID string) ([]library.Library, error) {
	args := m.Called(ctx, publicView, ownerID)
	if list, ok := args.Get(0).([]library.Library); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LibraryRepository) ListAll(ctx context.Context) ([]library.Library, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]library.Library); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LibraryRepository) Update(ctx context.Context, id string, u library.Update) error {
	args := m.Called(ctx, id, u)
	return args.Error(0)
}

func (m *LibraryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *LibraryRepository) IncrementGameCount(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *LibraryRepository) DecrementGameCount(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *LibraryRepository) SetGameCount(ctx context.Context, id string, n int) error {
	args := m.Called(ctx, id, n)
	return args.Error(0)
}
