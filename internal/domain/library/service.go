package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rpggio/chessnote/internal/domain/game"
	"github.com/rpggio/chessnote/internal/repository"
)

// Service handles library business logic.
type Service struct {
	libraries Repository
	games     Games
	onDrift   func()
	logger    *slog.Logger
}

// NewService creates a new library service.
func NewService(libraries Repository, games Games, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		libraries: libraries,
		games:     games,
		logger:    logger,
	}
}

// OnDriftFixed registers a hook called once per counter rewritten by Reconcile.
func (s *Service) OnDriftFixed(fn func()) {
	s.onDrift = fn
}

// CreateRequest describes a new library.
type CreateRequest struct {
	Title       string
	Description string
	IsPublic    bool
}

// UpdateRequest describes a library update. Nil fields are left untouched.
type UpdateRequest struct {
	Title       *string
	Description *string
	IsPublic    *bool
}

// DeleteOptions controls what happens to member games.
type DeleteOptions struct {
	// DetachGames moves member games to uncategorized before the library is
	// removed. Without it they keep a library_id that points nowhere.
	DetachGames bool
}

// Create creates a library owned by the caller.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateRequest) (*Library, error) {
	if err := ValidateCreate(ownerID, req); err != nil {
		return nil, err
	}

	id, err := s.libraries.Create(ctx, ownerID, NewLibrary{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		return nil, fmt.Errorf("creating library: %w", err)
	}

	s.logger.Info("library created", "library_id", id, "owner_id", ownerID)
	return s.Get(ctx, id)
}

// List returns public libraries, or the caller's own in the private view.
func (s *Service) List(ctx context.Context, publicView bool, ownerID string) ([]Library, error) {
	libs, err := s.libraries.List(ctx, publicView, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing libraries: %w", err)
	}
	return libs, nil
}

// Get retrieves a library by id.
func (s *Service) Get(ctx context.Context, id string) (*Library, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	lib, err := s.libraries.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLibraryNotFound
		}
		return nil, fmt.Errorf("loading library: %w", err)
	}
	return lib, nil
}

// Update modifies a library owned by the caller.
func (s *Service) Update(ctx context.Context, ownerID, id string, req UpdateRequest) (*Library, error) {
	if err := ValidateUpdate(ownerID, id, req); err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return nil, err
	}

	u := Update{Description: req.Description, IsPublic: req.IsPublic}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		u.Title = &title
	}
	if err := s.update(ctx, id, u); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// SetVisibility flips a library's public flag.
func (s *Service) SetVisibility(ctx context.Context, ownerID, id string, public bool) (*Library, error) {
	return s.Update(ctx, ownerID, id, UpdateRequest{IsPublic: &public})
}

// Delete removes a library owned by the caller. With DetachGames every
// member game is uncategorized first; a failure there aborts before the
// library is removed, so the call can be retried.
func (s *Service) Delete(ctx context.Context, ownerID, id string, opts DeleteOptions) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}

	detached := 0
	if opts.DetachGames {
		ids, err := s.games.MemberIDs(ctx, id)
		if err != nil {
			return fmt.Errorf("listing member games: %w", err)
		}
		for _, gameID := range ids {
			err := s.games.Update(ctx, gameID, game.Update{Uncategorize: true})
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("detaching game %s: %w", gameID, err)
			}
			detached++
		}
	}

	if err := s.libraries.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLibraryNotFound
		}
		return fmt.Errorf("deleting library: %w", err)
	}

	s.logger.Info("library deleted", "library_id", id, "owner_id", ownerID, "detached_games", detached)
	return nil
}

// Reconcile recounts the games of every library and rewrites counters that
// drifted. Failures on one library are reported and do not stop the run.
func (s *Service) Reconcile(ctx context.Context) (ReconcileReport, error) {
	libs, err := s.libraries.ListAll(ctx)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("listing libraries: %w", err)
	}

	report := ReconcileReport{Fixed: []Drift{}}
	for _, lib := range libs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++

		actual, err := s.games.CountByLibrary(ctx, lib.ID)
		if err != nil {
			report.Failed = append(report.Failed, Drift{LibraryID: lib.ID, Stored: lib.GameCount, Error: err.Error()})
			continue
		}
		if actual == lib.GameCount {
			continue
		}

		drift := Drift{LibraryID: lib.ID, Stored: lib.GameCount, Actual: actual}
		if err := s.libraries.SetGameCount(ctx, lib.ID, actual); err != nil {
			drift.Error = err.Error()
			report.Failed = append(report.Failed, drift)
			continue
		}
		report.Fixed = append(report.Fixed, drift)
		if s.onDrift != nil {
			s.onDrift()
		}
		s.logger.Info("library game count reconciled",
			"library_id", lib.ID,
			"stored", lib.GameCount,
			"actual", actual,
		)
	}

	return report, nil
}

func (s *Service) owned(ctx context.Context, ownerID, id string) (*Library, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	lib, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if lib.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return lib, nil
}

func (s *Service) update(ctx context.Context, id string, u Update) error {
	if err := s.libraries.Update(ctx, id, u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLibraryNotFound
		}
		return fmt.Errorf("updating library: %w", err)
	}
	return nil
}
