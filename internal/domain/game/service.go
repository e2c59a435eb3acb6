package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rpggio/chessnote/internal/codec"
	"github.com/rpggio/chessnote/internal/domain/tree"
	"github.com/rpggio/chessnote/internal/repository"
)

// Service handles game business logic.
type Service struct {
	games     Repository
	libraries LibraryOwners
	codec     *codec.Codec
	shareBase string
	logger    *slog.Logger
}

// NewService creates a new game service. libraries may be nil, in which case
// library ownership is not checked on save.
func NewService(games Repository, libraries LibraryOwners, shareBaseURL string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		games:     games,
		libraries: libraries,
		codec:     codec.New(),
		shareBase: strings.TrimRight(shareBaseURL, "/"),
		logger:    logger,
	}
}

// SaveRequest describes a new game.
type SaveRequest struct {
	Title     string
	FEN       string
	Root      *tree.Node
	Metadata  map[string]any
	IsPublic  bool
	LibraryID *string
}

// ResaveRequest replaces the tree of an existing game.
type ResaveRequest struct {
	Root     *tree.Node
	FEN      string
	Title    *string
	Metadata map[string]any
}

// LoadOptions controls how a stored tree is returned.
type LoadOptions struct {
	// Hydrate regenerates boards and parent links. Without it the tree is
	// returned as stored, boards derived from FEN on demand by the caller.
	Hydrate bool
}

// Save compacts and encodes the tree and stores a new game.
func (s *Service) Save(ctx context.Context, ownerID string, req SaveRequest) (*Game, error) {
	if err := ValidateSave(ownerID, req); err != nil {
		return nil, err
	}

	if req.LibraryID != nil {
		if err := s.ensureLibraryOwner(ctx, ownerID, *req.LibraryID); err != nil {
			return nil, err
		}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultTitle
	}
	fen := req.FEN
	if fen == "" {
		fen = req.Root.FEN
	}

	payload, err := s.codec.Encode(tree.Compact(req.Root))
	if err != nil {
		return nil, fmt.Errorf("encoding tree: %w", err)
	}

	id, err := s.games.Create(ctx, ownerID, NewGame{
		Title:    title,
		FEN:      fen,
		Payload:  payload,
		Metadata: req.Metadata,
	}, req.IsPublic, req.LibraryID)
	if err != nil {
		return nil, fmt.Errorf("saving game: %w", err)
	}

	s.logger.Info("game saved",
		"game_id", id,
		"owner_id", ownerID,
		"nodes", tree.Count(req.Root),
		"payload_len", len(payload),
	)

	return s.get(ctx, id)
}

// Resave re-encodes a tree into an existing game owned by the caller.
func (s *Service) Resave(ctx context.Context, ownerID, id string, req ResaveRequest) (*Game, error) {
	if err := ValidateResave(ownerID, id, req); err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return nil, err
	}

	payload, err := s.codec.Encode(tree.Compact(req.Root))
	if err != nil {
		return nil, fmt.Errorf("encoding tree: %w", err)
	}

	fen := req.FEN
	if fen == "" {
		fen = req.Root.FEN
	}
	u := Update{Payload: &payload, FEN: &fen, Metadata: req.Metadata}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			title = DefaultTitle
		}
		u.Title = &title
	}

	if err := s.update(ctx, id, u); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// Load fetches a game and decodes its tree. Private games load only for
// their owner; anyone else gets ErrGameNotFound.
func (s *Service) Load(ctx context.Context, viewerID, id string, opts LoadOptions) (*Loaded, error) {
	g, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(g, viewerID) {
		return nil, ErrGameNotFound
	}
	if strings.TrimSpace(g.Payload) == "" {
		return nil, ErrUnsupportedRecord
	}

	root, err := s.codec.Decode(g.Payload)
	if err != nil {
		s.logger.Warn("stored tree unreadable", "game_id", id, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnreadableRecord, err)
	}
	if opts.Hydrate {
		root = tree.Hydrate(root, nil, nil)
	}

	return &Loaded{Game: *g, Root: root, Metadata: loadMetadata(g)}, nil
}

// SetVisibility flips a game's public flag and returns the stored result.
// A failed write changes nothing and is returned as is.
func (s *Service) SetVisibility(ctx context.Context, ownerID, id string, public bool) (*Game, error) {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return nil, err
	}
	if err := s.update(ctx, id, Update{IsPublic: &public}); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// Move files a game under a library, or uncategorizes it when libraryID is nil.
// The game counts of the old and new library are adjusted after the move;
// a failed adjustment is logged and left for Reconcile.
func (s *Service) Move(ctx context.Context, ownerID, id string, libraryID *string) (*Game, error) {
	g, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	u := Update{Uncategorize: libraryID == nil, LibraryID: libraryID}
	if libraryID != nil {
		if err := s.ensureLibraryOwner(ctx, ownerID, *libraryID); err != nil {
			return nil, err
		}
	}
	if err := s.update(ctx, id, u); err != nil {
		return nil, err
	}

	if !sameLibrary(g.LibraryID, libraryID) {
		s.adjustCounts(ctx, id, g.LibraryID, libraryID)
	}
	return s.get(ctx, id)
}

func (s *Service) adjustCounts(ctx context.Context, gameID string, from, to *string) {
	if s.libraries == nil {
		return
	}
	if to != nil {
		if err := s.libraries.IncrementGameCount(ctx, *to); err != nil {
			s.logger.Warn("library game count not incremented",
				"library_id", *to,
				"game_id", gameID,
				"error", err,
			)
		}
	}
	if from != nil {
		if err := s.libraries.DecrementGameCount(ctx, *from); err != nil {
			s.logger.Warn("library game count not decremented",
				"library_id", *from,
				"game_id", gameID,
				"error", err,
			)
		}
	}
}

func sameLibrary(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Delete removes a game owned by the caller.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.games.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("deleting game: %w", err)
	}
	s.logger.Info("game deleted", "game_id", id, "owner_id", ownerID)
	return nil
}

// List returns the games of a listing scope.
func (s *Service) List(ctx context.Context, scope ListScope) ([]Game, error) {
	games, err := s.games.List(ctx, scope)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidInput) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return games, nil
}

// ListPublic returns recent public games, possibly from cache.
func (s *Service) ListPublic(ctx context.Context, force bool) ([]Game, error) {
	games, err := s.games.ListPublic(ctx, force)
	if err != nil {
		return nil, fmt.Errorf("listing public games: %w", err)
	}
	return games, nil
}

// ListMine returns every game of the caller.
func (s *Service) ListMine(ctx context.Context, ownerID string) ([]Game, error) {
	return s.List(ctx, ByOwner(ownerID))
}

// ShareURL returns the external address of a game.
func (s *Service) ShareURL(id string) string {
	return s.shareBase + "/s/" + id
}

// Preview returns what a share link shows. Private games are only visible
// to their owner.
func (s *Service) Preview(ctx context.Context, viewerID, id string) (*Preview, error) {
	g, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(g, viewerID) {
		return nil, ErrGameNotFound
	}
	return &Preview{
		ID:       g.ID,
		Title:    g.Title,
		FEN:      g.FEN,
		Metadata: loadMetadata(g),
		IsPublic: g.IsPublic,
		ShareURL: s.ShareURL(g.ID),
	}, nil
}

func visibleTo(g *Game, viewerID string) bool {
	return g.IsPublic || (viewerID != "" && viewerID == g.OwnerID)
}

func (s *Service) get(ctx context.Context, id string) (*Game, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	g, err := s.games.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("loading game: %w", err)
	}
	return g, nil
}

func (s *Service) owned(ctx context.Context, ownerID, id string) (*Game, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	g, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return g, nil
}

func (s *Service) update(ctx context.Context, id string, u Update) error {
	if err := s.games.Update(ctx, id, u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("updating game: %w", err)
	}
	return nil
}

func (s *Service) ensureLibraryOwner(ctx context.Context, ownerID, libraryID string) error {
	if s.libraries == nil {
		return nil
	}
	owner, err := s.libraries.OwnerOf(ctx, libraryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: library %s does not exist", ErrInvalidInput, libraryID)
		}
		return fmt.Errorf("loading library: %w", err)
	}
	if owner != ownerID {
		return ErrForbidden
	}
	return nil
}

// loadMetadata falls back to the record's own title and legacy player names
// when the record carries no metadata.
func loadMetadata(g *Game) map[string]any {
	if len(g.Metadata) > 0 {
		return g.Metadata
	}
	md := map[string]any{"title": g.Title}
	if g.RedName != "" {
		md["redName"] = g.RedName
	}
	if g.BlackName != "" {
		md["blackName"] = g.BlackName
	}
	return md
}
