package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rpggio/chessnote/internal/cache"
	"github.com/rpggio/chessnote/internal/cloudstore"
	"github.com/rpggio/chessnote/internal/config"
	"github.com/rpggio/chessnote/internal/docstore"
	"github.com/rpggio/chessnote/internal/domain/game"
	"github.com/rpggio/chessnote/internal/domain/library"
	"github.com/rpggio/chessnote/internal/dynamodb"
	"github.com/rpggio/chessnote/internal/metrics"
	"github.com/rpggio/chessnote/internal/sqlite"
)

// stack is the wired storage and service layer shared by every command.
type stack struct {
	store     docstore.Client
	games     *game.Service
	libraries *library.Service
	metrics   *metrics.Collector
	close     func() error
}

func buildStack(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stack, error) {
	store, closeStore, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector("chessnote")
	libraryRepo := cloudstore.NewLibraryRepository(store, collector)
	gameRepo := cloudstore.NewGameRepository(
		store,
		libraryRepo,
		cache.New[[]game.Game](cfg.Cache.PublicTTL, nil),
		collector,
		logger,
	)

	librarySvc := library.NewService(libraryRepo, gameRepo, logger)
	librarySvc.OnDriftFixed(collector.DriftFixed)

	return &stack{
		store:     store,
		games:     game.NewService(gameRepo, libraryRepo, cfg.Share.BaseURL, logger),
		libraries: librarySvc,
		metrics:   collector,
		close:     closeStore,
	}, nil
}

func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (docstore.Client, func() error, error) {
	switch cfg.Driver {
	case config.DriverDynamoDB:
		store, err := dynamodb.NewFromConfig(ctx, dynamodb.Options{
			Region:      cfg.Region,
			Endpoint:    cfg.Endpoint,
			TablePrefix: cfg.TablePrefix,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open dynamodb store: %w", err)
		}
		logger.Info("using dynamodb store", "region", cfg.Region, "table_prefix", cfg.TablePrefix)
		return store, func() error { return nil }, nil

	case config.DriverSQLite:
		if err := ensureDir(cfg.Path); err != nil {
			return nil, nil, fmt.Errorf("failed to prepare database path: %w", err)
		}
		db, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		store := sqlite.NewDocStore(db, sqlite.WithIndexPolicy(sqlite.IndexPolicy{
			Enforce:    cfg.EnforceIndexes,
			ConsoleURL: cfg.IndexConsoleURL,
		}))
		for _, q := range cloudstore.IndexedQueries() {
			if err := store.EnsureIndex(ctx, q); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		}
		logger.Info("using sqlite store", "path", cfg.Path, "enforce_indexes", cfg.EnforceIndexes)
		return store, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
