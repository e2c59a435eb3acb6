package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/chessnote/internal/domain/game"
)

// Previewer looks up what a share link shows.
type Previewer interface {
	Preview(ctx context.Context, viewerID, id string) (*game.Preview, error)
}

// Config wires the HTTP surface.
type Config struct {
	// MCP serves the streamable MCP endpoint; nil leaves /mcp unrouted.
	MCP      http.Handler
	Previews Previewer
	// Resolver authenticates /mcp when AuthEnabled and identifies share
	// viewers whenever it is set.
	Resolver    OwnerResolver
	AuthEnabled bool
	// Metrics serves /metrics; nil leaves it unrouted.
	Metrics http.Handler
	// AppName titles share pages without a game title.
	AppName string
	Logger  *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	previews Previewer
	appName  string
	logger   *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(cfg Config) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.AppName == "" {
		cfg.AppName = defaultAppTitle
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(SessionMiddleware)
	r.Use(requestLogger(cfg.Logger))

	srv := &Server{previews: cfg.Previews, appName: cfg.AppName, logger: cfg.Logger}

	if cfg.MCP != nil {
		r.Group(func(r chi.Router) {
			if cfg.AuthEnabled && cfg.Resolver != nil {
				r.Use(AuthMiddleware(cfg.Resolver))
			}
			r.Handle("/mcp", cfg.MCP)
			r.Handle("/mcp/*", cfg.MCP)
		})
	}

	if cfg.Previews != nil {
		r.Group(func(r chi.Router) {
			if cfg.Resolver != nil {
				r.Use(OptionalAuth(cfg.Resolver))
			}
			r.Get("/s/{id}", srv.handlePreview)
		})
	}

	r.Get("/health", srv.handleHealth)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// errorBody is the JSON error shape of the HTTP surface.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
