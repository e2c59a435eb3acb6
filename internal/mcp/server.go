package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/chessnote/internal/domain/game"
	"github.com/rpggio/chessnote/internal/domain/library"
)

// GameService defines game operations needed by MCP.
type GameService interface {
	Save(ctx context.Context, ownerID string, req game.SaveRequest) (*game.Game, error)
	Resave(ctx context.Context, ownerID, id string, req game.ResaveRequest) (*game.Game, error)
	Load(ctx context.Context, viewerID, id string, opts game.LoadOptions) (*game.Loaded, error)
	SetVisibility(ctx context.Context, ownerID, id string, public bool) (*game.Game, error)
	Move(ctx context.Context, ownerID, id string, libraryID *string) (*game.Game, error)
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, scope game.ListScope) ([]game.Game, error)
	ListPublic(ctx context.Context, force bool) ([]game.Game, error)
	Preview(ctx context.Context, viewerID, id string) (*game.Preview, error)
	ShareURL(id string) string
}

// LibraryService defines library operations needed by MCP.
type LibraryService interface {
	Create(ctx context.Context, ownerID string, req library.CreateRequest) (*library.Library, error)
	List(ctx context.Context, publicView bool, ownerID string) ([]library.Library, error)
	Update(ctx context.Context, ownerID, id string, req library.UpdateRequest) (*library.Library, error)
	Delete(ctx context.Context, ownerID, id string, opts library.DeleteOptions) error
}

// Services contains all domain services needed by MCP.
type Services struct {
	Games     GameService
	Libraries LibraryService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      OwnerResolver
	AuthEnabled   bool
	DefaultOwner  string
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Version == "" {
		cfg.Version = "0.1.0"
	}
	if cfg.DefaultOwner == "" {
		cfg.DefaultOwner = "local"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "chessnote",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is a local, single-user transport and never authenticates.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(noAuthMiddleware(cfg.DefaultOwner))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerGameTools(server, cfg.Services.Games)
	registerLibraryTools(server, cfg.Services.Libraries)

	return server
}

// addTool registers a tool whose handler receives the caller's owner id. Any
// value the handler returns becomes the structured tool result.
func addTool[In any](server *sdkmcp.Server, name, description string, fn func(ctx context.Context, ownerID string, in In) (any, error)) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
			out, err := fn(ctx, getOwnerID(ctx), in)
			if err != nil {
				return nil, nil, toolError(err)
			}
			return nil, out, nil
		})
}
