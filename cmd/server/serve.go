package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/chessnote/internal/config"
	"github.com/rpggio/chessnote/internal/mcp"
	"github.com/rpggio/chessnote/internal/transport"
	"github.com/spf13/cobra"
)

var serveTransport string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Run the MCP server over stdio or streamable HTTP.

HTTP mode also serves share previews under /s/{id}, /health and /metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveTransport, "transport", "", "transport mode: stdio or http (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveTransport != "" {
		cfg.Transport.Mode = serveTransport
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	logger, closeLog := newLogger(cfg)
	defer closeLog()

	st, err := buildStack(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Error("close store", "error", err)
		}
	}()

	resolver := keyResolver(cfg.Auth)
	mcpServer := mcp.NewServer(mcp.Config{
		Services:      mcp.Services{Games: st.games, Libraries: st.libraries},
		Resolver:      resolver,
		AuthEnabled:   cfg.Auth.Enabled,
		DefaultOwner:  cfg.Auth.DefaultOwner,
		TransportMode: cfg.Transport.Mode,
		Version:       version,
		Logger:        logger,
	})

	if cfg.Transport.Mode == config.TransportStdio {
		return runStdioMode(logger, mcpServer)
	}
	return runHTTPMode(logger, cfg, st, mcpServer, resolver)
}

func keyResolver(cfg config.AuthConfig) *transport.KeyResolver {
	keys := make(map[string]string, len(cfg.Keys))
	for _, key := range cfg.Keys {
		keys[key.TokenSHA256] = key.OwnerID
	}
	return transport.NewKeyResolver(keys)
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	go func() {
		select {
		case <-stop:
			logger.Info("shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Run blocks until stdin closes or ctx is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("stdio server error", "error", err)
		return err
	}
	return nil
}

func runHTTPMode(logger *slog.Logger, cfg config.Config, st *stack, mcpServer *sdkmcp.Server, resolver transport.OwnerResolver) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	router := transport.NewServer(transport.Config{
		MCP:         mcpHandler,
		Previews:    st.games,
		Resolver:    resolver,
		AuthEnabled: cfg.Auth.Enabled,
		Metrics:     st.metrics.Handler(),
		Logger:      logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "auth", cfg.Auth.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	return waitForShutdown(logger, httpServer, errCh)
}

func waitForShutdown(logger *slog.Logger, server *http.Server, errCh <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			logger.Error("server error", "error", err)
			return err
		}
		return nil
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
