// Package testserver runs the full service stack over an in-memory SQLite
// document store for end-to-end tests.
package testserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/chessnote/internal/cache"
	"github.com/rpggio/chessnote/internal/cloudstore"
	"github.com/rpggio/chessnote/internal/domain/game"
	"github.com/rpggio/chessnote/internal/domain/library"
	"github.com/rpggio/chessnote/internal/mcp"
	"github.com/rpggio/chessnote/internal/metrics"
	"github.com/rpggio/chessnote/internal/sqlite"
	"github.com/rpggio/chessnote/internal/transport"
	"github.com/stretchr/testify/require"
)

// ShareBaseURL prefixes share links produced by the test stack.
const ShareBaseURL = "https://chess.example.test"

type TestServer struct {
	Server    *httptest.Server
	DB        *sqlite.DB
	Store     *sqlite.DocStore
	Games     *game.Service
	Libraries *library.Service
	Metrics   *metrics.Collector
	Token     string
	OwnerID   string
}

// New starts the HTTP surface with auth enabled: token resolves to ownerID.
func New(t *testing.T, token, ownerID string) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	clock := &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := sqlite.NewDocStore(db, sqlite.WithClock(clock.Now))
	collector := metrics.NewCollector("chessnote")

	libraryRepo := cloudstore.NewLibraryRepository(store, collector)
	publicCache := cache.New[[]game.Game](cache.DefaultTTL, nil)
	gameRepo := cloudstore.NewGameRepository(store, libraryRepo, publicCache, collector, nil)

	gameSvc := game.NewService(gameRepo, libraryRepo, ShareBaseURL, nil)
	librarySvc := library.NewService(libraryRepo, gameRepo, nil)
	librarySvc.OnDriftFixed(collector.DriftFixed)

	resolver := transport.NewKeyResolver(map[string]string{transport.HashToken(token): ownerID})
	mcpServer := mcp.NewServer(mcp.Config{
		Services:      mcp.Services{Games: gameSvc, Libraries: librarySvc},
		Resolver:      resolver,
		AuthEnabled:   true,
		TransportMode: "http",
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		nil,
	)

	server := httptest.NewServer(transport.NewServer(transport.Config{
		MCP:         mcpHandler,
		Previews:    gameSvc,
		Resolver:    resolver,
		AuthEnabled: true,
		Metrics:     collector.Handler(),
	}))

	ts := &TestServer{
		Server:    server,
		DB:        db,
		Store:     store,
		Games:     gameSvc,
		Libraries: librarySvc,
		Metrics:   collector,
		Token:     token,
		OwnerID:   ownerID,
	}

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// Connect opens an in-memory MCP session acting as ownerID.
func (ts *TestServer) Connect(t *testing.T, ownerID string) *sdkmcp.ClientSession {
	t.Helper()

	server := mcp.NewServer(mcp.Config{
		Services:      mcp.Services{Games: ts.Games, Libraries: ts.Libraries},
		DefaultOwner:  ownerID,
		TransportMode: "stdio",
	})
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()

	ctx := context.Background()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Close()
	})
	return session
}

// ConnectHTTP opens a streamable HTTP MCP session with a bearer token.
func (ts *TestServer) ConnectHTTP(t *testing.T, token string) (*sdkmcp.ClientSession, error) {
	t.Helper()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: &http.Client{Transport: bearerTransport{token: token}},
	}, nil)
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() { _ = session.Close() })
	return session, nil
}

// CallTool calls a tool that must succeed and returns its JSON text result.
func CallTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) json.RawMessage {
	t.Helper()

	result := call(t, session, name, args)
	require.False(t, result.IsError, "tool error: %s", text(t, result))
	return json.RawMessage(text(t, result))
}

// CallToolError calls a tool that must fail with a mapped APIError.
func CallToolError(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) mcp.APIError {
	t.Helper()

	result := call(t, session, name, args)
	require.True(t, result.IsError, "expected tool error, got %s", text(t, result))

	var apiErr mcp.APIError
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &apiErr), "error is not an APIError: %s", text(t, result))
	return apiErr
}

func call(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	return result
}

func text(t *testing.T, result *sdkmcp.CallToolResult) string {
	t.Helper()
	content, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return content.Text
}

type bearerTransport struct {
	token string
}

func (b bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	return http.DefaultTransport.RoundTrip(req)
}

// stepClock advances one second per reading so writes order deterministically.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}
