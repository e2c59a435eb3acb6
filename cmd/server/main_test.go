package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpggio/chessnote/internal/codec"
	"github.com/rpggio/chessnote/internal/config"
	"github.com/rpggio/chessnote/internal/domain/game"
	"github.com/rpggio/chessnote/internal/domain/library"
	"github.com/rpggio/chessnote/internal/domain/tree"
	"github.com/rpggio/chessnote/internal/domain/xiangqi"
	"github.com/stretchr/testify/require"
)

func sampleTree() *tree.Node {
	rootID := "root"
	return &tree.Node{
		ID:   rootID,
		FEN:  xiangqi.StartFEN,
		Turn: xiangqi.Red,
		Children: []*tree.Node{{
			ID:       "n1",
			ParentID: &rootID,
			FEN:      xiangqi.StartFEN,
			Turn:     xiangqi.Black,
			Comment:  "炮二平五",
		}},
	}
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	require.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	require.Equal(t, slog.LevelError, parseLogLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLogLevel("info"))
	require.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}

func TestLogFileWriterTruncatesToNewestBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")
	w, file, err := newLogFileWriter(path)
	require.NoError(t, err)
	defer file.Close()

	w.maxBytes = 10
	w.keep = 4

	_, err = w.Write([]byte("0123456789"))
	require.NoError(t, err)
	_, err = w.Write([]byte("abc"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "9abc", string(data))
}

func TestInspectPayloadSummary(t *testing.T) {
	payload, err := codec.Encode(sampleTree())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, inspectPayload(&out, payload, false, false))
	require.Contains(t, out.String(), "format: compressed")
	require.Contains(t, out.String(), "nodes:  2")
	require.Contains(t, out.String(), "depth:  2")

	legacy, err := json.Marshal(sampleTree())
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, inspectPayload(&out, string(legacy), false, false))
	require.Contains(t, out.String(), "format: legacy")
}

func TestInspectPayloadJSON(t *testing.T) {
	payload, err := codec.Encode(sampleTree())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, inspectPayload(&out, payload, true, true))

	var decoded tree.Node
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Equal(t, "root", decoded.ID)
	require.NotNil(t, decoded.BoardState)
	require.Len(t, decoded.Children, 1)
	require.Equal(t, "炮二平五", decoded.Children[0].Comment)
}

func TestInspectPayloadRejectsGarbage(t *testing.T) {
	err := inspectPayload(&bytes.Buffer{}, "{not json", false, false)
	require.ErrorIs(t, err, codec.ErrCorruptRecord)
}

func TestBuildStackSQLite(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "data", "chessnote.db")
	cfg.Store.EnforceIndexes = true

	ctx := context.Background()
	st, err := buildStack(ctx, cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer st.close()

	lib, err := st.libraries.Create(ctx, "u1", library.CreateRequest{Title: "開局"})
	require.NoError(t, err)

	payloadTree := sampleTree()
	saved, err := st.games.Save(ctx, "u1", game.SaveRequest{
		Title:     "中炮對屏風馬",
		Root:      payloadTree,
		LibraryID: &lib.ID,
	})
	require.NoError(t, err)

	games, err := st.games.List(ctx, game.ByLibrary(lib.ID))
	require.NoError(t, err)
	require.Len(t, games, 1)
	require.Equal(t, saved.ID, games[0].ID)

	report, err := st.libraries.Reconcile(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Checked)
	require.Empty(t, report.Fixed)
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, _, err := openStore(context.Background(), config.StoreConfig{Driver: "mongo"}, slog.New(slog.DiscardHandler))
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "mongo"))
}

func TestKeyResolver(t *testing.T) {
	resolver := keyResolver(config.AuthConfig{Keys: []config.APIKey{
		{TokenSHA256: "9F86D081884C7D659A2FEAA0C55AD015A3BF4F1B2B0B822CD15D6C15B0F00A08", OwnerID: "u1"},
	}})
	owner, err := resolver.ResolveOwner(context.Background(), "test")
	require.NoError(t, err)
	require.Equal(t, "u1", owner)
}
