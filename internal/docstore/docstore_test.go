package docstore

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveTimestamps(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 500, time.UTC)
	earlier := now.Add(-time.Hour)

	in := Fields{"title": "x", "created_at": ServerTimestamp, "date": earlier}
	out := ResolveTimestamps(in, now)

	require.Equal(t, TimestampOf(now), out["created_at"])
	require.Equal(t, TimestampOf(earlier), out["date"])
	require.Equal(t, "x", out["title"])
	require.True(t, IsServerTimestamp(in["created_at"]), "input must not be modified")
}

func TestNormalizeTimestamps_FromJSON(t *testing.T) {
	ts := TimestampOf(time.Date(2023, 5, 6, 7, 8, 9, 10, time.UTC))
	data, err := json.Marshal(map[string]any{"updated_at": ts, "meta": map[string]any{"seconds": 1}})
	require.NoError(t, err)

	var fields Fields
	require.NoError(t, json.Unmarshal(data, &fields))
	NormalizeTimestamps(fields)

	require.Equal(t, ts, fields["updated_at"])
	require.IsType(t, map[string]any{}, fields["meta"])
}

func TestAsTime(t *testing.T) {
	when := time.Date(2022, 1, 2, 3, 4, 5, 6, time.UTC)

	got, ok := AsTime(TimestampOf(when))
	require.True(t, ok)
	require.True(t, when.Equal(got))

	got, ok = AsTime(map[string]any{"seconds": float64(when.Unix()), "nanos": float64(6)})
	require.True(t, ok)
	require.True(t, when.Equal(got))

	_, ok = AsTime("2022-01-02")
	require.False(t, ok)
	_, ok = AsTime(nil)
	require.False(t, ok)
	_, ok = AsTime(time.Time{})
	require.False(t, ok)
}

func TestAsInt64(t *testing.T) {
	for _, v := range []any{3, int32(3), int64(3), float64(3), json.Number("3"), json.Number("3.0")} {
		n, ok := AsInt64(v)
		require.True(t, ok, "%T", v)
		require.Equal(t, int64(3), n)
	}
	_, ok := AsInt64("3")
	require.False(t, ok)
}
