package fundamentals

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valuehunter/hunter/pkg/config"
	"github.com/valuehunter/hunter/pkg/logger"
)

func writeSnapshotFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshots.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileSource_Fetch(t *testing.T) {
	path := writeSnapshotFile(t,
		"ticker,company,sector,price,trailing_eps,book_value_per_share\n"+
			"AAPL,Apple Inc.,Technology,182.52,6.14,4.38\n"+
			"XYZ,,,not-a-number,,\n")

	log := logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
	source := NewFileSource(path, log)

	snapshots, err := source.Fetch(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	assert.Equal(t, "AAPL", snapshots[0].Ticker)
	assert.Equal(t, "Technology", snapshots[0].Sector)
	assert.Equal(t, 182.52, snapshots[0].Price.Float64)
	assert.Equal(t, 6.14, snapshots[0].TrailingEPS.Float64)
	assert.False(t, snapshots[0].ForwardPE.Valid, "column absent from file stays absent")

	assert.Equal(t, "XYZ", snapshots[1].Ticker)
	assert.False(t, snapshots[1].Price.Valid, "unparseable cell becomes absent")
}

func TestFileSource_MissingTickerColumn(t *testing.T) {
	path := writeSnapshotFile(t, "symbol,price\nAAPL,182.52\n")
	log := logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})

	_, err := NewFileSource(path, log).Fetch(context.Background(), nil)
	assert.Error(t, err)
}

func TestFileSource_HeaderOnly(t *testing.T) {
	path := writeSnapshotFile(t, "ticker,price\n")
	log := logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})

	_, err := NewFileSource(path, log).Fetch(context.Background(), nil)
	assert.Error(t, err)
}

func TestFileSource_MissingFile(t *testing.T) {
	log := logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.csv"), log).Fetch(context.Background(), nil)
	assert.Error(t, err)
}
