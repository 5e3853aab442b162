package seen

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "seen.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreColdStart(t *testing.T) {
	s := newTestSQLite(t)
	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 0, s.Count())
}

func TestSQLiteStoreMarkSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seen.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Load(ctx))
	s.Mark([]string{"https://example.com/a", "https://example.com/b"})
	require.NoError(t, s.Save(ctx))
	require.NoError(t, s.Close())

	reloaded, err := NewSQLite(path)
	require.NoError(t, err)
	defer reloaded.Close()
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, 2, reloaded.Count())
	assert.True(t, reloaded.Contains("https://example.com/a"))
}

func TestSQLiteStoreSaveWithoutPendingIsNoop(t *testing.T) {
	s := newTestSQLite(t)
	require.NoError(t, s.Load(context.Background()))
	require.NoError(t, s.Save(context.Background()))
}

func TestSQLiteStorePrune(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	require.NoError(t, s.Load(ctx))

	old := time.Now().UTC().Add(-40 * 24 * time.Hour)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO seen_urls (url, first_seen) VALUES (?, ?)`,
		"https://old.example/1", old,
	)
	require.NoError(t, err)
	require.NoError(t, s.Load(ctx))
	s.Mark([]string{"https://new.example/2"})
	require.NoError(t, s.Save(ctx))

	removed, err := s.Prune(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.False(t, s.Contains("https://old.example/1"))
	assert.True(t, s.Contains("https://new.example/2"))
}

func TestSQLiteStoreMarkDuplicateURL(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	require.NoError(t, s.Load(ctx))

	s.Mark([]string{"https://example.com/a"})
	s.Mark([]string{"https://example.com/a"})
	assert.Equal(t, 1, s.Count())
	require.NoError(t, s.Save(ctx))

	// Saving again after re-marking must not error on the primary key.
	s.pending = []string{"https://example.com/a"}
	require.NoError(t, s.Save(ctx))
}
