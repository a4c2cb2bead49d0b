package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLite(db)
}

func TestKV(t *testing.T) {
	impls := map[string]func(t *testing.T) KV{
		"memory": func(t *testing.T) KV { return NewMemory() },
		"sqlite": func(t *testing.T) KV { return openTestDB(t) },
	}

	for name, mk := range impls {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			kv := mk(t)

			t.Run("missing keys report not found", func(t *testing.T) {
				_, ok, err := kv.GetInt(ctx, "numberCards")
				require.NoError(t, err)
				assert.False(t, ok)

				_, ok, err = kv.GetString(ctx, "gameMode")
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("writes are invisible until Apply", func(t *testing.T) {
				ed := kv.Edit().PutInt("numberCards", 3).PutString("gameMode", "Tree")

				_, ok, _ := kv.GetInt(ctx, "numberCards")
				assert.False(t, ok)

				require.NoError(t, ed.Apply(ctx))

				n, ok, err := kv.GetInt(ctx, "numberCards")
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, 3, n)

				s, ok, err := kv.GetString(ctx, "gameMode")
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, "Tree", s)
			})

			t.Run("later puts overwrite", func(t *testing.T) {
				require.NoError(t, kv.Edit().PutInt("numberCards", 4).PutInt("numberCards", 5).Apply(ctx))
				n, _, err := kv.GetInt(ctx, "numberCards")
				require.NoError(t, err)
				assert.Equal(t, 5, n)
			})

			t.Run("non-numeric value fails GetInt", func(t *testing.T) {
				require.NoError(t, kv.Edit().PutString("selectedCardIndex", "x").Apply(ctx))
				_, ok, err := kv.GetInt(ctx, "selectedCardIndex")
				assert.True(t, ok)
				assert.Error(t, err)
			})
		})
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	kv := openTestDB(t)
	require.NoError(t, Migrate(kv.db))
	require.NoError(t, Migrate(kv.db))

	var n int
	require.NoError(t, kv.db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bingo.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, NewSQLite(db).Edit().PutString("bingoCards", "[]").Apply(ctx))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	v, ok, err := NewSQLite(db).GetString(ctx, "bingoCards")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestMemoryApplyHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	kv := NewMemory()
	assert.Error(t, kv.Edit().PutInt("numberCards", 1).Apply(ctx))
}
