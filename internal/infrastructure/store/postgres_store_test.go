package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only when TEST_DATABASE_URL points at a disposable database.
func TestPostgresStore_Integration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := ConnectPostgres(dsn)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	s := NewPostgresStore(db)
	require.NoError(t, s.EnsureSchema(ctx))

	key := "test_" + time.Now().Format("150405.000000")
	t.Cleanup(func() { _ = s.Delete(ctx, key) })

	require.NoError(t, s.Set(ctx, key, []byte("one"), 0))
	require.NoError(t, s.Set(ctx, key, []byte("two"), time.Hour))

	got, found, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("two"), got)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, found, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
}
