package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/catalog-flipbook/internal/infrastructure/store"
	"github.com/example/catalog-flipbook/internal/infrastructure/store/mocks"
	"github.com/example/catalog-flipbook/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageCache_PutGet(t *testing.T) {
	ctx := context.Background()
	s := mocks.NewMockStore()
	c := NewImageCache(s, time.Hour, 10, logger.Nop())

	_, ok := c.Get(ctx, 1)
	assert.False(t, ok)

	c.Put(ctx, 1, "data:image/png;base64,AAAA")
	got, ok := c.Get(ctx, 1)
	assert.True(t, ok)
	assert.Equal(t, "data:image/png;base64,AAAA", got)

	require.Len(t, s.SetCalls, 1)
	assert.Equal(t, store.ImageKey(1), s.SetCalls[0].Key)
	assert.Equal(t, time.Hour, s.SetCalls[0].TTL)
}

func TestImageCache_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	s := mocks.NewMockStore()
	c := NewImageCache(s, 0, 2, logger.Nop())

	c.Put(ctx, 1, "a")
	c.Put(ctx, 2, "b")
	c.Put(ctx, 2, "b2")
	c.Put(ctx, 3, "c")

	assert.Equal(t, 2, c.Len())
	assert.False(t, s.Has(store.ImageKey(1)))
	assert.True(t, s.Has(store.ImageKey(2)))
	assert.True(t, s.Has(store.ImageKey(3)))
	assert.Equal(t, []string{store.ImageKey(1)}, s.DeleteCalls)
}

func TestImageCache_Unbounded(t *testing.T) {
	ctx := context.Background()
	c := NewImageCache(mocks.NewMockStore(), 0, 0, logger.Nop())

	for i := 0; i < 50; i++ {
		c.Put(ctx, i, "x")
	}
	assert.Equal(t, 50, c.Len())
}

func TestImageCache_ExpiredEntryIsForgotten(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := store.NewMemoryStoreWithClock(func() time.Time { return now })
	c := NewImageCache(s, time.Minute, 10, logger.Nop())

	c.Put(ctx, 7, "x")
	now = now.Add(time.Minute)

	_, ok := c.Get(ctx, 7)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestImageCache_StoreFailuresAreMisses(t *testing.T) {
	ctx := context.Background()
	s := mocks.NewMockStore()
	c := NewImageCache(s, 0, 10, logger.Nop())

	s.SetErr = errors.New("disk full")
	c.Put(ctx, 1, "x")
	assert.Equal(t, 0, c.Len())

	s.SetErr = nil
	s.Seed(store.ImageKey(1), []byte("x"))
	s.GetErr = errors.New("unreachable")
	_, ok := c.Get(ctx, 1)
	assert.False(t, ok)
}
