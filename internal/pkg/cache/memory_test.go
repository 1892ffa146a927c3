package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type genre struct {
	Name string `json:"name"`
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	var got []genre
	found, err := c.Get(ctx, "genres", &got)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, c.Set(ctx, "genres", []genre{{Name: "Fiction"}, {Name: "Poetry"}}, time.Minute))

	found, err = c.Get(ctx, "genres", &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []genre{{Name: "Fiction"}, {Name: "Poetry"}}, got)

	require.NoError(t, c.Delete(ctx, "genres", "missing"))
	found, err = c.Get(ctx, "genres", &got)
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "book:1", genre{Name: "x"}, time.Second))

	now = now.Add(2 * time.Second)
	var got genre
	found, err := c.Get(ctx, "book:1", &got)
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryCache_ImplementsCache(t *testing.T) {
	var _ Cache = NewMemoryCache()
	var _ Cache = (*RedisCache)(nil)
}
