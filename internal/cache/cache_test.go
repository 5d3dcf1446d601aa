package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour)
	require.NoError(t, err)

	require.NoError(t, c.Set("a", []byte(`{"x":1}`)))
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.JSONEq(t, `{"x":1}`, string(got))

	_, ok = c.Get("b")
	assert.False(t, ok)

	require.NoError(t, c.Delete("a"))
	require.NoError(t, c.Delete("a"))
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c, err := New(t.TempDir(), time.Minute)
	require.NoError(t, err)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	require.NoError(t, c.Set("k", []byte(`"v"`)))

	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestGetOrFetch(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	calls := 0
	fetch := func(context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	v, err := GetOrFetch(ctx, c, Key("news", "AAPL", "2024-03-01"), fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)

	v, err = GetOrFetch(ctx, c, Key("news", "AAPL", "2024-03-01"), fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)
	assert.Equal(t, 1, calls)
}

func TestGetOrFetch_ErrorsNotCached(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour)
	require.NoError(t, err)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err = GetOrFetch(ctx, c, "k", func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	v, err := GetOrFetch(ctx, c, "k", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestGetOrFetch_NilCache(t *testing.T) {
	v, err := GetOrFetch(context.Background(), nil, "k", func(context.Context) (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}
