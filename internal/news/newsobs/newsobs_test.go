package newsobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-sentiment-roi/internal/types"
)

type fakeSource struct {
	articles []types.Article
	err      error
	calls    int
}

func (f *fakeSource) Query(context.Context, string, types.Date) ([]types.Article, error) {
	f.calls++
	return f.articles, f.err
}

func TestWrap_PassesThrough(t *testing.T) {
	src := &fakeSource{articles: []types.Article{{Title: "a"}, {Title: "b"}}}
	got, err := Wrap(src, "fake").Query(context.Background(), "AAPL", types.MustParseDate("2024-03-01"))
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, src.calls)
}

func TestWrap_ReturnsError(t *testing.T) {
	src := &fakeSource{err: types.ErrSourceUnavailable}
	got, err := Wrap(src, "fake").Query(context.Background(), "AAPL", types.MustParseDate("2024-03-01"))
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, types.ErrSourceUnavailable))
}
