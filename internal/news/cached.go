package news

import (
	"context"

	"stock-sentiment-roi/internal/cache"
	"stock-sentiment-roi/internal/interfaces"
	"stock-sentiment-roi/internal/types"
)

type cachedSource struct {
	name  string
	src   interfaces.NewsSource
	cache *cache.Cache
}

// WithCache serves repeated queries for the same term and day from c.
// A nil cache returns src unchanged.
func WithCache(name string, src interfaces.NewsSource, c *cache.Cache) interfaces.NewsSource {
	if c == nil {
		return src
	}
	return &cachedSource{name: name, src: src, cache: c}
}

func (s *cachedSource) Query(ctx context.Context, term string, since types.Date) ([]types.Article, error) {
	key := cache.Key("news", s.name, term, since.String())
	return cache.GetOrFetch(ctx, s.cache, key, func(ctx context.Context) ([]types.Article, error) {
		return s.src.Query(ctx, term, since)
	})
}
