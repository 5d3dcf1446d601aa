// Package prices provides daily closing prices from Yahoo Finance, Zerodha
// Kite or local CSV files.
package prices

import (
	"context"
	"sort"
	"time"

	"stock-sentiment-roi/internal/cache"
	"stock-sentiment-roi/internal/interfaces"
	"stock-sentiment-roi/internal/types"
)

// normalize sorts closes by date, drops duplicates (last one wins) and keeps
// only those within [from, to].
func normalize(closes []types.Close, from, to types.Date) []types.Close {
	sort.SliceStable(closes, func(i, j int) bool { return closes[i].Date.Before(closes[j].Date) })

	out := make([]types.Close, 0, len(closes))
	for _, c := range closes {
		if c.Date.Before(from) || c.Date.After(to) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Date == c.Date {
			out[n-1] = c
			continue
		}
		out = append(out, c)
	}
	return out
}

type cachedSource struct {
	name  string
	src   interfaces.PriceSource
	cache *cache.Cache
	today func() types.Date
}

// WithCache serves repeated range queries from c. A nil cache returns src.
// Ranges reaching today or later are never cached since their closes are
// still arriving.
func WithCache(name string, src interfaces.PriceSource, c *cache.Cache) interfaces.PriceSource {
	if c == nil {
		return src
	}
	return &cachedSource{name: name, src: src, cache: c, today: func() types.Date { return types.DateOf(time.Now()) }}
}

func (s *cachedSource) DailyCloses(ctx context.Context, ticker string, from, to types.Date) ([]types.Close, error) {
	if !to.Before(s.today()) {
		return s.src.DailyCloses(ctx, ticker, from, to)
	}
	key := cache.Key("prices", s.name, ticker, from.String(), to.String())
	return cache.GetOrFetch(ctx, s.cache, key, func(ctx context.Context) ([]types.Close, error) {
		return s.src.DailyCloses(ctx, ticker, from, to)
	})
}
