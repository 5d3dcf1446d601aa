package pricesobs

import (
	"context"
	"time"

	"stock-sentiment-roi/internal/interfaces"
	"stock-sentiment-roi/internal/logger"
	"stock-sentiment-roi/internal/trace"
	"stock-sentiment-roi/internal/types"
)

type observablePriceSource struct {
	source   interfaces.PriceSource
	provider string
}

var _ interfaces.PriceSource = (*observablePriceSource)(nil)

func Wrap(source interfaces.PriceSource, provider string) interfaces.PriceSource {
	return &observablePriceSource{source: source, provider: provider}
}

func (o *observablePriceSource) DailyCloses(ctx context.Context, ticker string, from, to types.Date) ([]types.Close, error) {
	ctx, span := trace.StartSpan(ctx, "prices.DailyCloses")
	defer span.End()

	start := time.Now()
	closes, err := o.source.DailyCloses(ctx, ticker, from, to)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Price fetch failed", err,
			"provider", o.provider,
			"ticker", ticker,
			"from", from.String(),
			"to", to.String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Prices fetched",
		"provider", o.provider,
		"ticker", ticker,
		"closes", len(closes),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return closes, nil
}
