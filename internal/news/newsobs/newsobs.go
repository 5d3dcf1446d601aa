package newsobs

import (
	"context"
	"time"

	"stock-sentiment-roi/internal/interfaces"
	"stock-sentiment-roi/internal/logger"
	"stock-sentiment-roi/internal/trace"
	"stock-sentiment-roi/internal/types"
)

type observableNewsSource struct {
	source   interfaces.NewsSource
	provider string
}

var _ interfaces.NewsSource = (*observableNewsSource)(nil)

func Wrap(source interfaces.NewsSource, provider string) interfaces.NewsSource {
	return &observableNewsSource{
		source:   source,
		provider: provider,
	}
}

func (o *observableNewsSource) Query(ctx context.Context, term string, since types.Date) ([]types.Article, error) {
	ctx, span := trace.StartSpan(ctx, "news.Query")
	defer span.End()

	start := time.Now()
	articles, err := o.source.Query(ctx, term, since)
	duration := time.Since(start)

	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "News query failed", err,
			"provider", o.provider,
			"term", term,
			"since", since.String(),
			"duration_ms", duration.Milliseconds(),
		)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "News query completed",
		"provider", o.provider,
		"term", term,
		"since", since.String(),
		"articles", len(articles),
		"duration_ms", duration.Milliseconds(),
	)
	return articles, nil
}
