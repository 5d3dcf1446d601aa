package interfaces

import (
	"context"

	"stock-sentiment-roi/internal/types"
)

// NewsSource returns articles matching term published on or after since,
// ordered by the source's own popularity ranking.
type NewsSource interface {
	Query(ctx context.Context, term string, since types.Date) ([]types.Article, error)
}

// SentimentClassifier returns the model's free-text verdict for text. The
// caller is responsible for normalizing it to a types.Label.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// PriceSource returns the daily closes for ticker dated within [from, to],
// in ascending date order. Non-trading days are simply absent.
type PriceSource interface {
	DailyCloses(ctx context.Context, ticker string, from, to types.Date) ([]types.Close, error)
}
