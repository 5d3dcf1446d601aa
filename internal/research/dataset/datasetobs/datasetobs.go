package datasetobs

import (
	"context"

	"stock-sentiment-roi/internal/logger"
	"stock-sentiment-roi/internal/research/dataset"
	"stock-sentiment-roi/internal/trace"
)

type observableAnalyzer struct {
	analyzer dataset.Analyzer
}

var _ dataset.Analyzer = (*observableAnalyzer)(nil)

func Wrap(analyzer dataset.Analyzer) dataset.Analyzer {
	return &observableAnalyzer{analyzer: analyzer}
}

func (o *observableAnalyzer) Run(ctx context.Context, req dataset.Request) (*dataset.Result, error) {
	ctx, span := trace.StartSpan(ctx, "dataset.Analyze")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Starting analysis",
		"tickers", req.Tickers,
		"start", req.Start.String(),
		"end", req.End.String(),
		"articles_per_day", req.ArticlesPerDay,
	)

	res, err := o.analyzer.Run(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Analysis failed", err,
			"tickers", req.Tickers,
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Analysis completed",
		"run_id", res.RunID,
		"keys_requested", res.KeysRequested,
		"observations", len(res.Observations),
		"rows", len(res.Rows),
		"sentiment_failed", len(res.SentimentFailed),
		"returns_skipped", len(res.ReturnsSkipped),
		"duration_ms", res.Duration.Milliseconds(),
	)
	for _, f := range res.SentimentFailed {
		logger.Warn(ctx, "Sentiment key failed", "key", f.Key.String(), "stage", f.Stage, "error", f.Err)
	}
	return res, nil
}
