package llmobs

import (
	"context"
	"time"

	"stock-sentiment-roi/internal/interfaces"
	"stock-sentiment-roi/internal/logger"
	"stock-sentiment-roi/internal/trace"
)

// observableClassifier wraps a SentimentClassifier with logging and tracing
type observableClassifier struct {
	classifier interfaces.SentimentClassifier
	provider   string
	model      string
}

// Compile-time interface check
var _ interfaces.SentimentClassifier = (*observableClassifier)(nil)

// Wrap wraps a classifier with observability middleware
func Wrap(classifier interfaces.SentimentClassifier, provider, model string) interfaces.SentimentClassifier {
	return &observableClassifier{
		classifier: classifier,
		provider:   provider,
		model:      model,
	}
}

func (oc *observableClassifier) Classify(ctx context.Context, text string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Classify")
	defer span.End()

	// DebugSkip(1) reports the actual caller, not this wrapper
	logger.DebugSkip(ctx, 1, "Requesting sentiment",
		"provider", oc.provider,
		"model", oc.model,
		"text_len", len(text),
	)

	start := time.Now()
	raw, err := oc.classifier.Classify(ctx, text)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Sentiment classification failed", err,
			"provider", oc.provider,
			"model", oc.model,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	logger.DebugSkip(ctx, 1, "Sentiment received",
		"provider", oc.provider,
		"raw", raw,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return raw, nil
}
