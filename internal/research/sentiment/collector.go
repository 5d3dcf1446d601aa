// Package sentiment collects classified news observations per ticker and day
// and aggregates them into daily sentiment distributions.
package sentiment

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"stock-sentiment-roi/internal/interfaces"
	"stock-sentiment-roi/internal/journal"
	"stock-sentiment-roi/internal/logger"
	"stock-sentiment-roi/internal/news"
	"stock-sentiment-roi/internal/ratelimit"
	"stock-sentiment-roi/internal/retry"
	"stock-sentiment-roi/internal/types"
)

// Failure stages reported in Collection.Failed.
const (
	StageFetch    = "fetch"
	StageClassify = "classify"
)

// CollectorConfig tunes how the collector talks to its sources.
type CollectorConfig struct {
	// Workers is the number of keys processed concurrently. 1 is sequential.
	Workers int
	// Retry wraps every news query and classification call.
	Retry retry.Policy
}

// DefaultCollectorConfig processes keys one at a time.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{Workers: 1, Retry: retry.DefaultPolicy()}
}

type CollectorOption func(*Collector)

// WithPacer shares p across all workers; it is waited on before every
// classification.
func WithPacer(p *ratelimit.Pacer) CollectorOption {
	return func(c *Collector) { c.pacer = p }
}

// WithJournal records every kept observation.
func WithJournal(j *journal.Journal) CollectorOption {
	return func(c *Collector) { c.journal = j }
}

// CollectRequest names the keys to collect. Start and End are inclusive.
type CollectRequest struct {
	Tickers        []string
	Start          types.Date
	End            types.Date
	ArticlesPerDay int
}

// Keys expands the request into (ticker, date) keys ordered by ticker, then date.
func (r CollectRequest) Keys() []types.Key {
	tickers := append([]string(nil), r.Tickers...)
	sort.Strings(tickers)
	days := types.DateRange(r.Start, r.End)

	keys := make([]types.Key, 0, len(tickers)*len(days))
	for _, t := range tickers {
		for _, d := range days {
			keys = append(keys, types.Key{Ticker: t, Date: d})
		}
	}
	return keys
}

func (r CollectRequest) validate() error {
	if len(r.Tickers) == 0 {
		return fmt.Errorf("%w: no tickers", types.ErrConfiguration)
	}
	for _, t := range r.Tickers {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%w: empty ticker", types.ErrConfiguration)
		}
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", types.ErrConfiguration)
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("%w: end %s is before start %s", types.ErrConfiguration, r.End, r.Start)
	}
	if r.ArticlesPerDay < 1 {
		return fmt.Errorf("%w: articles per day must be at least 1", types.ErrConfiguration)
	}
	return nil
}

// Collection is the outcome of a collection run.
type Collection struct {
	Observations []types.Observation
	Failed       []types.KeyFailure
	// Requested is the number of keys in the request; Processed counts those
	// that were attempted before the run ended.
	Requested int
	Processed int
}

// Collector queries news for every (ticker, date) key and classifies each
// headline.
type Collector struct {
	cfg        CollectorConfig
	news       interfaces.NewsSource
	classifier interfaces.SentimentClassifier
	pacer      *ratelimit.Pacer
	journal    *journal.Journal
}

func NewCollector(cfg CollectorConfig, src interfaces.NewsSource, classifier interfaces.SentimentClassifier, opts ...CollectorOption) *Collector {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	c := &Collector{
		cfg:        cfg,
		news:       src,
		classifier: classifier,
		pacer:      ratelimit.Unpaced(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type keyResult struct {
	done         bool
	observations []types.Observation
	failure      *types.KeyFailure
}

// Collect gathers observations for every key in req. A fetch or
// classification failure discards that key's observations and is recorded in
// Failed; it never stops the run. When ctx is cancelled, Collect returns what
// it has so far along with ctx.Err().
func (c *Collector) Collect(ctx context.Context, req CollectRequest) (*Collection, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	keys := req.Keys()
	op := logger.StartOperation(ctx, "sentiment.Collect",
		"tickers", len(req.Tickers),
		"keys", len(keys),
		"workers", c.cfg.Workers,
	)
	ctx = op.GetContext()

	results := make([]keyResult, len(keys))
	var g errgroup.Group
	g.SetLimit(c.cfg.Workers)
	for i, key := range keys {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i] = c.collectKey(ctx, key, req.ArticlesPerDay)
			return nil
		})
	}
	_ = g.Wait()

	out := &Collection{Requested: len(keys)}
	for _, r := range results {
		if !r.done {
			continue
		}
		out.Processed++
		if r.failure != nil {
			out.Failed = append(out.Failed, *r.failure)
			continue
		}
		out.Observations = append(out.Observations, r.observations...)
	}

	if err := ctx.Err(); err != nil {
		op.EndWithError(err, "processed", out.Processed, "observations", len(out.Observations))
		return out, err
	}
	op.End("observations", len(out.Observations), "failed_keys", len(out.Failed))
	return out, nil
}

func (c *Collector) collectKey(ctx context.Context, key types.Key, limit int) keyResult {
	fail := func(stage string, err error) keyResult {
		if ctx.Err() != nil {
			// cancelled mid-key; not a key failure
			return keyResult{}
		}
		logger.KeyFailure(ctx, stage, key.Ticker, key.Date.String(), err)
		return keyResult{done: true, failure: &types.KeyFailure{Key: key, Stage: stage, Err: err}}
	}

	var articles []types.Article
	err := retry.Do(ctx, c.cfg.Retry, func(ctx context.Context) error {
		var err error
		articles, err = c.news.Query(ctx, key.Ticker, key.Date)
		return err
	})
	if err != nil {
		return fail(StageFetch, err)
	}
	if len(articles) > limit {
		articles = articles[:limit]
	}

	observations := make([]types.Observation, 0, len(articles))
	for _, a := range articles {
		text := news.Headline(a.Title, a.Description)
		if text == "" {
			logger.Debug(ctx, "Article without headline skipped",
				"ticker", key.Ticker,
				"date", key.Date.String(),
				"url", a.URL,
			)
			continue
		}

		var raw string
		err := retry.Do(ctx, c.cfg.Retry, func(attemptCtx context.Context) error {
			// every attempt is paced, retries included
			if err := c.pacer.Wait(ctx); err != nil {
				return err
			}
			var err error
			raw, err = c.classifier.Classify(attemptCtx, text)
			return err
		})
		if err != nil {
			return fail(StageClassify, err)
		}

		label := Normalize(raw)
		if label == types.Unknown {
			logger.Debug(ctx, "Unparseable sentiment",
				"ticker", key.Ticker,
				"date", key.Date.String(),
				"raw", raw,
				"error", types.ErrUnparseableSentiment,
			)
		}
		observations = append(observations, types.Observation{
			Ticker:    key.Ticker,
			Date:      key.Date,
			Sentiment: label,
			Headline:  text,
			Raw:       raw,
		})
	}

	if c.journal != nil {
		for _, o := range observations {
			if err := c.journal.Append(o); err != nil {
				logger.Warn(ctx, "Failed to journal observation", "ticker", o.Ticker, "error", err)
				break
			}
		}
	}

	logger.Debug(ctx, "Key collected",
		"ticker", key.Ticker,
		"date", key.Date.String(),
		"articles", len(articles),
		"observations", len(observations),
	)
	return keyResult{done: true, observations: observations}
}
