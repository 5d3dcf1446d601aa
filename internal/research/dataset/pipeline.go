package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"stock-sentiment-roi/internal/logger"
	"stock-sentiment-roi/internal/research/returns"
	"stock-sentiment-roi/internal/research/sentiment"
	"stock-sentiment-roi/internal/types"
)

// Analyzer produces the analysis table for a request.
type Analyzer interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// Collector is the sentiment branch's source of observations.
type Collector interface {
	Collect(ctx context.Context, req sentiment.CollectRequest) (*sentiment.Collection, error)
}

// ReturnBuilder is the return branch.
type ReturnBuilder interface {
	Build(ctx context.Context, tickers []string, start, end types.Date) (*returns.ReturnSet, error)
}

// Request describes one analysis run.
type Request struct {
	Tickers        []string
	Start          types.Date
	End            types.Date
	ArticlesPerDay int
}

// Result holds the final table and the intermediate tables behind it.
type Result struct {
	RunID        string
	Request      Request
	StartedAt    time.Time
	Duration     time.Duration
	Observations []types.Observation
	Summary      []types.SentimentSummaryRow
	Returns      []types.ReturnRow
	Rows         []types.AnalysisRow
	// SentimentFailed lists keys whose news or classification failed.
	SentimentFailed []types.KeyFailure
	// ReturnsSkipped lists keys without a computable return.
	ReturnsSkipped []types.KeyFailure
	// KeysRequested is tickers x days.
	KeysRequested int
}

type Option func(*Pipeline)

// WithRunID fixes the run ID instead of generating one.
func WithRunID(id string) Option {
	return func(p *Pipeline) { p.runID = id }
}

// Pipeline runs the sentiment and return branches concurrently and joins them.
type Pipeline struct {
	collector  Collector
	calculator ReturnBuilder
	runID      string
	now        func() time.Time
}

var _ Analyzer = (*Pipeline)(nil)

func NewPipeline(collector Collector, calculator ReturnBuilder, opts ...Option) *Pipeline {
	p := &Pipeline{collector: collector, calculator: calculator, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Run executes both branches and joins them. A fatal error in either branch,
// including cancellation, fails the run; per-key failures are reported in
// the Result.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if req.End.Before(req.Start) {
		return nil, fmt.Errorf("%w: end %s is before start %s", types.ErrConfiguration, req.End, req.Start)
	}

	runID := p.runID
	if runID == "" {
		runID = NewRunID()
	}
	res := &Result{
		RunID:         runID,
		Request:       req,
		StartedAt:     p.now(),
		KeysRequested: len(req.Tickers) * len(types.DateRange(req.Start, req.End)),
	}

	op := logger.StartOperation(ctx, "dataset.Run",
		"run_id", runID,
		"tickers", len(req.Tickers),
		"start", req.Start.String(),
		"end", req.End.String(),
	)
	ctx = op.GetContext()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		col, err := p.collector.Collect(gctx, sentiment.CollectRequest{
			Tickers:        req.Tickers,
			Start:          req.Start,
			End:            req.End,
			ArticlesPerDay: req.ArticlesPerDay,
		})
		if err != nil {
			return fmt.Errorf("sentiment branch: %w", err)
		}
		res.Observations = col.Observations
		res.SentimentFailed = col.Failed
		res.Summary = sentiment.Summarize(col.Observations)
		return nil
	})
	g.Go(func() error {
		set, err := p.calculator.Build(gctx, req.Tickers, req.Start, req.End)
		if err != nil {
			return fmt.Errorf("returns branch: %w", err)
		}
		res.Returns = set.Rows
		res.ReturnsSkipped = set.Skipped
		return nil
	})
	if err := g.Wait(); err != nil {
		op.EndWithError(err)
		return nil, err
	}

	res.Rows = Join(res.Summary, res.Returns)
	res.Duration = p.now().Sub(res.StartedAt)

	op.End(
		"observations", len(res.Observations),
		"summary_rows", len(res.Summary),
		"return_rows", len(res.Returns),
		"rows", len(res.Rows),
	)
	return res, nil
}
