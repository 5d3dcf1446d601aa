// Package returns computes forward percentage returns from daily closes.
package returns

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"stock-sentiment-roi/internal/interfaces"
	"stock-sentiment-roi/internal/logger"
	"stock-sentiment-roi/internal/retry"
	"stock-sentiment-roi/internal/types"
)

// Window selects the closes used for a key's return. The forward closes of a
// date are the closes strictly after it; the window starts Offset closes in
// and spans Days closes.
type Window struct {
	Offset int
	Days   int
}

// DefaultWindow uses the first three forward closes.
func DefaultWindow() Window {
	return Window{Offset: 0, Days: 3}
}

func (w Window) validate() error {
	if w.Offset < 0 {
		return fmt.Errorf("%w: window offset must not be negative", types.ErrConfiguration)
	}
	if w.Days < 2 {
		return fmt.Errorf("%w: window must span at least 2 closes", types.ErrConfiguration)
	}
	return nil
}

// need is the number of forward closes the window requires.
func (w Window) need() int { return w.Offset + w.Days }

var hundred = decimal.NewFromInt(100)

// Compute applies the window to forward closes (already strictly after the
// key's date, ascending). The result is (p[last] - p[first]) / p[first] * 100.
func (w Window) Compute(forward []types.Close) (float64, error) {
	if len(forward) < w.need() {
		return 0, fmt.Errorf("%w: have %d forward closes, need %d", types.ErrDataInsufficient, len(forward), w.need())
	}
	first := forward[w.Offset].Price
	last := forward[w.need()-1].Price
	if !first.IsPositive() {
		return 0, fmt.Errorf("%w: non-positive start price %s on %s", types.ErrDataInsufficient, first, forward[w.Offset].Date)
	}
	roi := last.Sub(first).Div(first).Mul(hundred)
	return roi.InexactFloat64(), nil
}

type Option func(*Calculator)

// WithWorkers bounds how many tickers are fetched concurrently.
func WithWorkers(n int) Option {
	return func(c *Calculator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithRetry wraps every price fetch with p.
func WithRetry(p retry.Policy) Option {
	return func(c *Calculator) { c.retry = p }
}

// WithLookahead sets how many calendar days past a date are fetched to find
// its forward closes. It must cover weekends and holidays.
func WithLookahead(days int) Option {
	return func(c *Calculator) {
		if days > 0 {
			c.lookahead = days
		}
	}
}

// Calculator builds ReturnRows from a PriceSource.
type Calculator struct {
	prices    interfaces.PriceSource
	window    Window
	workers   int
	retry     retry.Policy
	lookahead int
}

func NewCalculator(prices interfaces.PriceSource, window Window, opts ...Option) (*Calculator, error) {
	if err := window.validate(); err != nil {
		return nil, err
	}
	c := &Calculator{
		prices:    prices,
		window:    window,
		workers:   4,
		retry:     retry.DefaultPolicy(),
		lookahead: 14,
	}
	for _, opt := range opts {
		opt(c)
	}
	if floor := window.need() * 2; c.lookahead < floor {
		c.lookahead = floor
	}
	return c, nil
}

func (c *Calculator) fetch(ctx context.Context, ticker string, from, to types.Date) ([]types.Close, error) {
	var closes []types.Close
	err := retry.Do(ctx, c.retry, func(ctx context.Context) error {
		var err error
		closes, err = c.prices.DailyCloses(ctx, ticker, from, to)
		if errors.Is(err, types.ErrDataInsufficient) {
			return retry.Permanent(err)
		}
		return err
	})
	return closes, err
}

// ROI returns the forward return of ticker after date.
func (c *Calculator) ROI(ctx context.Context, ticker string, date types.Date) (float64, error) {
	closes, err := c.fetch(ctx, ticker, date.AddDays(1), date.AddDays(c.lookahead))
	if err != nil {
		return 0, err
	}
	return c.window.Compute(forwardOf(closes, date))
}

// forwardOf returns the closes strictly after date. closes must be ascending.
func forwardOf(closes []types.Close, date types.Date) []types.Close {
	i := sort.Search(len(closes), func(i int) bool { return closes[i].Date.After(date) })
	return closes[i:]
}

// ReturnSet is the output of Build.
type ReturnSet struct {
	Rows    []types.ReturnRow
	Skipped []types.KeyFailure
}

// Build computes a ReturnRow for every (ticker, date) in the inclusive range
// whose window is fully available. Closes for each ticker are fetched once.
// Keys that cannot be computed land in Skipped and never abort the batch;
// only context cancellation is returned as an error.
func (c *Calculator) Build(ctx context.Context, tickers []string, start, end types.Date) (*ReturnSet, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s is before start %s", types.ErrConfiguration, end, start)
	}

	sorted := append([]string(nil), tickers...)
	sort.Strings(sorted)
	days := types.DateRange(start, end)

	op := logger.StartOperation(ctx, "returns.Build",
		"tickers", len(sorted),
		"days", len(days),
		"window_offset", c.window.Offset,
		"window_days", c.window.Days,
	)
	ctx = op.GetContext()

	type tickerResult struct {
		rows    []types.ReturnRow
		skipped []types.KeyFailure
	}
	results := make([]tickerResult, len(sorted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, ticker := range sorted {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows, skipped := c.buildTicker(gctx, ticker, days)
			results[i] = tickerResult{rows: rows, skipped: skipped}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		op.EndWithError(err)
		return nil, err
	}

	set := &ReturnSet{}
	for _, r := range results {
		set.Rows = append(set.Rows, r.rows...)
		set.Skipped = append(set.Skipped, r.skipped...)
	}
	op.End("rows", len(set.Rows), "skipped", len(set.Skipped))
	return set, nil
}

func (c *Calculator) buildTicker(ctx context.Context, ticker string, days []types.Date) ([]types.ReturnRow, []types.KeyFailure) {
	if len(days) == 0 {
		return nil, nil
	}
	first, last := days[0], days[len(days)-1]

	skipAll := func(err error) []types.KeyFailure {
		out := make([]types.KeyFailure, 0, len(days))
		for _, d := range days {
			out = append(out, types.KeyFailure{Key: types.Key{Ticker: ticker, Date: d}, Stage: "returns", Err: err})
		}
		logger.KeyFailure(ctx, "returns", ticker, first.String()+".."+last.String(), err)
		return out
	}

	closes, err := c.fetch(ctx, ticker, first.AddDays(1), last.AddDays(c.lookahead))
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil
		}
		return nil, skipAll(err)
	}

	var rows []types.ReturnRow
	var skipped []types.KeyFailure
	for _, d := range days {
		roi, err := c.window.Compute(forwardOf(closes, d))
		if err != nil {
			skipped = append(skipped, types.KeyFailure{Key: types.Key{Ticker: ticker, Date: d}, Stage: "returns", Err: err})
			logger.Debug(ctx, "Return not computable", "ticker", ticker, "date", d.String(), "error", err)
			continue
		}
		rows = append(rows, types.ReturnRow{Ticker: ticker, Date: d, ROI: roi})
	}
	return rows, skipped
}
