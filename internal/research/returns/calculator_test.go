package returns

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-sentiment-roi/internal/retry"
	"stock-sentiment-roi/internal/types"
)

var d = types.MustParseDate

func closes(start string, prices ...float64) []types.Close {
	day := d(start)
	out := make([]types.Close, 0, len(prices))
	for _, p := range prices {
		out = append(out, types.Close{Date: day, Price: decimal.NewFromFloat(p)})
		day = day.AddDays(1)
	}
	return out
}

// fakePrices serves a fixed series per ticker, filtered to the requested range.
type fakePrices struct {
	mu     sync.Mutex
	series map[string][]types.Close
	fail   map[string]error
	calls  map[string]int
}

func (f *fakePrices) DailyCloses(_ context.Context, ticker string, from, to types.Date) ([]types.Close, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[ticker]++
	if err := f.fail[ticker]; err != nil {
		return nil, err
	}
	var out []types.Close
	for _, c := range f.series[ticker] {
		if !c.Date.Before(from) && !c.Date.After(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

func newCalc(t *testing.T, src *fakePrices, w Window) *Calculator {
	t.Helper()
	c, err := NewCalculator(src, w, WithRetry(retry.Policy{Attempts: 1}))
	require.NoError(t, err)
	return c
}

func TestWindow_Compute(t *testing.T) {
	roi, err := DefaultWindow().Compute(closes("2024-03-04", 100, 110, 95))
	require.NoError(t, err)
	assert.InDelta(t, -5.0, roi, 1e-12)

	roi, err = DefaultWindow().Compute(closes("2024-03-04", 100, 90, 150, 1))
	require.NoError(t, err)
	assert.InDelta(t, 50.0, roi, 1e-12)

	_, err = DefaultWindow().Compute(closes("2024-03-04", 100, 110))
	assert.ErrorIs(t, err, types.ErrDataInsufficient)

	_, err = DefaultWindow().Compute(closes("2024-03-04", 0, 110, 120))
	assert.ErrorIs(t, err, types.ErrDataInsufficient)
}

func TestWindow_Offset(t *testing.T) {
	w := Window{Offset: 1, Days: 2}
	roi, err := w.Compute(closes("2024-03-04", 100, 200, 250))
	require.NoError(t, err)
	assert.InDelta(t, 25.0, roi, 1e-12)

	_, err = w.Compute(closes("2024-03-04", 100, 200))
	assert.ErrorIs(t, err, types.ErrDataInsufficient)
}

func TestNewCalculator_InvalidWindow(t *testing.T) {
	_, err := NewCalculator(&fakePrices{}, Window{Offset: -1, Days: 3})
	assert.ErrorIs(t, err, types.ErrConfiguration)
	_, err = NewCalculator(&fakePrices{}, Window{Days: 1})
	assert.ErrorIs(t, err, types.ErrConfiguration)
}

func TestCalculator_ROI_UsesClosesStrictlyAfterDate(t *testing.T) {
	src := &fakePrices{series: map[string][]types.Close{
		// 2024-03-01 is the key's own close and must be ignored
		"AAPL": closes("2024-03-01", 50, 100, 110, 95),
	}}
	c := newCalc(t, src, DefaultWindow())

	roi, err := c.ROI(context.Background(), "AAPL", d("2024-03-01"))
	require.NoError(t, err)
	assert.InDelta(t, -5.0, roi, 1e-12)
}

func TestCalculator_ROI_SkipsGaps(t *testing.T) {
	// Friday key; the weekend has no closes.
	series := []types.Close{
		{Date: d("2024-03-01"), Price: decimal.NewFromInt(1)},
		{Date: d("2024-03-04"), Price: decimal.NewFromInt(100)},
		{Date: d("2024-03-05"), Price: decimal.NewFromInt(104)},
		{Date: d("2024-03-06"), Price: decimal.NewFromInt(102)},
	}
	c := newCalc(t, &fakePrices{series: map[string][]types.Close{"AAPL": series}}, DefaultWindow())

	roi, err := c.ROI(context.Background(), "AAPL", d("2024-03-01"))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, roi, 1e-12)
}

func TestCalculator_ROI_Insufficient(t *testing.T) {
	src := &fakePrices{series: map[string][]types.Close{"AAPL": closes("2024-03-02", 100, 110)}}
	c := newCalc(t, src, DefaultWindow())

	_, err := c.ROI(context.Background(), "AAPL", d("2024-03-01"))
	assert.ErrorIs(t, err, types.ErrDataInsufficient)
}

func TestCalculator_Build(t *testing.T) {
	down := fmt.Errorf("%w: timeout", types.ErrSourceUnavailable)
	src := &fakePrices{
		series: map[string][]types.Close{
			"AAPL": closes("2024-03-01", 100, 100, 110, 95, 120, 130),
			"TSLA": closes("2024-03-01", 200, 210, 220),
		},
		fail: map[string]error{"MSFT": down},
	}
	c := newCalc(t, src, DefaultWindow())

	set, err := c.Build(context.Background(), []string{"TSLA", "MSFT", "AAPL"}, d("2024-03-01"), d("2024-03-03"))
	require.NoError(t, err)

	// AAPL: 03-01 -> [100,110,95], 03-02 -> [110,95,120], 03-03 -> [95,120,130]
	require.Len(t, set.Rows, 3)
	for _, r := range set.Rows {
		assert.Equal(t, "AAPL", r.Ticker)
	}
	assert.InDelta(t, -5.0, set.Rows[0].ROI, 1e-9)
	assert.InDelta(t, (120.0-110.0)/110.0*100, set.Rows[1].ROI, 1e-9)
	assert.InDelta(t, (130.0-95.0)/95.0*100, set.Rows[2].ROI, 1e-9)

	// MSFT fails for every day, TSLA has too few forward closes.
	assert.Len(t, set.Skipped, 6)
	var msft, tsla int
	for _, s := range set.Skipped {
		switch s.Key.Ticker {
		case "MSFT":
			msft++
			assert.ErrorIs(t, s, types.ErrSourceUnavailable)
		case "TSLA":
			tsla++
			assert.ErrorIs(t, s, types.ErrDataInsufficient)
		}
	}
	assert.Equal(t, 3, msft)
	assert.Equal(t, 3, tsla)

	// one fetch per ticker
	assert.Equal(t, 1, src.calls["AAPL"])
}

func TestCalculator_BuildOrdered(t *testing.T) {
	src := &fakePrices{series: map[string][]types.Close{
		"A": closes("2024-03-01", 1, 2, 3, 4, 5, 6, 7, 8),
		"B": closes("2024-03-01", 1, 2, 3, 4, 5, 6, 7, 8),
		"C": closes("2024-03-01", 1, 2, 3, 4, 5, 6, 7, 8),
	}}
	c, err := NewCalculator(src, DefaultWindow(), WithWorkers(3), WithRetry(retry.Policy{Attempts: 1}))
	require.NoError(t, err)

	set, err := c.Build(context.Background(), []string{"C", "A", "B"}, d("2024-03-01"), d("2024-03-04"))
	require.NoError(t, err)
	require.Len(t, set.Rows, 12)
	for i := 1; i < len(set.Rows); i++ {
		assert.True(t, set.Rows[i-1].Key().Less(set.Rows[i].Key()))
	}
}

func TestCalculator_BuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newCalc(t, &fakePrices{}, DefaultWindow())

	_, err := c.Build(ctx, []string{"AAPL"}, d("2024-03-01"), d("2024-03-02"))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCalculator_BuildInvalidRange(t *testing.T) {
	c := newCalc(t, &fakePrices{}, DefaultWindow())
	_, err := c.Build(context.Background(), []string{"AAPL"}, d("2024-03-02"), d("2024-03-01"))
	assert.ErrorIs(t, err, types.ErrConfiguration)
}
