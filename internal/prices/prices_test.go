package prices

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"
	"github.com/zerodha/gokiteconnect/v4/models"

	"stock-sentiment-roi/internal/cache"
	"stock-sentiment-roi/internal/types"
)

var d = types.MustParseDate

func prices(closes []types.Close) []string {
	out := make([]string, len(closes))
	for i, c := range closes {
		out[i] = c.Date.String() + "=" + c.Price.String()
	}
	return out
}

func TestNormalize(t *testing.T) {
	in := []types.Close{
		{Date: d("2024-03-05"), Price: decimal.NewFromInt(105)},
		{Date: d("2024-03-01"), Price: decimal.NewFromInt(100)},
		{Date: d("2024-03-04"), Price: decimal.NewFromInt(103)},
		{Date: d("2024-03-04"), Price: decimal.NewFromInt(104)},
		{Date: d("2024-03-10"), Price: decimal.NewFromInt(110)},
	}
	got := normalize(in, d("2024-03-02"), d("2024-03-06"))
	assert.Equal(t, []string{"2024-03-04=104", "2024-03-05=105"}, prices(got))
}

func TestCSVDir(t *testing.T) {
	dir := t.TempDir()
	csv := "date,open,close\n2024-03-04,1,101.5\n2024-03-01,1,100\n2024-03-05,1,99.25\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AAPL.csv"), []byte(csv), 0o644))

	s := NewCSVDir(dir)
	got, err := s.DailyCloses(context.Background(), "aapl", d("2024-03-02"), d("2024-03-31"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-04=101.5", "2024-03-05=99.25"}, prices(got))

	_, err = s.DailyCloses(context.Background(), "MSFT", d("2024-03-02"), d("2024-03-31"))
	assert.ErrorIs(t, err, types.ErrDataInsufficient)
}

func TestYahoo(t *testing.T) {
	var gotParams *chart.Params
	y := &Yahoo{fetch: func(p *chart.Params) ([]finance.ChartBar, *time.Location, error) {
		gotParams = p
		return []finance.ChartBar{
			{Close: decimal.NewFromFloat(101), Timestamp: int(time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC).Unix())},
			{Close: decimal.NewFromFloat(102), Timestamp: int(time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC).Unix())},
		}, time.UTC, nil
	}}

	got, err := y.DailyCloses(context.Background(), "AAPL", d("2024-03-02"), d("2024-03-05"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-04=101", "2024-03-05=102"}, prices(got))
	require.NotNil(t, gotParams)
	assert.Equal(t, "AAPL", gotParams.Symbol)

	y.fetch = func(*chart.Params) ([]finance.ChartBar, *time.Location, error) {
		return nil, nil, errors.New("rate limited")
	}
	_, err = y.DailyCloses(context.Background(), "AAPL", d("2024-03-02"), d("2024-03-05"))
	assert.ErrorIs(t, err, types.ErrSourceUnavailable)
}

func TestYahoo_ExchangeCalendarDay(t *testing.T) {
	// ASX opens at 10:00 AEDT, which is 23:00 UTC the previous day
	sydney := time.FixedZone("AEDT", 11*3600)
	y := &Yahoo{fetch: func(*chart.Params) ([]finance.ChartBar, *time.Location, error) {
		return []finance.ChartBar{
			{Close: decimal.NewFromFloat(45.1), Timestamp: int(time.Date(2024, 3, 4, 23, 0, 0, 0, time.UTC).Unix())},
		}, sydney, nil
	}}

	got, err := y.DailyCloses(context.Background(), "BHP.AX", d("2024-03-04"), d("2024-03-06"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-05=45.1"}, prices(got))
}

func TestExchangeLocation(t *testing.T) {
	loc := exchangeLocation(finance.ChartMeta{Timezone: "AEDT", Gmtoffset: 39600})
	_, offset := time.Date(2024, 3, 4, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 39600, offset)

	assert.Equal(t, time.UTC, exchangeLocation(finance.ChartMeta{}))
}

type fakeKite struct {
	instrumentCalls int
	token           int
}

func (f *fakeKite) GetInstrumentsByExchange(exchange string) (kiteconnect.Instruments, error) {
	f.instrumentCalls++
	return kiteconnect.Instruments{
		{InstrumentToken: 738561, Tradingsymbol: "RELIANCE", Exchange: exchange},
		{InstrumentToken: 2953217, Tradingsymbol: "TCS", Exchange: exchange},
	}, nil
}

func (f *fakeKite) GetHistoricalData(token int, interval string, from, to time.Time, continuous, oi bool) ([]kiteconnect.HistoricalData, error) {
	f.token = token
	ist := time.FixedZone("IST", 19800)
	return []kiteconnect.HistoricalData{
		{Date: models.Time{Time: time.Date(2024, 3, 4, 0, 0, 0, 0, ist)}, Close: 2950.5},
		{Date: models.Time{Time: time.Date(2024, 3, 5, 0, 0, 0, 0, ist)}, Close: 2975},
	}, nil
}

func TestKite(t *testing.T) {
	api := &fakeKite{}
	k := newKite(api, "NSE")

	got, err := k.DailyCloses(context.Background(), "RELIANCE.NS", d("2024-03-02"), d("2024-03-06"))
	require.NoError(t, err)
	assert.Equal(t, 738561, api.token)
	assert.Equal(t, []string{"2024-03-04=2950.5", "2024-03-05=2975"}, prices(got))

	_, err = k.DailyCloses(context.Background(), "TCS", d("2024-03-02"), d("2024-03-06"))
	require.NoError(t, err)
	assert.Equal(t, 1, api.instrumentCalls)

	_, err = k.DailyCloses(context.Background(), "NOPE", d("2024-03-02"), d("2024-03-06"))
	assert.ErrorIs(t, err, types.ErrDataInsufficient)
}

type countingPrices struct{ calls int }

func (c *countingPrices) DailyCloses(_ context.Context, _ string, from, _ types.Date) ([]types.Close, error) {
	c.calls++
	return []types.Close{{Date: from, Price: decimal.RequireFromString("12.34")}}, nil
}

func TestWithCache(t *testing.T) {
	c, err := cache.New(t.TempDir(), time.Hour)
	require.NoError(t, err)
	src := &countingPrices{}
	cached := WithCache("test", src, c)

	for i := 0; i < 2; i++ {
		got, err := cached.DailyCloses(context.Background(), "AAPL", d("2024-03-01"), d("2024-03-10"))
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-03-01=12.34"}, prices(got))
	}
	assert.Equal(t, 1, src.calls)
}

func TestWithCache_OpenRangeNotCached(t *testing.T) {
	c, err := cache.New(t.TempDir(), time.Hour)
	require.NoError(t, err)
	src := &countingPrices{}
	cached := WithCache("test", src, c)
	cached.(*cachedSource).today = func() types.Date { return d("2024-03-08") }

	for i := 0; i < 2; i++ {
		_, err := cached.DailyCloses(context.Background(), "AAPL", d("2024-03-01"), d("2024-03-08"))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, src.calls)

	for i := 0; i < 2; i++ {
		_, err := cached.DailyCloses(context.Background(), "AAPL", d("2024-03-01"), d("2024-03-07"))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, src.calls)
}
