package prices

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"stock-sentiment-roi/internal/interfaces"
	"stock-sentiment-roi/internal/types"
)

// barFetcher is the slice of the finance-go chart API used here. It also
// returns the exchange's location so bar timestamps land on the session's
// calendar day.
type barFetcher func(p *chart.Params) ([]finance.ChartBar, *time.Location, error)

// Yahoo reads daily bars from the Yahoo Finance chart endpoint.
type Yahoo struct {
	fetch barFetcher
}

var _ interfaces.PriceSource = (*Yahoo)(nil)

func NewYahoo() *Yahoo {
	return &Yahoo{fetch: fetchChart}
}

func fetchChart(p *chart.Params) ([]finance.ChartBar, *time.Location, error) {
	iter := chart.Get(p)
	var bars []finance.ChartBar
	for iter.Next() {
		bars = append(bars, *iter.Bar())
	}
	if err := iter.Err(); err != nil {
		return nil, nil, err
	}
	if len(bars) == 0 {
		return nil, time.UTC, nil
	}
	return bars, exchangeLocation(iter.Meta()), nil
}

// exchangeLocation prefers the IANA zone name and falls back to the fixed
// GMT offset reported with the chart.
func exchangeLocation(meta finance.ChartMeta) *time.Location {
	if meta.ExchangeTimezoneName != "" {
		if loc, err := time.LoadLocation(meta.ExchangeTimezoneName); err == nil {
			return loc
		}
	}
	if meta.Gmtoffset != 0 {
		return time.FixedZone(meta.Timezone, meta.Gmtoffset)
	}
	return time.UTC
}

func (y *Yahoo) DailyCloses(ctx context.Context, ticker string, from, to types.Date) ([]types.Close, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := from.Time()
	// chart end is exclusive
	end := to.AddDays(1).Time()
	bars, loc, err := y.fetch(&chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo %s: %v", types.ErrSourceUnavailable, ticker, err)
	}
	if loc == nil {
		loc = time.UTC
	}

	closes := make([]types.Close, 0, len(bars))
	for _, b := range bars {
		closes = append(closes, types.Close{
			Date:  types.DateOf(time.Unix(int64(b.Timestamp), 0).In(loc)),
			Price: b.Close,
		})
	}
	return normalize(closes, from, to), nil
}
