package datasetobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-sentiment-roi/internal/research/dataset"
	"stock-sentiment-roi/internal/types"
)

type fakeAnalyzer struct {
	res *dataset.Result
	err error
}

func (f fakeAnalyzer) Run(context.Context, dataset.Request) (*dataset.Result, error) {
	return f.res, f.err
}

func TestWrap(t *testing.T) {
	req := dataset.Request{
		Tickers: []string{"AAPL"},
		Start:   types.MustParseDate("2024-03-01"),
		End:     types.MustParseDate("2024-03-01"),
	}
	want := &dataset.Result{
		RunID: "run-1",
		SentimentFailed: []types.KeyFailure{
			{Key: types.Key{Ticker: "AAPL", Date: req.Start}, Stage: "fetch", Err: types.ErrSourceUnavailable},
		},
	}

	got, err := Wrap(fakeAnalyzer{res: want}).Run(context.Background(), req)
	require.NoError(t, err)
	assert.Same(t, want, got)

	got, err = Wrap(fakeAnalyzer{err: types.ErrConfiguration}).Run(context.Background(), req)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, types.ErrConfiguration)
}
