package prices

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"stock-sentiment-roi/internal/interfaces"
	"stock-sentiment-roi/internal/types"
)

// CSVDir reads closes from <dir>/<TICKER>.csv files with a header of at
// least "date,close". Useful for offline runs and reproducible fixtures.
type CSVDir struct {
	dir string
}

var _ interfaces.PriceSource = (*CSVDir)(nil)

func NewCSVDir(dir string) *CSVDir {
	return &CSVDir{dir: dir}
}

func (s *CSVDir) DailyCloses(ctx context.Context, ticker string, from, to types.Date) ([]types.Close, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, strings.ToUpper(ticker)+".csv")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no price file for %s", types.ErrDataInsufficient, ticker)
		}
		return nil, fmt.Errorf("%w: %v", types.ErrSourceUnavailable, err)
	}
	defer f.Close()

	var closes []types.Close
	if err := gocsv.UnmarshalFile(f, &closes); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", types.ErrSourceUnavailable, path, err)
	}
	return normalize(closes, from, to), nil
}
