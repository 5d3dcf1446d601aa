package prices

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"stock-sentiment-roi/internal/interfaces"
	"stock-sentiment-roi/internal/types"
)

// kiteAPI is the slice of the Kite Connect client used here.
type kiteAPI interface {
	GetInstrumentsByExchange(exchange string) (kiteconnect.Instruments, error)
	GetHistoricalData(instrumentToken int, interval string, fromDate time.Time, toDate time.Time, continuous bool, OI bool) ([]kiteconnect.HistoricalData, error)
}

// KiteParams configures the Zerodha historical data source.
type KiteParams struct {
	APIKey      string
	AccessToken string
	Exchange    string
}

// Kite reads daily candles from the Zerodha Kite historical API. Tickers are
// exchange trading symbols and are resolved to instrument tokens once.
type Kite struct {
	api      kiteAPI
	exchange string
	mapper   *instrumentMapper
	loadOnce sync.Once
	loadErr  error
}

var _ interfaces.PriceSource = (*Kite)(nil)

func NewKite(p KiteParams) *Kite {
	kc := kiteconnect.New(p.APIKey)
	kc.SetAccessToken(p.AccessToken)
	return newKite(kc, p.Exchange)
}

func newKite(api kiteAPI, exchange string) *Kite {
	if exchange == "" {
		exchange = "NSE"
	}
	return &Kite{api: api, exchange: exchange, mapper: newInstrumentMapper()}
}

func (k *Kite) loadInstruments() error {
	k.loadOnce.Do(func() {
		instruments, err := k.api.GetInstrumentsByExchange(k.exchange)
		if err != nil {
			k.loadErr = fmt.Errorf("%w: kite instruments %s: %v", types.ErrSourceUnavailable, k.exchange, err)
			return
		}
		for _, in := range instruments {
			k.mapper.addMapping(in.Tradingsymbol, in.InstrumentToken)
		}
	})
	return k.loadErr
}

func (k *Kite) DailyCloses(ctx context.Context, ticker string, from, to types.Date) ([]types.Close, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := k.loadInstruments(); err != nil {
		return nil, err
	}

	symbol := strings.TrimSuffix(strings.ToUpper(ticker), ".NS")
	token, ok := k.mapper.getToken(symbol)
	if !ok {
		return nil, fmt.Errorf("%w: kite: unknown symbol %s on %s", types.ErrDataInsufficient, symbol, k.exchange)
	}

	candles, err := k.api.GetHistoricalData(token, "day", from.Time(), to.AddDays(1).Time(), false, false)
	if err != nil {
		return nil, fmt.Errorf("%w: kite historical %s: %v", types.ErrSourceUnavailable, symbol, err)
	}

	closes := make([]types.Close, 0, len(candles))
	for _, c := range candles {
		closes = append(closes, types.Close{
			Date:  types.DateOf(c.Date.Time),
			Price: decimal.NewFromFloat(c.Close),
		})
	}
	return normalize(closes, from, to), nil
}

// instrumentMapper maps trading symbols to Kite instrument tokens
type instrumentMapper struct {
	symbolToToken map[string]int
	mu            sync.RWMutex
}

func newInstrumentMapper() *instrumentMapper {
	return &instrumentMapper{symbolToToken: make(map[string]int)}
}

func (im *instrumentMapper) addMapping(symbol string, token int) {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.symbolToToken[symbol] = token
}

func (im *instrumentMapper) getToken(symbol string) (int, bool) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	token, ok := im.symbolToToken[symbol]
	return token, ok
}
