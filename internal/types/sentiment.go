package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Label is the closed set of sentiment categories an article can fall into.
type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
	Unknown  Label = "unknown"
)

// Labels lists every category in pivot column order.
var Labels = []Label{Positive, Neutral, Negative, Unknown}

// Valid reports whether l is one of the four known labels.
func (l Label) Valid() bool {
	switch l {
	case Positive, Neutral, Negative, Unknown:
		return true
	}
	return false
}

// Key is the (ticker, date) composite key shared by every table.
type Key struct {
	Ticker string
	Date   Date
}

func (k Key) String() string {
	return k.Ticker + "@" + k.Date.String()
}

// Less orders keys by ticker, then date.
func (k Key) Less(o Key) bool {
	if k.Ticker != o.Ticker {
		return k.Ticker < o.Ticker
	}
	return k.Date.Before(o.Date)
}

// Article is one news item returned by a NewsSource.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// Observation is one classified article. Only Ticker, Date and Sentiment
// take part in aggregation; Headline and Raw are kept for auditing.
type Observation struct {
	Ticker    string `json:"ticker"`
	Date      Date   `json:"date"`
	Sentiment Label  `json:"sentiment"`
	Headline  string `json:"headline,omitempty"`
	Raw       string `json:"raw,omitempty"`
}

func (o Observation) Key() Key {
	return Key{Ticker: o.Ticker, Date: o.Date}
}

// SentimentSummaryRow holds one day's sentiment distribution for a ticker.
// Shares of categories absent that day are 0, never missing.
type SentimentSummaryRow struct {
	Ticker   string  `json:"ticker" csv:"ticker"`
	Date     Date    `json:"date" csv:"date"`
	Positive float64 `json:"positive_share" csv:"positive_share"`
	Neutral  float64 `json:"neutral_share" csv:"neutral_share"`
	Negative float64 `json:"negative_share" csv:"negative_share"`
	Unknown  float64 `json:"unknown_share" csv:"unknown_share"`
	Articles int     `json:"articles" csv:"articles"`
}

func (r SentimentSummaryRow) Key() Key {
	return Key{Ticker: r.Ticker, Date: r.Date}
}

// Share returns the share held by label l.
func (r SentimentSummaryRow) Share(l Label) float64 {
	switch l {
	case Positive:
		return r.Positive
	case Neutral:
		return r.Neutral
	case Negative:
		return r.Negative
	case Unknown:
		return r.Unknown
	}
	return 0
}

// Dominant returns the label with the largest share. Ties resolve in
// Labels order.
func (r SentimentSummaryRow) Dominant() Label {
	best := Labels[0]
	for _, l := range Labels[1:] {
		if r.Share(l) > r.Share(best) {
			best = l
		}
	}
	return best
}

// ReturnRow holds the forward percentage return for a ticker/day.
type ReturnRow struct {
	Ticker string  `json:"ticker" csv:"ticker"`
	Date   Date    `json:"date" csv:"date"`
	ROI    float64 `json:"roi" csv:"roi"`
}

func (r ReturnRow) Key() Key {
	return Key{Ticker: r.Ticker, Date: r.Date}
}

// AnalysisRow is one line of the final table.
type AnalysisRow struct {
	Ticker   string  `json:"ticker" csv:"ticker"`
	Date     Date    `json:"date" csv:"date"`
	Positive float64 `json:"positive_share" csv:"positive_share"`
	Neutral  float64 `json:"neutral_share" csv:"neutral_share"`
	Negative float64 `json:"negative_share" csv:"negative_share"`
	Unknown  float64 `json:"unknown_share" csv:"unknown_share"`
	Articles int     `json:"articles" csv:"articles"`
	ROI      float64 `json:"roi" csv:"roi"`
}

func (r AnalysisRow) Key() Key {
	return Key{Ticker: r.Ticker, Date: r.Date}
}

// Close is one daily closing price.
type Close struct {
	Date  Date            `json:"date" csv:"date"`
	Price decimal.Decimal `json:"price" csv:"close"`
}

// KeyFailure records why a key produced no data in one of the branches.
type KeyFailure struct {
	Key   Key    `json:"key"`
	Stage string `json:"stage"`
	Err   error  `json:"-"`
}

func (f KeyFailure) Error() string {
	return f.Stage + " " + f.Key.String() + ": " + f.Err.Error()
}

func (f KeyFailure) Unwrap() error {
	return f.Err
}
