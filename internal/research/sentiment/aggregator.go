package sentiment

import (
	"sort"

	"stock-sentiment-roi/internal/types"
)

type labelKey struct {
	key   types.Key
	label types.Label
}

// Summarize turns observations into one row per (ticker, date) holding the
// share of each label. Shares of a row sum to 1; labels absent that day are
// 0. Rows are ordered by ticker, then date.
func Summarize(observations []types.Observation) []types.SentimentSummaryRow {
	counts := make(map[labelKey]int)
	totals := make(map[types.Key]int)
	for _, o := range observations {
		label := o.Sentiment
		if !label.Valid() {
			label = types.Unknown
		}
		counts[labelKey{key: o.Key(), label: label}]++
		totals[o.Key()]++
	}

	keys := make([]types.Key, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	rows := make([]types.SentimentSummaryRow, 0, len(keys))
	for _, k := range keys {
		total := float64(totals[k])
		share := func(l types.Label) float64 {
			return float64(counts[labelKey{key: k, label: l}]) / total
		}
		rows = append(rows, types.SentimentSummaryRow{
			Ticker:   k.Ticker,
			Date:     k.Date,
			Positive: share(types.Positive),
			Neutral:  share(types.Neutral),
			Negative: share(types.Negative),
			Unknown:  share(types.Unknown),
			Articles: totals[k],
		})
	}
	return rows
}

// Categories returns the labels observed at least once, in Labels order.
func Categories(observations []types.Observation) []types.Label {
	seen := make(map[types.Label]bool, len(types.Labels))
	for _, o := range observations {
		seen[o.Sentiment] = true
	}
	var out []types.Label
	for _, l := range types.Labels {
		if seen[l] {
			out = append(out, l)
		}
	}
	return out
}
