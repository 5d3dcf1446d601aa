// Package dataset joins daily sentiment with forward returns and runs the
// end-to-end analysis.
package dataset

import (
	"sort"

	"stock-sentiment-roi/internal/types"
)

// Join pairs summary and return rows that share a (ticker, date) key. Keys
// present on only one side are dropped. Each key appears at most once in
// the result, which is ordered by ticker, then date.
func Join(summary []types.SentimentSummaryRow, returns []types.ReturnRow) []types.AnalysisRow {
	roi := make(map[types.Key]float64, len(returns))
	for _, r := range returns {
		roi[r.Key()] = r.ROI
	}

	rows := make([]types.AnalysisRow, 0, min(len(summary), len(roi)))
	seen := make(map[types.Key]bool, len(summary))
	for _, s := range summary {
		k := s.Key()
		v, ok := roi[k]
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		rows = append(rows, types.AnalysisRow{
			Ticker:   s.Ticker,
			Date:     s.Date,
			Positive: s.Positive,
			Neutral:  s.Neutral,
			Negative: s.Negative,
			Unknown:  s.Unknown,
			Articles: s.Articles,
			ROI:      v,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key().Less(rows[j].Key()) })
	return rows
}
