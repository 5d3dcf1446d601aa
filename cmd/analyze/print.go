package main

import (
	"fmt"
	"strings"
	"time"

	"stock-sentiment-roi/internal/report"
	"stock-sentiment-roi/internal/research/dataset"
	"stock-sentiment-roi/internal/store"
	"stock-sentiment-roi/internal/types"
)

const rule = "═══════════════════════════════════════════════════════════════"

func printHeader(cfg *store.Config, runID string) {
	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║        News Sentiment vs Forward Return Analysis             ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Run ID:             %s\n", runID)
	fmt.Printf("Tickers:            %s\n", strings.Join(cfg.Tickers, ", "))
	fmt.Printf("Date Range:         %s → %s\n", cfg.StartDate, cfg.EndDate)
	fmt.Printf("Articles Per Day:   %d\n", cfg.ArticlesPerDay)
	fmt.Printf("Return Window:      %d closes (offset %d)\n", cfg.Window.Days, cfg.Window.Offset)
	fmt.Printf("Providers:          news=%s llm=%s prices=%s\n", cfg.News.Provider, cfg.LLM.Provider, cfg.Prices.Provider)
	fmt.Println()
	fmt.Println("⏳ This may take a few moments...")
	fmt.Println()
}

func printResults(res *dataset.Result, st report.Stats, path string) {
	fmt.Println(rule)
	fmt.Println("                      ANALYSIS SUMMARY")
	fmt.Println(rule)
	fmt.Printf("Duration:           %s\n", res.Duration.Round(time.Millisecond))
	fmt.Printf("Keys Requested:     %d\n", st.KeysRequested)
	fmt.Printf("Observations:       %d articles\n", st.Observations)
	fmt.Printf("With Sentiment:     %d keys\n", st.KeysWithSentiment)
	fmt.Printf("With Returns:       %d keys\n", st.KeysWithReturns)
	fmt.Printf("Joined Rows:        %d (%.1f%%)\n", st.JoinedRows, percent(st.JoinedRows, st.KeysRequested))
	fmt.Println()

	if st.SentimentFailed > 0 || st.ReturnsSkipped > 0 {
		fmt.Printf("⚠️  %d keys failed news or classification, %d keys had no forward return\n",
			st.SentimentFailed, st.ReturnsSkipped)
		fmt.Println()
	}

	if st.JoinedRows == 0 {
		fmt.Println("⚠️  No rows had both sentiment and a forward return")
		fmt.Println()
		fmt.Println("Consider:")
		fmt.Println("  - Widening start_date/end_date in config.yaml")
		fmt.Println("  - Raising prices.lookahead_days for ranges that end near today")
		fmt.Println("  - Checking NEWSAPI_KEY and the LLM API key in .env")
		fmt.Println()
		fmt.Printf("💾 Empty table saved to %s\n", path)
		return
	}

	fmt.Println(rule)
	fmt.Println("                MEAN ROI BY DOMINANT SENTIMENT")
	fmt.Println(rule)
	for _, ls := range st.ByDominant {
		if ls.Days == 0 {
			fmt.Printf("  %s %-10s  -\n", labelIcon(ls.Label), ls.Label)
			continue
		}
		fmt.Printf("  %s %-10s  %+.2f%% over %d days\n", labelIcon(ls.Label), ls.Label, ls.MeanROI, ls.Days)
	}
	fmt.Println()
	if st.HasCorrelation {
		fmt.Printf("📈 Net sentiment vs ROI correlation: %.3f\n", st.Correlation)
	} else {
		fmt.Println("📈 Net sentiment vs ROI correlation: not enough variation")
	}
	fmt.Println(rule)
	fmt.Println()
	fmt.Printf("💾 Results saved to %s\n", path)
}

func labelIcon(l types.Label) string {
	switch l {
	case types.Positive:
		return "🟢"
	case types.Negative:
		return "🔴"
	case types.Neutral:
		return "⚪"
	}
	return "❔"
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
