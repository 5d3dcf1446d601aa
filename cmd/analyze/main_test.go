package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-sentiment-roi/internal/store"
	"stock-sentiment-roi/internal/trace"
)

func TestApplyFlags(t *testing.T) {
	cfg := &store.Config{Tickers: []string{"AAPL"}, StartDate: "2024-03-01", EndDate: "2024-03-08"}
	cfg.Output.Path = "analysis.csv"
	cfg.Output.Format = "csv"

	applyFlags(cfg, runFlags{
		tickers: []string{" msft", "", "tsla "},
		start:   "2024-04-01",
		format:  "JSON",
	})

	assert.Equal(t, []string{"MSFT", "TSLA"}, cfg.Tickers)
	assert.Equal(t, "2024-04-01", cfg.StartDate)
	assert.Equal(t, "2024-03-08", cfg.EndDate)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "analysis.json", cfg.Output.Path)

	applyFlags(cfg, runFlags{out: "out/rows.json"})
	assert.Equal(t, "out/rows.json", cfg.Output.Path)
}

func TestApplyFlags_NoneKeepsConfig(t *testing.T) {
	cfg := &store.Config{Tickers: []string{"AAPL"}, StartDate: "2024-03-01", EndDate: "2024-03-08"}
	cfg.Output.Path = "custom.csv"
	applyFlags(cfg, runFlags{format: "json"})
	assert.Equal(t, "custom.csv", cfg.Output.Path)
	assert.Equal(t, []string{"AAPL"}, cfg.Tickers)
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return strings.TrimSpace(out.String())
}

func TestNormalizeCommand(t *testing.T) {
	assert.Equal(t, "positive", execute(t, "normalize", "Positive."))
	assert.Equal(t, "negative", execute(t, "normalize", "Sentiment:", "negative"))
	assert.Equal(t, "unknown", execute(t, "normalize", "no", "idea"))
}

func TestVersionCommand(t *testing.T) {
	assert.Equal(t, "stock-sentiment-roi "+trace.Version(), execute(t, "version"))
}
