package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"stock-sentiment-roi/internal/logger"
	"stock-sentiment-roi/internal/report"
	"stock-sentiment-roi/internal/research/dataset"
	"stock-sentiment-roi/internal/research/sentiment"
	"stock-sentiment-roi/internal/store"
	"stock-sentiment-roi/internal/trace"
	"stock-sentiment-roi/internal/types"
)

// runFlags are command-line overrides applied on top of the config file.
type runFlags struct {
	configPath string
	out        string
	format     string
	tickers    []string
	start      string
	end        string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		if errors.Is(err, types.ErrConfiguration) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags runFlags

	rootCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Relate daily news sentiment to forward stock returns",
		Long: `analyze collects news headlines for each ticker and day, classifies their
sentiment, computes the forward return from daily closes and writes the
joined table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd.Context(), flags)
		},
	}

	rootCmd.Flags().StringVarP(&flags.configPath, "config", "c", "config.yaml", "Configuration file path")
	rootCmd.Flags().StringVarP(&flags.out, "out", "o", "", "Output file (overrides output.path)")
	rootCmd.Flags().StringVar(&flags.format, "format", "", "Output format: csv or json (overrides output.format)")
	rootCmd.Flags().StringSliceVar(&flags.tickers, "tickers", nil, "Comma-separated tickers (overrides tickers)")
	rootCmd.Flags().StringVar(&flags.start, "start", "", "First day, YYYY-MM-DD (overrides start_date)")
	rootCmd.Flags().StringVar(&flags.end, "end", "", "Last day, YYYY-MM-DD (overrides end_date)")

	rootCmd.AddCommand(newNormalizeCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newNormalizeCmd maps free text to a sentiment label the way model output is mapped.
func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize TEXT...",
		Short: "Print the sentiment label free text normalizes to",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), sentiment.Normalize(strings.Join(args, " ")))
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stock-sentiment-roi %s\n", trace.Version())
		},
	}
}

func runAnalysis(ctx context.Context, flags runFlags) error {
	if err := initializeSystem(); err != nil {
		return err
	}
	defer func() {
		if err := trace.Shutdown(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to shutdown tracer: %v\n", err)
		}
	}()

	cfg, err := loadConfig(ctx, flags)
	if err != nil {
		return err
	}
	start, end, err := cfg.DateRange()
	if err != nil {
		return err
	}

	runID := dataset.NewRunID()
	analyzer, err := initializeAnalyzer(ctx, cfg, runID)
	if err != nil {
		return err
	}

	printHeader(cfg, runID)

	res, err := analyzer.Run(ctx, dataset.Request{
		Tickers:        cfg.Tickers,
		Start:          start,
		End:            end,
		ArticlesPerDay: cfg.ArticlesPerDay,
	})
	if err != nil {
		logger.ErrorWithErr(ctx, "Analysis failed", err, "run_id", runID)
		return err
	}

	if err := report.Save(cfg.Output.Path, cfg.Output.Format, res.Rows); err != nil {
		logger.ErrorWithErr(ctx, "Failed to write analysis table", err, "path", cfg.Output.Path)
		return err
	}
	logger.Info(ctx, "Analysis table written",
		"run_id", runID,
		"path", cfg.Output.Path,
		"format", cfg.Output.Format,
		"rows", len(res.Rows),
	)

	printResults(res, report.Summarize(res), cfg.Output.Path)
	return nil
}

// applyFlags overrides config values with any flags given on the command line.
func applyFlags(cfg *store.Config, flags runFlags) {
	if len(flags.tickers) > 0 {
		cfg.Tickers = make([]string, 0, len(flags.tickers))
		for _, t := range flags.tickers {
			if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
				cfg.Tickers = append(cfg.Tickers, t)
			}
		}
	}
	if flags.start != "" {
		cfg.StartDate = flags.start
	}
	if flags.end != "" {
		cfg.EndDate = flags.end
	}
	if flags.format != "" {
		cfg.Output.Format = strings.ToLower(flags.format)
		if flags.out == "" && strings.HasPrefix(cfg.Output.Path, "analysis.") {
			cfg.Output.Path = "analysis." + cfg.Output.Format
		}
	}
	if flags.out != "" {
		cfg.Output.Path = flags.out
	}
}
