package main

import (
	"context"
	"fmt"
	"os"

	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/joho/godotenv"
	openaiopt "github.com/openai/openai-go/v3/option"

	"stock-sentiment-roi/internal/cache"
	"stock-sentiment-roi/internal/interfaces"
	"stock-sentiment-roi/internal/journal"
	"stock-sentiment-roi/internal/llm"
	"stock-sentiment-roi/internal/llm/claude"
	"stock-sentiment-roi/internal/llm/lexicon"
	"stock-sentiment-roi/internal/llm/llmobs"
	"stock-sentiment-roi/internal/llm/openai"
	"stock-sentiment-roi/internal/logger"
	"stock-sentiment-roi/internal/news"
	"stock-sentiment-roi/internal/news/newsobs"
	"stock-sentiment-roi/internal/prices"
	"stock-sentiment-roi/internal/prices/pricesobs"
	"stock-sentiment-roi/internal/ratelimit"
	"stock-sentiment-roi/internal/research/dataset"
	"stock-sentiment-roi/internal/research/dataset/datasetobs"
	"stock-sentiment-roi/internal/research/returns"
	"stock-sentiment-roi/internal/research/sentiment"
	"stock-sentiment-roi/internal/retry"
	"stock-sentiment-roi/internal/store"
	"stock-sentiment-roi/internal/trace"
)

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig loads the config file and applies command-line overrides
func loadConfig(ctx context.Context, flags runFlags) (*store.Config, error) {
	cfg, err := store.LoadConfig(flags.configPath)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", flags.configPath)
		return nil, err
	}

	applyFlags(cfg, flags)
	if err := cfg.Validate(); err != nil {
		logger.ErrorWithErr(ctx, "Invalid command-line overrides", err)
		return nil, err
	}
	return cfg, nil
}

func retryPolicy(cfg *store.Config) retry.Policy {
	return retry.Policy{
		Attempts:   cfg.Retry.Attempts,
		Timeout:    cfg.Retry.Timeout,
		BaseDelay:  cfg.Retry.BaseDelay,
		MaxDelay:   cfg.Retry.MaxDelay,
		Multiplier: cfg.Retry.Multiplier,
	}
}

// initializeCache opens the response cache, or returns nil when it is disabled
func initializeCache(ctx context.Context, cfg *store.Config) *cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	c, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL)
	if err != nil {
		logger.Warn(ctx, "Response cache unavailable - continuing without it", "dir", cfg.Cache.Dir, "error", err)
		return nil
	}
	if n, err := c.CleanupExpired(); err != nil {
		logger.Warn(ctx, "Failed to clean expired cache entries", "error", err)
	} else if n > 0 {
		logger.Info(ctx, "Removed expired cache entries", "count", n)
	}
	return c
}

// initializeJournal opens the observation journal and compresses old files
func initializeJournal(ctx context.Context, cfg *store.Config, runID string) *journal.Journal {
	if !cfg.Journal.Enabled {
		return nil
	}
	j := journal.New(cfg.Journal.Dir, runID)
	if cfg.Journal.RetentionDays > 0 {
		n, err := j.CompressOlder(cfg.Journal.RetentionDays)
		if err != nil {
			logger.Warn(ctx, "Failed to compress old journal files", "error", err)
		} else if n > 0 {
			logger.Info(ctx, "Compressed old journal files", "count", n)
		}
	}
	return j
}

// initializeNews builds the news source with observability and caching
func initializeNews(ctx context.Context, cfg *store.Config, c *cache.Cache) interfaces.NewsSource {
	var (
		src  interfaces.NewsSource
		name string
	)

	switch cfg.News.Provider {
	case store.NewsRSS:
		name = "rss"
		src = news.NewRSSSource(news.RSSConfig{
			BaseURL:  cfg.News.BaseURL,
			Language: cfg.News.Language,
			Timeout:  cfg.News.Timeout,
		})
		logger.Info(ctx, "Using Google News RSS for headlines")
	default:
		name = "newsapi"
		src = news.NewNewsAPIClient(news.NewsAPIConfig{
			APIKey:   cfg.Credentials.NewsAPIKey,
			BaseURL:  cfg.News.BaseURL,
			Language: cfg.News.Language,
			SortBy:   cfg.News.SortBy,
			Timeout:  cfg.News.Timeout,
		})
		logger.Info(ctx, "Using NewsAPI for headlines")
	}

	// Wrap with observability middleware, then serve repeats from the cache
	return news.WithCache(name, newsobs.Wrap(src, name), c)
}

// initializeClassifier builds the sentiment classifier and the pacer that
// spaces out its calls
func initializeClassifier(ctx context.Context, cfg *store.Config) (interfaces.SentimentClassifier, *ratelimit.Pacer) {
	params := llm.Params{
		Model:            cfg.LLM.Model,
		MaxTokens:        cfg.LLM.MaxTokens,
		Temperature:      cfg.LLM.Temperature,
		TopP:             cfg.LLM.TopP,
		FrequencyPenalty: cfg.LLM.FrequencyPenalty,
	}
	pacer := ratelimit.NewPacer(cfg.LLM.Provider, cfg.Pacing.Interval, cfg.Pacing.JitterMin, cfg.Pacing.JitterMax)

	var classifier interfaces.SentimentClassifier
	switch cfg.LLM.Provider {
	case store.LLMClaude:
		opts := []anthropicopt.RequestOption{anthropicopt.WithRequestTimeout(cfg.LLM.Timeout)}
		if cfg.LLM.BaseURL != "" {
			opts = append(opts, anthropicopt.WithBaseURL(cfg.LLM.BaseURL))
		}
		classifier = claude.New(cfg.Credentials.AnthropicKey, params, opts...)
	case store.LLMLexicon:
		classifier = lexicon.New()
		pacer = ratelimit.Unpaced()
		logger.Warn(ctx, "No LLM provider configured - using offline lexicon classifier")
	default:
		opts := []openaiopt.RequestOption{openaiopt.WithRequestTimeout(cfg.LLM.Timeout)}
		if cfg.LLM.BaseURL != "" {
			opts = append(opts, openaiopt.WithBaseURL(cfg.LLM.BaseURL))
		}
		classifier = openai.New(cfg.Credentials.OpenAIKey, params, opts...)
	}

	logger.Info(ctx, "Sentiment classifier ready", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)

	// Wrap with observability middleware
	return llmobs.Wrap(classifier, cfg.LLM.Provider, cfg.LLM.Model), pacer
}

// initializePrices builds the price source with observability and caching
func initializePrices(ctx context.Context, cfg *store.Config, c *cache.Cache) interfaces.PriceSource {
	var (
		src  interfaces.PriceSource
		name string
	)

	switch cfg.Prices.Provider {
	case store.PricesKite:
		name = "kite"
		src = prices.NewKite(prices.KiteParams{
			APIKey:      cfg.Credentials.KiteAPIKey,
			AccessToken: cfg.Credentials.KiteAccessToken,
			Exchange:    cfg.Prices.Exchange,
		})
		logger.Info(ctx, "Using Zerodha Kite daily candles", "exchange", cfg.Prices.Exchange)
	case store.PricesCSV:
		name = "csv"
		src = prices.NewCSVDir(cfg.Prices.CSVDir)
		logger.Info(ctx, "Using local CSV closes", "dir", cfg.Prices.CSVDir)
		// Local files need no cache
		return pricesobs.Wrap(src, name)
	default:
		name = "yahoo"
		src = prices.NewYahoo()
		logger.Info(ctx, "Using Yahoo Finance daily closes")
	}

	return prices.WithCache(name, pricesobs.Wrap(src, name), c)
}

// initializeAnalyzer wires sources, branches and the pipeline for one run
func initializeAnalyzer(ctx context.Context, cfg *store.Config, runID string) (dataset.Analyzer, error) {
	policy := retryPolicy(cfg)
	c := initializeCache(ctx, cfg)

	newsSource := initializeNews(ctx, cfg, c)
	classifier, pacer := initializeClassifier(ctx, cfg)

	collectorOpts := []sentiment.CollectorOption{sentiment.WithPacer(pacer)}
	if j := initializeJournal(ctx, cfg, runID); j != nil {
		collectorOpts = append(collectorOpts, sentiment.WithJournal(j))
		logger.Info(ctx, "Journaling observations", "dir", j.Dir())
	}
	collector := sentiment.NewCollector(sentiment.CollectorConfig{
		Workers: cfg.Workers.Sentiment,
		Retry:   policy,
	}, newsSource, classifier, collectorOpts...)

	calculator, err := returns.NewCalculator(
		initializePrices(ctx, cfg, c),
		returns.Window{Offset: cfg.Window.Offset, Days: cfg.Window.Days},
		returns.WithWorkers(cfg.Workers.Returns),
		returns.WithRetry(policy),
		returns.WithLookahead(cfg.Prices.LookaheadDays),
	)
	if err != nil {
		return nil, err
	}

	// Wrap with observability middleware
	return datasetobs.Wrap(dataset.NewPipeline(collector, calculator, dataset.WithRunID(runID))), nil
}
