package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"stock-sentiment-roi/internal/types"
)

// Provider names accepted in the config file.
const (
	NewsNewsAPI = "NEWSAPI"
	NewsRSS     = "RSS"

	LLMOpenAI  = "OPENAI"
	LLMClaude  = "CLAUDE"
	LLMLexicon = "LEXICON"

	PricesYahoo = "YAHOO"
	PricesKite  = "KITE"
	PricesCSV   = "CSV"
)

type Config struct {
	Tickers        []string `yaml:"tickers" validate:"required,min=1,dive,required"`
	StartDate      string   `yaml:"start_date" validate:"required"`
	EndDate        string   `yaml:"end_date" validate:"required"`
	ArticlesPerDay int      `yaml:"articles_per_day" validate:"gte=1,lte=100"`

	News struct {
		Provider string        `yaml:"provider" validate:"oneof=NEWSAPI RSS"`
		BaseURL  string        `yaml:"base_url" validate:"omitempty,url"`
		Language string        `yaml:"language"`
		SortBy   string        `yaml:"sort_by"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"news"`

	LLM struct {
		Provider         string        `yaml:"provider" validate:"oneof=OPENAI CLAUDE LEXICON"`
		Model            string        `yaml:"model"`
		BaseURL          string        `yaml:"base_url" validate:"omitempty,url"`
		MaxTokens        int           `yaml:"max_tokens" validate:"gte=1"`
		Temperature      float64       `yaml:"temperature" validate:"gte=0,lte=2"`
		TopP             float64       `yaml:"top_p" validate:"gte=0,lte=1"`
		FrequencyPenalty float64       `yaml:"frequency_penalty" validate:"gte=-2,lte=2"`
		Timeout          time.Duration `yaml:"timeout"`
	} `yaml:"llm"`

	Prices struct {
		Provider      string `yaml:"provider" validate:"oneof=YAHOO KITE CSV"`
		Exchange      string `yaml:"exchange"`
		CSVDir        string `yaml:"csv_dir"`
		LookaheadDays int    `yaml:"lookahead_days" validate:"gte=1"`
	} `yaml:"prices"`

	Window struct {
		Offset int `yaml:"offset" validate:"gte=0"`
		Days   int `yaml:"days" validate:"gte=2"`
	} `yaml:"window"`

	Pacing struct {
		Interval  time.Duration `yaml:"interval"`
		JitterMin time.Duration `yaml:"jitter_min"`
		JitterMax time.Duration `yaml:"jitter_max" validate:"gtefield=JitterMin"`
	} `yaml:"pacing"`

	Retry struct {
		Attempts   int           `yaml:"attempts" validate:"gte=1,lte=10"`
		Timeout    time.Duration `yaml:"timeout"`
		BaseDelay  time.Duration `yaml:"base_delay"`
		MaxDelay   time.Duration `yaml:"max_delay"`
		Multiplier float64       `yaml:"multiplier" validate:"gte=1"`
	} `yaml:"retry"`

	Workers struct {
		Sentiment int `yaml:"sentiment" validate:"gte=1"`
		Returns   int `yaml:"returns" validate:"gte=1"`
	} `yaml:"workers"`

	Cache struct {
		Enabled bool          `yaml:"enabled"`
		Dir     string        `yaml:"dir"`
		TTL     time.Duration `yaml:"ttl"`
	} `yaml:"cache"`

	Journal struct {
		Enabled       bool   `yaml:"enabled"`
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days" validate:"gte=0"`
	} `yaml:"journal"`

	Output struct {
		Path   string `yaml:"path"`
		Format string `yaml:"format" validate:"oneof=csv json"`
	} `yaml:"output"`

	Credentials Credentials `yaml:"-"`
}

// Credentials never live in the YAML file.
type Credentials struct {
	NewsAPIKey      string `envconfig:"NEWSAPI_KEY"`
	OpenAIKey       string `envconfig:"OPENAI_API_KEY"`
	AnthropicKey    string `envconfig:"ANTHROPIC_API_KEY"`
	KiteAPIKey      string `envconfig:"KITE_API_KEY"`
	KiteAccessToken string `envconfig:"KITE_ACCESS_TOKEN"`
}

// Overrides are applied on top of the YAML file.
type Overrides struct {
	StartDate string   `envconfig:"SENTIMENT_START_DATE"`
	EndDate   string   `envconfig:"SENTIMENT_END_DATE"`
	Tickers   []string `envconfig:"SENTIMENT_TICKERS"`
}

var validate = validator.New()

// DateRange returns the parsed, inclusive analysis range.
func (c *Config) DateRange() (types.Date, types.Date, error) {
	start, err := types.ParseDate(c.StartDate)
	if err != nil {
		return types.Date{}, types.Date{}, fmt.Errorf("%w: start_date: %v", types.ErrConfiguration, err)
	}
	end, err := types.ParseDate(c.EndDate)
	if err != nil {
		return types.Date{}, types.Date{}, fmt.Errorf("%w: end_date: %v", types.ErrConfiguration, err)
	}
	if end.Before(start) {
		return types.Date{}, types.Date{}, fmt.Errorf("%w: end_date %s is before start_date %s", types.ErrConfiguration, end, start)
	}
	return start, end, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	if _, _, err := c.DateRange(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Tickers))
	for _, t := range c.Tickers {
		if seen[t] {
			return fmt.Errorf("%w: duplicate ticker %q", types.ErrConfiguration, t)
		}
		seen[t] = true
	}

	creds := c.Credentials
	if c.News.Provider == NewsNewsAPI && creds.NewsAPIKey == "" {
		return fmt.Errorf("%w: NEWSAPI_KEY is required for news.provider NEWSAPI", types.ErrConfiguration)
	}
	switch c.LLM.Provider {
	case LLMOpenAI:
		if creds.OpenAIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required for llm.provider OPENAI", types.ErrConfiguration)
		}
	case LLMClaude:
		if creds.AnthropicKey == "" {
			return fmt.Errorf("%w: ANTHROPIC_API_KEY is required for llm.provider CLAUDE", types.ErrConfiguration)
		}
	}
	switch c.Prices.Provider {
	case PricesKite:
		if creds.KiteAPIKey == "" || creds.KiteAccessToken == "" {
			return fmt.Errorf("%w: KITE_API_KEY and KITE_ACCESS_TOKEN are required for prices.provider KITE", types.ErrConfiguration)
		}
	case PricesCSV:
		if c.Prices.CSVDir == "" {
			return fmt.Errorf("%w: prices.csv_dir is required for prices.provider CSV", types.ErrConfiguration)
		}
	}
	return nil
}

// LoadConfig reads the YAML file at path, applies defaults, credentials and
// environment overrides, then validates the result.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	return ParseConfig(b)
}

// ParseConfig is LoadConfig without the file read.
func ParseConfig(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}

	if err := envconfig.Process("", &c.Credentials); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	var ov Overrides
	if err := envconfig.Process("", &ov); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	c.applyOverrides(ov)
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) applyOverrides(ov Overrides) {
	if ov.StartDate != "" {
		c.StartDate = ov.StartDate
	}
	if ov.EndDate != "" {
		c.EndDate = ov.EndDate
	}
	if len(ov.Tickers) > 0 {
		c.Tickers = ov.Tickers
	}
	for i, t := range c.Tickers {
		c.Tickers[i] = strings.ToUpper(strings.TrimSpace(t))
	}
}

func (c *Config) applyDefaults() {
	if c.ArticlesPerDay == 0 {
		c.ArticlesPerDay = 2
	}

	if c.News.Provider == "" {
		c.News.Provider = NewsNewsAPI
	}
	if c.News.Language == "" {
		c.News.Language = "en"
	}
	if c.News.SortBy == "" {
		c.News.SortBy = "popularity"
	}
	if c.News.Timeout == 0 {
		c.News.Timeout = 15 * time.Second
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = LLMOpenAI
	}
	if c.LLM.Model == "" {
		switch c.LLM.Provider {
		case LLMClaude:
			c.LLM.Model = "claude-3-5-haiku-latest"
		default:
			c.LLM.Model = "gpt-4o-mini"
		}
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 60
	}
	if c.LLM.TopP == 0 {
		c.LLM.TopP = 1.0
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 30 * time.Second
	}

	if c.Prices.Provider == "" {
		c.Prices.Provider = PricesYahoo
	}
	if c.Prices.Exchange == "" {
		c.Prices.Exchange = "NSE"
	}
	if c.Prices.LookaheadDays == 0 {
		c.Prices.LookaheadDays = 14
	}

	if c.Window.Days == 0 {
		c.Window.Days = 3
	}

	if c.Pacing.Interval == 0 {
		c.Pacing.Interval = time.Second
	}
	if c.Pacing.JitterMin == 0 && c.Pacing.JitterMax == 0 {
		c.Pacing.JitterMin = time.Second
		c.Pacing.JitterMax = 2 * time.Second
	}

	if c.Retry.Attempts == 0 {
		c.Retry.Attempts = 3
	}
	if c.Retry.Timeout == 0 {
		c.Retry.Timeout = 30 * time.Second
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = 500 * time.Millisecond
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = 10 * time.Second
	}
	if c.Retry.Multiplier == 0 {
		c.Retry.Multiplier = 2
	}

	if c.Workers.Sentiment == 0 {
		c.Workers.Sentiment = 1
	}
	if c.Workers.Returns == 0 {
		c.Workers.Returns = 4
	}

	if c.Cache.Dir == "" {
		c.Cache.Dir = ".cache"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}

	if c.Journal.Dir == "" {
		c.Journal.Dir = getEnvOrDefault("SENTIMENT_JOURNAL_DIR", "logs")
	}
	if c.Journal.RetentionDays == 0 {
		c.Journal.RetentionDays = 7
	}

	if c.Output.Format == "" {
		c.Output.Format = "csv"
	}
	if c.Output.Path == "" {
		c.Output.Path = "analysis." + c.Output.Format
	}
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// IsConfigError reports whether err came from configuration loading.
func IsConfigError(err error) bool {
	return errors.Is(err, types.ErrConfiguration)
}
