package news

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"stock-sentiment-roi/internal/interfaces"
	"stock-sentiment-roi/internal/retry"
	"stock-sentiment-roi/internal/types"
)

const defaultNewsAPIURL = "https://newsapi.org"

// NewsAPIConfig configures the newsapi.org client.
type NewsAPIConfig struct {
	APIKey   string
	BaseURL  string
	Language string
	SortBy   string
	PageSize int
	Timeout  time.Duration
}

// NewsAPIClient queries the /v2/everything endpoint of newsapi.org.
type NewsAPIClient struct {
	client *resty.Client
	cfg    NewsAPIConfig
}

var _ interfaces.NewsSource = (*NewsAPIClient)(nil)

func NewNewsAPIClient(cfg NewsAPIConfig) *NewsAPIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultNewsAPIURL
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.SortBy == "" {
		cfg.SortBy = "popularity"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("X-Api-Key", cfg.APIKey)
	client.SetHeader("User-Agent", "stock-sentiment-roi/1.0")

	return &NewsAPIClient{client: client, cfg: cfg}
}

type everythingResponse struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// Query returns articles mentioning term published on or after since, in the
// order newsapi.org ranks them.
func (c *NewsAPIClient) Query(ctx context.Context, term string, since types.Date) ([]types.Article, error) {
	var result everythingResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        term,
			"from":     since.String(),
			"sortBy":   c.cfg.SortBy,
			"language": c.cfg.Language,
			"pageSize": fmt.Sprint(c.cfg.PageSize),
		}).
		SetResult(&result).
		SetError(&result).
		Get("/v2/everything")
	if err != nil {
		return nil, fmt.Errorf("%w: newsapi: %v", types.ErrSourceUnavailable, err)
	}

	if resp.IsError() || result.Status == "error" {
		err := fmt.Errorf("%w: newsapi status %d: %s %s", types.ErrSourceUnavailable, resp.StatusCode(), result.Code, result.Message)
		// Bad keys and malformed queries will not fix themselves.
		if resp.StatusCode() >= 400 && resp.StatusCode() < 500 && resp.StatusCode() != http.StatusTooManyRequests {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}

	articles := make([]types.Article, 0, len(result.Articles))
	for _, a := range result.Articles {
		title := CleanText(a.Title)
		if title == "" || title == "[Removed]" {
			continue
		}
		articles = append(articles, types.Article{
			Title:       title,
			Description: CleanText(a.Description),
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}
