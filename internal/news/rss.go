package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"stock-sentiment-roi/internal/interfaces"
	"stock-sentiment-roi/internal/logger"
	"stock-sentiment-roi/internal/types"
)

const defaultRSSURL = "https://news.google.com/rss/search"

// RSSConfig configures the Google News RSS source.
type RSSConfig struct {
	BaseURL  string
	Language string
	Country  string
	Timeout  time.Duration
}

// RSSSource reads the Google News RSS search feed. It needs no API key and
// serves as the fallback when NEWSAPI_KEY is not available.
type RSSSource struct {
	cfg RSSConfig
}

var _ interfaces.NewsSource = (*RSSSource)(nil)

func NewRSSSource(cfg RSSConfig) *RSSSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultRSSURL
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Country == "" {
		cfg.Country = "US"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &RSSSource{cfg: cfg}
}

func (s *RSSSource) searchURL(term string, since types.Date) string {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("%s after:%s", term, since.AddDays(-1)))
	q.Set("hl", s.cfg.Language+"-"+s.cfg.Country)
	q.Set("gl", s.cfg.Country)
	q.Set("ceid", s.cfg.Country+":"+s.cfg.Language)
	return s.cfg.BaseURL + "?" + q.Encode()
}

// Query returns feed items for term published on or after since, in feed order.
func (s *RSSSource) Query(ctx context.Context, term string, since types.Date) ([]types.Article, error) {
	c := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.UserAgent("Mozilla/5.0 (compatible; stock-sentiment-roi/1.0)"),
	)
	c.SetRequestTimeout(s.cfg.Timeout)

	var articles []types.Article
	c.OnXML("//item", func(e *colly.XMLElement) {
		title := CleanText(e.ChildText("title"))
		if title == "" {
			return
		}
		published, err := parsePubDate(e.ChildText("pubDate"))
		if err == nil && types.DateOf(published.UTC()).Before(since) {
			return
		}
		articles = append(articles, types.Article{
			Title:       title,
			Description: CleanText(e.ChildText("description")),
			URL:         strings.TrimSpace(e.ChildText("link")),
			Source:      strings.TrimSpace(e.ChildText("source")),
			PublishedAt: published,
		})
	})

	var visitErr error
	c.OnError(func(r *colly.Response, err error) {
		visitErr = err
		logger.Debug(ctx, "RSS request failed", "status", r.StatusCode, "error", err)
	})

	target := s.searchURL(term, since)
	if err := c.Visit(target); err != nil {
		return nil, fmt.Errorf("%w: rss %s: %v", types.ErrSourceUnavailable, term, err)
	}
	c.Wait()
	if visitErr != nil {
		return nil, fmt.Errorf("%w: rss %s: %v", types.ErrSourceUnavailable, term, visitErr)
	}
	return articles, nil
}

func parsePubDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(time.RFC1123Z, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC1123, s)
}
