package claude

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"stock-sentiment-roi/internal/interfaces"
	"stock-sentiment-roi/internal/llm"
	"stock-sentiment-roi/internal/retry"
	"stock-sentiment-roi/internal/types"
)

// Classifier asks a Claude model for the sentiment of a headline.
// Claude has no frequency penalty, so that parameter is ignored.
type Classifier struct {
	client anthropic.Client
	params llm.Params
}

var _ interfaces.SentimentClassifier = (*Classifier)(nil)

func New(apiKey string, params llm.Params, opts ...option.RequestOption) *Classifier {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	return &Classifier{
		client: anthropic.NewClient(append(base, opts...)...),
		params: params,
	}
}

func (c *Classifier) Classify(ctx context.Context, text string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.params.Model),
		MaxTokens:   int64(c.params.MaxTokens),
		Temperature: anthropic.Float(c.params.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(llm.Prompt(text))),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && apiErr.StatusCode != 429 {
			return "", retry.Permanent(fmt.Errorf("%w: claude: %v", types.ErrSourceUnavailable, err))
		}
		return "", fmt.Errorf("%w: claude: %v", types.ErrSourceUnavailable, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String()), nil
}
