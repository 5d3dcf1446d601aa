package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"stock-sentiment-roi/internal/interfaces"
	"stock-sentiment-roi/internal/llm"
	"stock-sentiment-roi/internal/retry"
	"stock-sentiment-roi/internal/types"
)

// Classifier asks an OpenAI chat model for the sentiment of a headline.
type Classifier struct {
	client openai.Client
	params llm.Params
}

var _ interfaces.SentimentClassifier = (*Classifier)(nil)

// New creates a classifier. SDK retries are disabled; callers wrap Classify
// with their own retry policy.
func New(apiKey string, params llm.Params, opts ...option.RequestOption) *Classifier {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	return &Classifier{
		client: openai.NewClient(append(base, opts...)...),
		params: params,
	}
}

func (c *Classifier) Classify(ctx context.Context, text string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.params.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(llm.Prompt(text)),
		},
		MaxTokens:        openai.Int(int64(c.params.MaxTokens)),
		Temperature:      openai.Float(c.params.Temperature),
		TopP:             openai.Float(c.params.TopP),
		FrequencyPenalty: openai.Float(c.params.FrequencyPenalty),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && apiErr.StatusCode != 429 {
			return "", retry.Permanent(fmt.Errorf("%w: openai: %v", types.ErrSourceUnavailable, err))
		}
		return "", fmt.Errorf("%w: openai: %v", types.ErrSourceUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", types.ErrSourceUnavailable)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
