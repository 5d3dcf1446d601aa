package lexicon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifier_Classify(t *testing.T) {
	c := New()
	tests := []struct {
		text string
		want string
	}{
		{"Apple beats estimates as iPhone sales surge", "Positive"},
		{"Tesla shares plunge after recall and weak deliveries", "Negative"},
		{"Microsoft to hold annual shareholder meeting on Tuesday", "Neutral"},
		{"Nvidia shares did not rally on the news", "Negative"},
		{"Strong quarter offset by rising debt concerns", "Negative"},
		{"", "Neutral"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := c.Classify(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifier_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Classify(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"sell-off", "hits", "q3", "profit"}, tokenize("sell-off hits q3 profit!"))
}
