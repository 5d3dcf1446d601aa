package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrompt(t *testing.T) {
	got := Prompt("Apple beats estimates")
	assert.Equal(t, "Decide whether the text sentiment is positive, neutral, or negative.\n\nText: \nApple beats estimates \nSentiment: ", got)
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams("gpt-4o-mini")
	assert.Equal(t, "gpt-4o-mini", p.Model)
	assert.Equal(t, 60, p.MaxTokens)
	assert.Equal(t, 0.0, p.Temperature)
	assert.Equal(t, 1.0, p.TopP)
	assert.Equal(t, 0.5, p.FrequencyPenalty)
}
