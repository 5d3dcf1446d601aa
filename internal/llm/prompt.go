// Package llm holds what every sentiment classifier shares: the prompt and
// the decoding parameters. Provider clients live in subpackages.
package llm

import "strings"

const instruction = "Decide whether the text sentiment is positive, neutral, or negative."

// Prompt builds the classification prompt for one headline.
func Prompt(text string) string {
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\nText: \n")
	b.WriteString(text)
	b.WriteString(" \nSentiment: ")
	return b.String()
}

// Params are the decoding parameters sent with every request.
type Params struct {
	Model            string
	MaxTokens        int
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
}

// DefaultParams returns deterministic, short-answer decoding.
func DefaultParams(model string) Params {
	return Params{
		Model:            model,
		MaxTokens:        60,
		Temperature:      0,
		TopP:             1.0,
		FrequencyPenalty: 0.5,
	}
}
