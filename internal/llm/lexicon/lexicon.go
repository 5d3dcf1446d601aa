// Package lexicon is an offline sentiment classifier built on financial word
// lists in the style of Loughran-McDonald, extended with common headline verbs.
// It needs no API key and is deterministic, which makes it the default for
// dry runs and tests.
package lexicon

import (
	"context"
	"strings"
	"unicode"

	"stock-sentiment-roi/internal/interfaces"
)

type Classifier struct {
	positive map[string]bool
	negative map[string]bool
	negators map[string]bool
}

var _ interfaces.SentimentClassifier = (*Classifier)(nil)

func New() *Classifier {
	return &Classifier{
		positive: toSet(positiveWords),
		negative: toSet(negativeWords),
		negators: toSet([]string{"not", "no", "never", "without", "fails", "failed"}),
	}
}

// Classify returns "Positive", "Negative" or "Neutral". A polar word directly
// after a negator counts for the opposite side.
func (c *Classifier) Classify(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.Label(text), nil
}

// Label is Classify without the context.
func (c *Classifier) Label(text string) string {
	score := c.Score(text)
	switch {
	case score > 0:
		return "Positive"
	case score < 0:
		return "Negative"
	default:
		return "Neutral"
	}
}

// Score is the count of positive words minus the count of negative words.
func (c *Classifier) Score(text string) int {
	words := tokenize(strings.ToLower(text))
	score := 0
	for i, w := range words {
		sign := 0
		switch {
		case c.positive[w]:
			sign = 1
		case c.negative[w]:
			sign = -1
		}
		if sign != 0 && i > 0 && c.negators[words[i-1]] {
			sign = -sign
		}
		score += sign
	}
	return score
}

func tokenize(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' {
			current.WriteRune(r)
		} else if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}

func toSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var positiveWords = []string{
	"achieve", "advance", "advances", "attain", "beat", "beats", "benefit", "better",
	"boost", "boosts", "bullish", "climb", "climbs", "competitive", "delight",
	"enhance", "excellent", "exceptional", "extraordinary", "favorable",
	"gain", "gains", "good", "great", "grew", "growth", "high", "improve", "improved",
	"improvement", "innovation", "innovative", "jump", "jumps", "leader",
	"leading", "opportunity", "optimal", "optimistic", "outperform", "outperforms",
	"positive", "profit", "profitable", "progress", "prosper", "rally", "rallies",
	"record", "remarkable", "rise", "rises", "robust", "soar", "soars", "solid",
	"strength", "strong", "succeed", "success", "successful", "superior", "surge",
	"surges", "surpass", "tops", "tremendous", "upbeat", "upgrade", "upgraded",
	"valuable", "well-positioned", "win", "winning", "wins",
}

var negativeWords = []string{
	"abandon", "adverse", "bearish", "challenge", "challenging", "concern", "concerns",
	"crash", "crisis", "cut", "cuts", "damage", "debt", "decline", "declines",
	"decrease", "deficit", "deteriorate", "difficult", "difficulty", "disappoint",
	"disappointing", "disadvantage", "downgrade", "downgraded", "downturn", "drop",
	"drops", "erode", "fail", "failure", "fall", "falling", "falls", "fear", "fears",
	"headwind", "impair", "impairment", "inability", "inadequate", "ineffective",
	"lawsuit", "layoffs", "loss", "losses", "miss", "misses", "negative", "obstacle",
	"plunge", "plunges", "poor", "probe", "problem", "recall", "recession",
	"restructuring", "risk", "risks", "sell-off", "slide", "slides", "slow",
	"slowdown", "slump", "slumps", "sue", "sued", "tumble", "tumbles", "uncertain",
	"uncertainty", "underperform", "unfavorable", "unprofitable", "volatile",
	"volatility", "warning", "weak", "weakness", "worse", "worsen", "worst",
}
