package sentiment

import (
	"strings"
	"unicode"

	"stock-sentiment-roi/internal/types"
)

var polar = []types.Label{types.Positive, types.Neutral, types.Negative}

// negators turn a following label word into a non-answer. Apostrophes are
// dropped before tokenizing, so "isn't" arrives as "isnt".
var negators = map[string]bool{
	"not": true, "no": true, "non": true, "never": true,
	"isnt": true, "wasnt": true, "arent": true,
	"neither": true, "nor": true,
}

// Normalize maps free-text classifier output onto a Label. It trims,
// lower-cases, drops a leading "sentiment:" and strips punctuation. An exact
// label word wins; otherwise exactly one of the three label words must occur
// as a whole word, never negated. Anything else is Unknown.
func Normalize(raw string) types.Label {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimSpace(strings.TrimPrefix(s, "sentiment:"))
	words := strings.Fields(stripPunct(s))
	if len(words) > 0 && words[0] == "sentiment" {
		words = words[1:]
	}

	if len(words) == 1 {
		for _, l := range polar {
			if words[0] == string(l) {
				return l
			}
		}
	}

	found := types.Unknown
	for i, w := range words {
		l := types.Label(w)
		if l != types.Positive && l != types.Neutral && l != types.Negative {
			continue
		}
		if i > 0 && negators[words[i-1]] {
			return types.Unknown
		}
		if found != types.Unknown && found != l {
			return types.Unknown
		}
		found = l
	}
	return found
}

func stripPunct(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\'' || r == '’':
			return -1
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			return ' '
		}
		return r
	}, s)
}
