package news

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanText strips markup and entities from a headline or description and
// collapses runs of whitespace. Plain text passes through unchanged apart
// from whitespace.
func CleanText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Headline is the text sent to the classifier for an article: the cleaned
// title, or the description when the title is empty.
func Headline(title, description string) string {
	if t := CleanText(title); t != "" {
		return t
	}
	return CleanText(description)
}
