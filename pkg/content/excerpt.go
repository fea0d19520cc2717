package content

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// ExcerptLength is the maximum excerpt length in runes.
const ExcerptLength = 200

// Excerpt derives a plain-text summary from description markup.
// Readability goes first; short fragments often defeat it, so goquery text
// extraction is the fallback.
func Excerpt(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}

	text, err := ExtractText(markup)
	if err != nil || text == "" {
		text = fallbackText(markup)
	}
	return truncateRunes(collapseSpace(text), ExcerptLength)
}

// ExtractText extracts the main text from HTML content
func ExtractText(htmlContent string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(article.TextContent), nil
}

func fallbackText(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
