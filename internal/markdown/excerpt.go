package markdown

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Excerpt lengths used by the public pages.
const (
	CardExcerptLen = 150 // blog cards
	MetaExcerptLen = 160 // <meta name="description">
)

// skipped elements contribute no visible text.
var skipped = map[string]bool{"script": true, "style": true}

// PlainText strips tags from an HTML fragment and collapses whitespace.
func PlainText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	depth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way keep what was read.
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			if skipped[string(name)] {
				depth++
			}
			// Block boundaries separate words.
			b.WriteByte(' ')
		case html.EndTagToken:
			name, _ := z.TagName()
			if skipped[string(name)] && depth > 0 {
				depth--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if depth == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// Truncate shortens s to at most n runes, appending "..." when it cuts.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:n]), " ") + "..."
}

// Excerpt renders a body and returns its first n characters of plain text.
func Excerpt(source string, n int) string {
	rendered, err := ToHTML(source)
	if err != nil {
		rendered = source
	}
	return Truncate(PlainText(rendered), n)
}
