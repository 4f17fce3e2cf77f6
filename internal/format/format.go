// Package format renders assistant chat text as HTML: markdown-style bold
// and italic markers, line breaks, clickable links, and numeric bracket
// citations.
package format

import (
	"html"
	"regexp"
	"strings"
)

var (
	boldRe     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe   = regexp.MustCompile(`\*(.*?)\*`)
	urlRe      = regexp.MustCompile("https?://[^\\s<>\"{}|\\\\^`\\[\\]]+")
	citationRe = regexp.MustCompile(`\[(\d+)\]`)
)

// Render converts assistant text to HTML. Substitution order matters:
// escaping comes first, bold before italic (so ** pairs are not eaten as
// two italics), and both before links and citations, since the later
// passes operate on the already-partially-transformed text.
func Render(message string) string {
	formatted := html.EscapeString(message)

	formatted = boldRe.ReplaceAllString(formatted, "<strong>$1</strong>")
	formatted = italicRe.ReplaceAllString(formatted, "<em>$1</em>")
	formatted = strings.ReplaceAll(formatted, "\n", "<br>")

	formatted = urlRe.ReplaceAllString(formatted,
		`<a href="$0" target="_blank" rel="noopener noreferrer" class="chat-link">$0</a>`)

	formatted = citationRe.ReplaceAllString(formatted,
		`<sup class="citation">[$1]</sup>`)

	return formatted
}
