// Package htmltext turns HTML fragments from feed entries into readable plain text.
package htmltext

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/jaytaylor/html2text"
)

var (
	tagRe       = regexp.MustCompile(`<[^>]+>`)
	blankLineRe = regexp.MustCompile(`\n{3,}`)
)

// converter is the HTML to text conversion used by Normalize.
// Tests swap it to exercise the degraded path.
var converter = convert

// Normalize converts an HTML fragment to plain text. Link destinations are
// kept inline, images are dropped and lines are not wrapped. Runs of three or
// more newlines collapse to a single blank line.
//
// If conversion fails the fragment is reduced by stripping anything that
// looks like a tag and decoding entities. Normalize never fails.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	text, err := converter(raw)
	if err != nil {
		return strings.TrimSpace(html.UnescapeString(tagRe.ReplaceAllString(raw, "")))
	}

	text = blankLineRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func convert(raw string) (string, error) {
	return convertWith(raw, func(s string) (string, error) {
		return html2text.FromString(s, html2text.Options{OmitLinks: false})
	})
}

// convertWith reports a panic inside fn as a conversion failure.
func convertWith(raw string, fn func(string) (string, error)) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("html2text panic: %v", r)
		}
	}()
	return fn(raw)
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
