// Package privacy masks personal data in text before it leaves the process.
package privacy

import (
	"fmt"
	"regexp"
)

const redactedPlaceholder = "[REDACTED]"

// DefaultPatterns mask e-mail addresses and phone numbers, which news
// summaries sometimes quote from contact blocks.
var DefaultPatterns = []string{
	`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`,
	`\+?\d[\d\s\-()]{8,}\d`,
}

// Compile compiles a list of regex pattern strings into compiled regexps.
// Returns an error if any pattern is invalid.
func Compile(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile redact pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// Apply replaces all matches of the compiled patterns in text with [REDACTED].
func Apply(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		text = re.ReplaceAllString(text, redactedPlaceholder)
	}
	return text
}

// Redactor applies a fixed set of patterns. A nil Redactor leaves text as is.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor compiles patterns into a Redactor.
func NewRedactor(patterns []string) (*Redactor, error) {
	compiled, err := Compile(patterns)
	if err != nil {
		return nil, err
	}
	return &Redactor{patterns: compiled}, nil
}

// Redact masks every match in text.
func (r *Redactor) Redact(text string) string {
	if r == nil {
		return text
	}
	return Apply(text, r.patterns)
}
