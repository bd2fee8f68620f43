// Package message prepares outgoing chat text.
package message

import (
	"strings"
	"unicode/utf16"
)

// DefaultMaxLength is the Telegram limit for a single message, in UTF-16
// code units.
const DefaultMaxLength = 4096

const paragraphSep = "\n\n"

// Split breaks text into chunks of at most maxLen UTF-16 code units on
// paragraph boundaries, the unit Telegram measures messages in. Characters
// outside the Basic Multilingual Plane, emoji included, count twice.
// Paragraphs are packed greedily in order. A paragraph longer than maxLen
// becomes its own chunk unchanged. Text that already fits is returned as the
// only chunk.
func Split(text string, maxLen int) []string {
	if Length(text) <= maxLen {
		return []string{text}
	}

	var (
		chunks  []string
		current string
		curLen  int
	)
	for _, p := range strings.Split(text, paragraphSep) {
		pLen := Length(p)
		if curLen+pLen+len(paragraphSep) > maxLen {
			if current != "" {
				chunks = append(chunks, strings.TrimSpace(current))
			}
			current, curLen = p, pLen
			continue
		}
		if current == "" {
			current, curLen = p, pLen
		} else {
			current += paragraphSep + p
			curLen += len(paragraphSep) + pLen
		}
	}
	if current != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}

// Length returns the length of s in UTF-16 code units.
func Length(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
