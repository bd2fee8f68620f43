package digest

import (
	"fmt"
	"strings"

	"github.com/ppiankov/feedbrief/internal/feed"
	"github.com/ppiankov/feedbrief/internal/htmltext"
)

// DefaultMaxChars bounds the analysis text handed to the summarizer.
const DefaultMaxChars = 8000

// AnalysisText renders items as numbered entries, one per paragraph:
//
//	1. [Source] Title
//	   Summary
//
// Summaries are folded onto one line so that only headline lines start with
// a digit. The result is cut to maxChars runes.
func AnalysisText(items []feed.NewsItem, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var sb strings.Builder
	for i, it := range items {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "%d. [%s] %s", i+1, it.Source, it.Title)
		if it.Summary != "" {
			sb.WriteString("\n   ")
			sb.WriteString(strings.ReplaceAll(it.Summary, "\n", " "))
		}
	}
	return htmltext.Truncate(sb.String(), maxChars)
}

// NewsMessage is the chat reply for a summarized digest.
func NewsMessage(summary string, items, sources int) string {
	return fmt.Sprintf("📰 *Анализ %d новостей из %d источников*\n\n%s", items, sources, summary)
}

// LatestMessage lists the first n headlines with their links as plain text.
func LatestMessage(items []feed.NewsItem, n int) string {
	if len(items) == 0 {
		return "Новостей нет."
	}
	if n > 0 && len(items) > n {
		items = items[:n]
	}

	var sb strings.Builder
	sb.WriteString("Последние новости:")
	for i, it := range items {
		fmt.Fprintf(&sb, "\n\n%d. %s (%s)", i+1, it.Title, it.Source)
		if it.Link != "" {
			sb.WriteString("\n")
			sb.WriteString(it.Link)
		}
	}
	return sb.String()
}

// CountSources returns the number of distinct sources among items.
func CountSources(items []feed.NewsItem) int {
	return len(groupBySource(items))
}
