// Package digest renders collected news items for people and for the summarizer.
package digest

import (
	"io"
	"time"

	"github.com/ppiankov/feedbrief/internal/feed"
)

// Input is the full input for a digest formatter.
type Input struct {
	Items     []feed.NewsItem
	Feeds     int // number of feed URLs fetched
	Failed    int // feeds that produced an error
	FetchedAt time.Time
	Summary   string // analysis text, optional
}

// Formatter writes a formatted digest to w.
type Formatter interface {
	Format(w io.Writer, input Input) error
}

// sourceGroup is the items of one source in collection order.
type sourceGroup struct {
	Source string
	Items  []feed.NewsItem
}

// groupBySource groups items by Source, ordered by first appearance.
func groupBySource(items []feed.NewsItem) []sourceGroup {
	var groups []sourceGroup
	index := make(map[string]int)
	for _, it := range items {
		i, ok := index[it.Source]
		if !ok {
			i = len(groups)
			index[it.Source] = i
			groups = append(groups, sourceGroup{Source: it.Source})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}
