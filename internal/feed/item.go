// Package feed fetches RSS/Atom documents and normalizes their entries into NewsItems.
package feed

import "time"

const (
	// MaxEntriesPerFeed caps how many entries are read from one document,
	// independent of the aggregate cap.
	MaxEntriesPerFeed = 10

	// MaxSummaryRunes caps the normalized summary of an entry.
	MaxSummaryRunes = 300

	// UntitledPlaceholder replaces a missing or blank entry title.
	UntitledPlaceholder = "Без заголовка"

	// UnknownSource names a feed that has neither a title nor a parsable host.
	UnknownSource = "Unknown"
)

// NewsItem is one normalized feed entry.
type NewsItem struct {
	Title   string // never empty
	Summary string // plain text, at most MaxSummaryRunes runes
	Link    string // may be empty
	Source  string // feed title or URL host

	// Published is reserved; the parser leaves it nil and keeps the
	// original text in RawDate.
	Published *time.Time
	RawDate   string
}
