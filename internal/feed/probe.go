package feed

import (
	"bytes"
	"context"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html/charset"
)

// Probe is a diagnostic view of one feed.
type Probe struct {
	URL      string
	Dialect  string // as detected by ParseDocument
	Detected string // as detected by gofeed: rss, atom, json or unknown
	Encoding string
	Guessed  bool // encoding was not declared
	Source   string
	Entries  int
	Duration time.Duration
	Err      error
}

// Probe downloads feedURL once and reports how it would be parsed.
// Failures are returned in Probe.Err, never logged.
func (f *Fetcher) Probe(ctx context.Context, feedURL string) Probe {
	p := Probe{URL: feedURL}
	start := time.Now()

	body, contentType, err := f.download(ctx, feedURL)
	if err != nil {
		p.Err = err
		p.Duration = time.Since(start)
		return p
	}

	_, name, certain := charset.DetermineEncoding(body, contentType)
	p.Encoding, p.Guessed = name, !certain
	p.Detected = detectedType(gofeed.DetectFeedType(bytes.NewReader(body)))

	doc, err := ParseDocument(body, feedURL)
	if err != nil {
		p.Err = err
		p.Duration = time.Since(start)
		return p
	}
	p.Dialect = doc.Dialect
	p.Source = doc.Source
	p.Entries = doc.Entries
	p.Duration = time.Since(start)
	return p
}

func detectedType(t gofeed.FeedType) string {
	switch t {
	case gofeed.FeedTypeRSS:
		return "rss"
	case gofeed.FeedTypeAtom:
		return "atom"
	case gofeed.FeedTypeJSON:
		return "json"
	default:
		return "unknown"
	}
}
