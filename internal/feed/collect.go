package feed

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// FeedResult is the outcome of one feed within a collection run.
type FeedResult struct {
	URL      string
	Items    int
	Err      error
	Duration time.Duration
}

// Report is the outcome of a collection run.
type Report struct {
	Items []NewsItem   // concatenated in URL order, capped at MaxItems
	Feeds []FeedResult // one per URL, in URL order
}

// Failed counts feeds that produced an error.
func (r Report) Failed() int {
	n := 0
	for _, f := range r.Feeds {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// FetchAll retrieves every feed concurrently and returns their items in the
// order the URLs were given, capped at MaxItems. A failing feed contributes
// nothing and never affects the others.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []NewsItem {
	return f.Collect(ctx, urls).Items
}

// Collect is FetchAll with the per-feed outcomes kept.
func (f *Fetcher) Collect(ctx context.Context, urls []string) Report {
	results := make([][]NewsItem, len(urls))
	feeds := make([]FeedResult, len(urls))

	// Siblings are never cancelled: errgroup.Group without a context only
	// joins, and every task reports success.
	var g errgroup.Group
	if f.opts.MaxConcurrency > 0 {
		g.SetLimit(f.opts.MaxConcurrency)
	}

	for i, u := range urls {
		g.Go(func() error {
			start := time.Now()
			items, err := f.retrieve(ctx, u)
			results[i] = items
			feeds[i] = FeedResult{URL: u, Items: len(items), Err: err, Duration: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()

	var all []NewsItem
	for _, items := range results {
		all = append(all, items...)
	}
	if len(all) > f.opts.MaxItems {
		all = all[:f.opts.MaxItems]
	}

	return Report{Items: all, Feeds: feeds}
}

func (f *Fetcher) safeFetch(ctx context.Context, feedURL string) (items []NewsItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return f.fetchFn(ctx, feedURL)
}
