package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultMaxItems       = 30
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	DefaultAccept         = "application/rss+xml, application/atom+xml, application/xml, text/xml, */*"
	DefaultAcceptLanguage = "ru-RU,ru;q=0.9"

	maxBodyBytes = 10 << 20
)

// Options configures a Fetcher. Zero values fall back to the defaults.
type Options struct {
	Timeout        time.Duration // total per-request budget
	UserAgent      string
	AcceptLanguage string
	MaxItems       int // aggregate cap for FetchAll
	MaxConcurrency int // 0 runs every feed at once
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.AcceptLanguage == "" {
		o.AcceptLanguage = DefaultAcceptLanguage
	}
	if o.MaxItems <= 0 {
		o.MaxItems = DefaultMaxItems
	}
	return o
}

// StatusError reports a feed that answered with something other than 200.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Fetcher is a network session shared by all retrievals of a run. It is safe
// for concurrent use. Close releases its pooled connections.
type Fetcher struct {
	opts   Options
	client *http.Client

	// fetchFn is the per-feed retrieval; tests replace it.
	fetchFn func(ctx context.Context, feedURL string) ([]NewsItem, error)
}

// NewFetcher creates a session with browser-like request headers.
func NewFetcher(opts Options) *Fetcher {
	opts = opts.withDefaults()
	f := &Fetcher{
		opts: opts,
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &feedTransport{
				base:           http.DefaultTransport.(*http.Transport).Clone(),
				userAgent:      opts.UserAgent,
				acceptLanguage: opts.AcceptLanguage,
			},
		},
	}
	f.fetchFn = f.fetch
	return f
}

// Close releases idle connections held by the session.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}

// Retrieve fetches and parses one feed. Network errors, non-200 responses and
// unparsable documents are logged and produce no items.
func (f *Fetcher) Retrieve(ctx context.Context, feedURL string) []NewsItem {
	items, _ := f.retrieve(ctx, feedURL)
	return items
}

// retrieve is Retrieve with the failure returned after it has been logged.
// A failed feed never yields items.
func (f *Fetcher) retrieve(ctx context.Context, feedURL string) ([]NewsItem, error) {
	items, err := f.safeFetch(ctx, feedURL)
	if err != nil {
		logFetchError(feedURL, err)
		return nil, err
	}
	return items, nil
}

func (f *Fetcher) fetch(ctx context.Context, feedURL string) ([]NewsItem, error) {
	body, _, err := f.download(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	doc, err := ParseDocument(body, feedURL)
	if err != nil {
		return nil, err
	}
	return doc.Items, nil
}

// download returns the body of a 200 response and its Content-Type.
func (f *Fetcher) download(ctx context.Context, feedURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func logFetchError(feedURL string, err error) {
	var se *StatusError
	if errors.As(err, &se) {
		slog.Warn("feed returned non-200 status", "url", feedURL, "status", se.StatusCode)
		return
	}
	slog.Warn("feed fetch failed", "url", feedURL, "error", err)
}

// feedTransport sets the identifying headers on every request so feeds that
// block bots or negotiate on Accept still serve XML.
type feedTransport struct {
	base           http.RoundTripper
	userAgent      string
	acceptLanguage string
}

func (t *feedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", DefaultAccept)
	req.Header.Set("Accept-Language", t.acceptLanguage)
	return t.base.RoundTrip(req)
}

// CloseIdleConnections lets http.Client.CloseIdleConnections reach the base transport.
func (t *feedTransport) CloseIdleConnections() {
	if ci, ok := t.base.(interface{ CloseIdleConnections() }); ok {
		ci.CloseIdleConnections()
	}
}
