package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProbe(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		dialect     string
		detected    string
		entries     int
	}{
		{"rss", "application/rss+xml; charset=utf-8", rssFixture(12), "rss", "rss", 12},
		{"atom", "application/atom+xml", atomFixture, "atom", "atom", 2},
		{"bare", "text/xml", `<items><item><title>A</title></item></items>`, "bare", "unknown", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			f := NewFetcher(Options{})
			defer f.Close()

			p := f.Probe(context.Background(), ts.URL)
			if p.Err != nil {
				t.Fatalf("probe: %v", p.Err)
			}
			if p.Dialect != tt.dialect {
				t.Errorf("dialect = %q, want %q", p.Dialect, tt.dialect)
			}
			if p.Detected != tt.detected {
				t.Errorf("detected = %q, want %q", p.Detected, tt.detected)
			}
			if p.Entries != tt.entries {
				t.Errorf("entries = %d, want %d", p.Entries, tt.entries)
			}
			if p.Encoding == "" {
				t.Error("encoding should be reported")
			}
		})
	}
}

func TestProbe_DeclaredCharset(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		fmt.Fprint(w, rssFixture(1))
	}))
	defer ts.Close()

	f := NewFetcher(Options{})
	defer f.Close()

	p := f.Probe(context.Background(), ts.URL)
	if p.Encoding != "utf-8" || p.Guessed {
		t.Errorf("encoding = %q guessed=%v, want declared utf-8", p.Encoding, p.Guessed)
	}
}

func TestProbe_Status(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	f := NewFetcher(Options{})
	defer f.Close()

	p := f.Probe(context.Background(), ts.URL)
	var se *StatusError
	if !errors.As(p.Err, &se) || se.StatusCode != http.StatusForbidden {
		t.Errorf("err = %v, want 403 StatusError", p.Err)
	}
	if p.Dialect != "" {
		t.Errorf("dialect = %q, want empty", p.Dialect)
	}
}

func TestProbe_Malformed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<rss><channel><item></channel>")
	}))
	defer ts.Close()

	f := NewFetcher(Options{})
	defer f.Close()

	if p := f.Probe(context.Background(), ts.URL); p.Err == nil {
		t.Error("expected parse error")
	}
}
