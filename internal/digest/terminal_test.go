package digest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/feedbrief/internal/feed"
)

func makeItem(source, title, summary, link string) feed.NewsItem {
	return feed.NewsItem{Title: title, Summary: summary, Link: link, Source: source}
}

func sampleInput() Input {
	return Input{
		Items: []feed.NewsItem{
			makeItem("Lenta", "Rates raised", "Central bank raised rates", "https://lenta.example/1"),
			makeItem("RBC", "Markets fall", "", "https://rbc.example/2"),
			makeItem("Lenta", "Weather", "Snow expected", ""),
		},
		Feeds:     3,
		Failed:    1,
		FetchedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestFormat_FullDigest(t *testing.T) {
	f := NewTerminal(false)
	var buf bytes.Buffer

	if err := f.Format(&buf, sampleInput()); err != nil {
		t.Fatalf("format: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"feedbrief",
		"3 feeds",
		"3 items",
		"2024-03-01 09:30",
		"--- Lenta (2) ---",
		"--- RBC (1) ---",
		"Rates raised",
		"Central bank raised rates",
		"https://rbc.example/2",
		"Failed: 1 feeds",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	if strings.Index(out, "Weather") > strings.Index(out, "RBC (1)") {
		t.Error("items of one source should be grouped together")
	}
}

func TestFormat_Summary(t *testing.T) {
	f := NewTerminal(false)
	var buf bytes.Buffer

	in := sampleInput()
	in.Summary = "Main topics: economy"
	if err := f.Format(&buf, in); err != nil {
		t.Fatalf("format: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "--- Summary ---") || !strings.Contains(out, "Main topics: economy") {
		t.Error("missing summary section")
	}
	if strings.Index(out, "Summary") > strings.Index(out, "Lenta") {
		t.Error("summary should precede items")
	}
}

func TestFormat_EmptyInput(t *testing.T) {
	f := NewTerminal(false)
	var buf bytes.Buffer

	if err := f.Format(&buf, Input{Feeds: 2}); err != nil {
		t.Fatalf("format: %v", err)
	}
	if !strings.Contains(buf.String(), "No items found.") {
		t.Errorf("got %q", buf.String())
	}
}

func TestFormat_NoANSIWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTerminal(false).Format(&buf, sampleInput()); err != nil {
		t.Fatalf("format: %v", err)
	}
	if strings.Contains(buf.String(), "\033[") {
		t.Error("found ANSI escape with color disabled")
	}

	buf.Reset()
	if err := NewTerminal(true).Format(&buf, sampleInput()); err != nil {
		t.Fatalf("format: %v", err)
	}
	if !strings.Contains(buf.String(), "\033[1m") {
		t.Error("expected ANSI escape with color enabled")
	}
}
