package digest

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ppiankov/feedbrief/internal/feed"
	"github.com/ppiankov/feedbrief/internal/summarize"
)

func TestAnalysisText(t *testing.T) {
	items := []feed.NewsItem{
		makeItem("Lenta", "Rates raised", "Line one\n2024 figures", ""),
		makeItem("RBC", "Markets fall", "", ""),
	}

	got := AnalysisText(items, 0)
	want := "1. [Lenta] Rates raised\n   Line one 2024 figures\n\n2. [RBC] Markets fall"
	if got != want {
		t.Errorf("AnalysisText =\n%q\nwant\n%q", got, want)
	}
}

func TestAnalysisText_Truncated(t *testing.T) {
	var items []feed.NewsItem
	for i := 0; i < 50; i++ {
		items = append(items, makeItem("Источник", strings.Repeat("з", 100), strings.Repeat("т", 200), ""))
	}

	got := AnalysisText(items, 1000)
	if n := utf8.RuneCountInString(got); n != 1000 {
		t.Errorf("length = %d runes, want 1000", n)
	}
}

func TestAnalysisText_FeedsFallbackHeadlines(t *testing.T) {
	items := []feed.NewsItem{
		makeItem("Lenta", "Первая", "1. не заголовок", ""),
		makeItem("RBC", "Вторая", "", ""),
	}

	out := summarize.Fallback(AnalysisText(items, 0), nil)
	if !strings.Contains(out, "• [Lenta] Первая...") || !strings.Contains(out, "• [RBC] Вторая...") {
		t.Errorf("fallback = %q", out)
	}
	if strings.Contains(out, "не заголовок") {
		t.Error("summary line leaked into headlines")
	}
}

func TestLatestMessage(t *testing.T) {
	items := sampleInput().Items

	got := LatestMessage(items, 2)
	if !strings.Contains(got, "1. Rates raised (Lenta)\nhttps://lenta.example/1") {
		t.Errorf("got %q", got)
	}
	if strings.Contains(got, "Weather") {
		t.Error("expected only the first 2 items")
	}

	if got := LatestMessage(nil, 5); got != "Новостей нет." {
		t.Errorf("empty = %q", got)
	}
}

func TestNewsMessage(t *testing.T) {
	got := NewsMessage("отчёт", 30, 4)
	if got != "📰 *Анализ 30 новостей из 4 источников*\n\nотчёт" {
		t.Errorf("got %q", got)
	}
}

func TestCountSources(t *testing.T) {
	if n := CountSources(sampleInput().Items); n != 2 {
		t.Errorf("sources = %d, want 2", n)
	}
}
