package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const analysisText = `1. [Lenta] Первая новость
   Подробности первой новости.

2. [RBC] Вторая новость без точки пробел
3. Третья
4. Четвёртая
5. Пятая
6. Шестая`

func TestFallback_Format(t *testing.T) {
	got := Fallback(analysisText, errors.New("API 500: boom"))

	want := "⚠️ *Анализ недоступен*\n\n" +
		"_Ошибка: API 500: boom_\n\n" +
		"*Последние новости:*\n" +
		"• [Lenta] Первая новость...\n" +
		"• [RBC] Вторая новость без точки пробел...\n" +
		"• Третья...\n" +
		"• Четвёртая...\n" +
		"• Пятая..."
	if got != want {
		t.Errorf("Fallback =\n%s\nwant\n%s", got, want)
	}
}

func TestFallback_Truncation(t *testing.T) {
	long := strings.Repeat("д", 150)
	got := Fallback("1. "+long, errors.New(long))

	if !strings.Contains(got, "_Ошибка: "+strings.Repeat("д", 100)+"_") {
		t.Error("cause not truncated to 100 chars")
	}
	if !strings.Contains(got, "• "+strings.Repeat("д", 80)+"...") {
		t.Error("headline not truncated to 80 chars")
	}
	if strings.Contains(got, strings.Repeat("д", 101)) {
		t.Error("found untruncated text")
	}
}

func TestHeadlines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"numbered", "1. a\n2. b", []string{"a", "b"}},
		{"no separator", "2024 год", []string{"2024 год"}},
		{"indented digit skipped", "  1. a\nplain\n3. c", []string{"c"}},
		{"blank", "\n\n", nil},
		{"cut at first separator", "1. a. b", []string{"a. b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := headlines(tt.text, maxHeadlines)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("headlines(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

type stubSummarizer struct {
	out string
	err error
}

func (s stubSummarizer) Summarize(context.Context, string) (string, error) {
	return s.out, s.err
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()

	if got := Analyze(ctx, stubSummarizer{out: "report"}, analysisText); got != "report" {
		t.Errorf("Analyze = %q, want report", got)
	}

	got := Analyze(ctx, stubSummarizer{err: errors.New("API 401: bad key")}, analysisText)
	if !strings.HasPrefix(got, fallbackHeading) || !strings.Contains(got, "API 401") {
		t.Errorf("Analyze on error = %q, want fallback", got)
	}

	got = Analyze(ctx, nil, analysisText)
	if !strings.Contains(got, ErrDisabled.Error()) {
		t.Errorf("Analyze(nil) = %q, want disabled fallback", got)
	}
}
