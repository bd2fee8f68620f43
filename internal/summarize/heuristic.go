package summarize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/feedbrief/internal/htmltext"
)

const (
	maxHeadlines    = 5
	maxHeadlineLen  = 80
	maxCauseLen     = 100
	fallbackHeading = "⚠️ *Анализ недоступен*"
	latestHeading   = "*Последние новости:*"
)

// Fallback builds the degraded summary shown when the summarizer fails:
// a warning, the truncated cause and up to five recent headlines.
//
// Headlines are taken from lines of text that start with a digit, which
// matches the numbered analysis text but is not a reliable item boundary.
func Fallback(text string, cause error) string {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}

	var sb strings.Builder
	sb.WriteString(fallbackHeading)
	sb.WriteString("\n\n_Ошибка: ")
	sb.WriteString(htmltext.Truncate(msg, maxCauseLen))
	sb.WriteString("_\n\n")
	sb.WriteString(latestHeading)
	sb.WriteString("\n")

	for i, h := range headlines(text, maxHeadlines) {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("• ")
		sb.WriteString(htmltext.Truncate(h, maxHeadlineLen))
		sb.WriteString("...")
	}
	return sb.String()
}

// headlines returns up to n numbered lines of text with the "N. " prefix removed.
func headlines(text string, n int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if len(out) == n {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(line); !unicode.IsDigit(r) {
			continue
		}
		line = strings.TrimSpace(line)
		if _, rest, ok := strings.Cut(line, ". "); ok {
			line = rest
		}
		out = append(out, line)
	}
	return out
}
