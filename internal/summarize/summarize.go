// Package summarize turns the aggregated news text into an analyst summary.
package summarize

import (
	"context"
	"errors"
	"log/slog"
)

// ErrDisabled is the cause reported when no remote summarizer is configured.
var ErrDisabled = errors.New("summarizer disabled")

// Summarizer produces a summary of the analysis text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Analyze summarizes text with s. Any failure, or a nil s, yields the
// degraded summary built by Fallback instead. Analyze never fails.
func Analyze(ctx context.Context, s Summarizer, text string) string {
	if s == nil {
		return Fallback(text, ErrDisabled)
	}

	summary, err := s.Summarize(ctx, text)
	if err != nil {
		slog.Warn("summarize failed, using fallback", "error", err)
		return Fallback(text, err)
	}
	return summary
}
