package digest

import (
	"fmt"
	"io"
	"strings"
)

// TerminalFormatter formats a digest for terminal output.
type TerminalFormatter struct {
	color bool
}

// NewTerminal creates a terminal formatter. Set color=true for ANSI colors.
func NewTerminal(color bool) *TerminalFormatter {
	return &TerminalFormatter{color: color}
}

// Format writes the digest to w grouped by source.
func (f *TerminalFormatter) Format(w io.Writer, input Input) error {
	header := fmt.Sprintf("feedbrief — %d feeds, %d items", input.Feeds, len(input.Items))
	if !input.FetchedAt.IsZero() {
		header += ", " + input.FetchedAt.Format("2006-01-02 15:04")
	}
	fmt.Fprintln(w, f.bold(header))
	fmt.Fprintln(w)

	if input.Summary != "" {
		fmt.Fprintln(w, f.green(f.bold("--- Summary ---")))
		fmt.Fprintln(w)
		fmt.Fprintln(w, input.Summary)
		fmt.Fprintln(w)
	}

	if len(input.Items) == 0 {
		fmt.Fprintln(w, "No items found.")
	}

	for _, g := range groupBySource(input.Items) {
		fmt.Fprintln(w, f.yellow(f.bold(fmt.Sprintf("--- %s (%d) ---", g.Source, len(g.Items)))))
		fmt.Fprintln(w)
		for _, it := range g.Items {
			fmt.Fprintf(w, "  %s\n", f.bold(it.Title))
			if it.Summary != "" {
				fmt.Fprintf(w, "      %s\n", strings.ReplaceAll(it.Summary, "\n", "\n      "))
			}
			if it.Link != "" {
				fmt.Fprintf(w, "      %s\n", f.dim(it.Link))
			}
			if it.RawDate != "" {
				fmt.Fprintf(w, "      %s\n", f.dim(it.RawDate))
			}
			fmt.Fprintln(w)
		}
	}

	if input.Failed > 0 {
		fmt.Fprintln(w, f.dim(fmt.Sprintf("Failed: %d feeds (see log)", input.Failed)))
	}

	return nil
}

// ANSI helpers, no-op when color=false.

func (f *TerminalFormatter) bold(s string) string {
	if !f.color {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

func (f *TerminalFormatter) green(s string) string {
	if !f.color {
		return s
	}
	return "\033[32m" + s + "\033[0m"
}

func (f *TerminalFormatter) yellow(s string) string {
	if !f.color {
		return s
	}
	return "\033[33m" + s + "\033[0m"
}

func (f *TerminalFormatter) dim(s string) string {
	if !f.color {
		return s
	}
	return "\033[2m" + s + "\033[0m"
}
