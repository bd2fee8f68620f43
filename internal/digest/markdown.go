package digest

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownFormatter formats a digest as Markdown.
type MarkdownFormatter struct{}

// NewMarkdown creates a Markdown formatter.
func NewMarkdown() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format writes the digest as Markdown to w.
func (f *MarkdownFormatter) Format(w io.Writer, input Input) error {
	fmt.Fprintf(w, "# feedbrief digest\n\n")
	fmt.Fprintf(w, "%d feeds, %d items", input.Feeds, len(input.Items))
	if !input.FetchedAt.IsZero() {
		fmt.Fprintf(w, ", fetched %s", input.FetchedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprint(w, "\n\n")

	if input.Summary != "" {
		fmt.Fprintf(w, "## Summary\n\n%s\n\n", input.Summary)
	}

	if len(input.Items) == 0 {
		fmt.Fprintln(w, "No items found.")
		return nil
	}

	for _, g := range groupBySource(input.Items) {
		fmt.Fprintf(w, "## %s (%d)\n\n", g.Source, len(g.Items))
		for _, it := range g.Items {
			if it.Link != "" {
				fmt.Fprintf(w, "- [%s](%s)", escapeBrackets(it.Title), it.Link)
			} else {
				fmt.Fprintf(w, "- %s", it.Title)
			}
			if it.Summary != "" {
				fmt.Fprintf(w, "\n  %s", strings.ReplaceAll(it.Summary, "\n", " "))
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}

	if input.Failed > 0 {
		fmt.Fprintf(w, "*Failed: %d feeds*\n", input.Failed)
	}

	return nil
}

var bracketReplacer = strings.NewReplacer("[", `\[`, "]", `\]`)

func escapeBrackets(s string) string {
	return bracketReplacer.Replace(s)
}
