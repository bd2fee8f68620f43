package digest

import (
	"encoding/json"
	"io"
	"time"
)

type jsonDigest struct {
	Meta    jsonMeta   `json:"meta"`
	Summary string     `json:"summary,omitempty"`
	Items   []jsonItem `json:"items"`
}

type jsonMeta struct {
	Feeds     int    `json:"feeds"`
	Failed    int    `json:"failed"`
	Items     int    `json:"items"`
	FetchedAt string `json:"fetched_at,omitempty"`
}

type jsonItem struct {
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
	Link    string `json:"link,omitempty"`
	Source  string `json:"source"`
	RawDate string `json:"raw_date,omitempty"`
}

// JSONFormatter formats a digest as JSON.
type JSONFormatter struct{}

// NewJSON creates a JSON formatter.
func NewJSON() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes the digest as JSON to w.
func (f *JSONFormatter) Format(w io.Writer, input Input) error {
	out := jsonDigest{
		Meta: jsonMeta{
			Feeds:  input.Feeds,
			Failed: input.Failed,
			Items:  len(input.Items),
		},
		Summary: input.Summary,
		Items:   make([]jsonItem, 0, len(input.Items)),
	}
	if !input.FetchedAt.IsZero() {
		out.Meta.FetchedAt = input.FetchedAt.UTC().Format(time.RFC3339)
	}
	for _, it := range input.Items {
		out.Items = append(out.Items, jsonItem{
			Title:   it.Title,
			Summary: it.Summary,
			Link:    it.Link,
			Source:  it.Source,
			RawDate: it.RawDate,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
