package cli

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/feedbrief/internal/config"
	"github.com/ppiankov/feedbrief/internal/feed"
)

var importDryRun bool

var importCmd = &cobra.Command{
	Use:   "import <file.opml>",
	Short: "Add the feeds of an OPML file to the feed list",
	Args:  cobra.ExactArgs(1),
	RunE:  importAction,
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "show what would be added without modifying the feed list")
	rootCmd.AddCommand(importCmd)
}

type opml struct {
	Body opmlBody `xml:"body"`
}

type opmlBody struct {
	Outlines []opmlOutline `xml:"outline"`
}

type opmlOutline struct {
	XMLURL   string        `xml:"xmlUrl,attr"`
	Text     string        `xml:"text,attr"`
	Outlines []opmlOutline `xml:"outline"`
}

func importAction(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read OPML: %w", err)
	}

	var doc opml
	if err := xml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse OPML: %w", err)
	}

	found := extractFeedURLs(doc.Body.Outlines)
	if len(found) == 0 {
		fmt.Println("No feed URLs found in OPML file.")
		return nil
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	path := cfg.FeedsPath()

	existing, err := feed.LoadURLs(path)
	if err != nil {
		return err
	}

	newFeeds, skipped := newURLs(existing, found)
	if len(newFeeds) == 0 {
		fmt.Printf("All %d feeds already present, nothing to add.\n", skipped)
		return nil
	}

	if importDryRun {
		fmt.Printf("Would add %d feeds to %s (skipping %d duplicates):\n", len(newFeeds), path, skipped)
		for _, f := range newFeeds {
			fmt.Printf("  + %s\n", f)
		}
		return nil
	}

	if err := appendFeeds(path, newFeeds); err != nil {
		return fmt.Errorf("update feed list: %w", err)
	}
	fmt.Printf("Added %d feeds to %s, skipped %d duplicates.\n", len(newFeeds), path, skipped)
	return nil
}

// extractFeedURLs walks outlines depth-first, folders included, and keeps
// http(s) xmlUrl values.
func extractFeedURLs(outlines []opmlOutline) []string {
	var urls []string
	for _, o := range outlines {
		u := strings.TrimSpace(o.XMLURL)
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			urls = append(urls, u)
		}
		urls = append(urls, extractFeedURLs(o.Outlines)...)
	}
	return urls
}

// newURLs returns the found URLs not already in existing, without repeats,
// and how many were skipped.
func newURLs(existing, found []string) ([]string, int) {
	seen := make(map[string]bool, len(existing))
	for _, u := range existing {
		seen[u] = true
	}

	var out []string
	skipped := 0
	for _, u := range found {
		if seen[u] {
			skipped++
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out, skipped
}

// appendFeeds adds one URL per line at the end of the feed list, creating it
// if needed. Existing lines and comments are kept.
func appendFeeds(path string, urls []string) error {
	var sb strings.Builder
	if data, err := os.ReadFile(path); err == nil && len(data) > 0 && data[len(data)-1] != '\n' {
		sb.WriteByte('\n')
	}
	for _, u := range urls {
		sb.WriteString(u)
		sb.WriteByte('\n')
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
