package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/feedbrief/internal/config"
	"github.com/ppiankov/feedbrief/internal/store"
)

var (
	statsSince  string
	statsFormat string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-feed fetch health",
	RunE:  statsAction,
}

func init() {
	statsCmd.Flags().StringVar(&statsSince, "since", "7d", "time window (e.g. 7d, 48h)")
	statsCmd.Flags().StringVar(&statsFormat, "format", "terminal", "output format: terminal, json")
	rootCmd.AddCommand(statsCmd)
}

const staleDays = 3

func statsAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Storage.Path == "" {
		return fmt.Errorf("feed health log is disabled (storage.path is empty)")
	}

	sinceDur, err := parseDuration(statsSince)
	if err != nil {
		return fmt.Errorf("parse --since: %w", err)
	}

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx := cmd.Context()
	since := time.Now().Add(-sinceDur)

	stats, err := db.FeedStats(ctx, since)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}
	collections, err := db.Collections(ctx, since)
	if err != nil {
		return fmt.Errorf("count collections: %w", err)
	}

	switch statsFormat {
	case "json":
		return printStatsJSON(os.Stdout, stats)
	case "terminal", "":
		if len(stats) == 0 {
			fmt.Println("No feed runs recorded. Run 'feedbrief fetch' first.")
			return nil
		}
		printStats(os.Stdout, stats, collections, sinceDur)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want terminal or json)", statsFormat)
	}
}

type jsonFeedStats struct {
	URL         string  `json:"url"`
	Runs        int     `json:"runs"`
	Failures    int     `json:"failures"`
	FailurePct  float64 `json:"failure_pct"`
	AvgItems    float64 `json:"avg_items"`
	AvgMs       int64   `json:"avg_ms"`
	LastError   string  `json:"last_error,omitempty"`
	LastSuccess string  `json:"last_success,omitempty"`
	LastRun     string  `json:"last_run"`
}

func printStatsJSON(w io.Writer, stats []store.FeedStats) error {
	feeds := make([]jsonFeedStats, 0, len(stats))
	for _, fs := range stats {
		js := jsonFeedStats{
			URL:        fs.URL,
			Runs:       fs.Runs,
			Failures:   fs.Failures,
			FailurePct: fs.FailureRate() * 100,
			AvgItems:   fs.AvgItems,
			AvgMs:      fs.AvgDuration.Milliseconds(),
			LastError:  fs.LastError,
			LastRun:    fs.LastRun.UTC().Format(time.RFC3339),
		}
		if !fs.LastSuccess.IsZero() {
			js.LastSuccess = fs.LastSuccess.UTC().Format(time.RFC3339)
		}
		feeds = append(feeds, js)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Feeds []jsonFeedStats `json:"feeds"`
	}{feeds})
}

func printStats(w io.Writer, stats []store.FeedStats, collections int, since time.Duration) {
	now := time.Now()

	runs, failures := 0, 0
	for _, fs := range stats {
		runs += fs.Runs
		failures += fs.Failures
	}
	fmt.Fprintf(w, "feedbrief stats — %s, %d collections, %d feeds, %d fetches, %d failed\n\n",
		formatStatsDuration(since), collections, len(stats), runs, failures)

	// Worst feeds first.
	sorted := make([]store.FeedStats, len(stats))
	copy(sorted, stats)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FailureRate() > sorted[j].FailureRate()
	})

	maxURL := 4
	for _, fs := range sorted {
		maxURL = max(maxURL, len(fs.URL))
	}
	maxURL = min(maxURL, 50)

	fmt.Fprintln(w, "--- Feed Health ---")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-*s  %4s  %6s  %5s  %7s\n", maxURL, "Feed", "Runs", "Failed", "Items", "Avg ms")
	for _, fs := range sorted {
		name := fs.URL
		if len(name) > maxURL {
			name = name[:maxURL-1] + "…"
		}
		fmt.Fprintf(w, "  %-*s  %4d  %5.0f%%  %5.1f  %7d\n",
			maxURL, name, fs.Runs, fs.FailureRate()*100, fs.AvgItems, fs.AvgDuration.Milliseconds())
	}
	fmt.Fprintln(w)

	var stale []store.FeedStats
	for _, fs := range stats {
		if fs.LastSuccess.IsZero() || now.Sub(fs.LastSuccess) > staleDays*24*time.Hour {
			stale = append(stale, fs)
		}
	}
	if len(stale) > 0 {
		fmt.Fprintf(w, "--- Failing Feeds (no success in %d+ days) ---\n\n", staleDays)
		for _, fs := range stale {
			last := "never in window"
			if !fs.LastSuccess.IsZero() {
				last = fmt.Sprintf("last success %d days ago", int(now.Sub(fs.LastSuccess).Hours()/24))
			}
			fmt.Fprintf(w, "  %s — %s", fs.URL, last)
			if fs.LastError != "" {
				fmt.Fprintf(w, " (%s)", fs.LastError)
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}
}

// parseDuration handles both Go durations and "Nd" day notation.
func parseDuration(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func formatStatsDuration(d time.Duration) string {
	hours := int(d.Hours())
	if hours >= 24 && hours%24 == 0 {
		return fmt.Sprintf("%d days", hours/24)
	}
	return fmt.Sprintf("%dh", hours)
}
