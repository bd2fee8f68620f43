package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/feedbrief/internal/config"
	"github.com/ppiankov/feedbrief/internal/feed"
	"github.com/ppiankov/feedbrief/internal/store"
)

var doctorProbe bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, credentials and feed health",
	RunE:  doctorAction,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorProbe, "probe", true, "download every feed and report how it parses")
}

const (
	healthWindowDays  = 7
	failureRateToWarn = 0.5
)

func doctorAction(cmd *cobra.Command, _ []string) error {
	ok := true

	// Config dir
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		printCheck(false, "config directory %s (run 'feedbrief init')", configDir)
		ok = false
	} else {
		printCheck(true, "config directory %s", configDir)
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		printCheck(false, "config.yaml: %v", err)
		return fmt.Errorf("some checks failed")
	}
	printCheck(true, "config.yaml (summarize mode %s)", cfg.Summarize.Mode)

	// Feed list
	urls, err := feed.LoadURLs(cfg.FeedsPath())
	switch {
	case err != nil:
		printCheck(false, "feed list: %v", err)
		ok = false
	case len(urls) == 0:
		printCheck(false, "feed list %s has no feed URLs", cfg.FeedsPath())
		ok = false
	default:
		printCheck(true, "feed list %s (%d feeds)", cfg.FeedsPath(), len(urls))
	}

	// Credentials
	if cfg.Telegram.Token == "" {
		printCheck(false, "bot token: %s is not set", cfg.Telegram.TokenEnv)
		ok = false
	} else {
		printCheck(true, "bot token (%s)", cfg.Telegram.TokenEnv)
	}
	if cfg.Summarize.Mode == "llm" {
		if cfg.Summarize.LLM.APIKey == "" {
			printInfo("LLM key %s is not set, summaries will use the fallback", cfg.Summarize.LLM.APIKeyEnv)
		} else {
			printCheck(true, "LLM key (%s, model %s)", cfg.Summarize.LLM.APIKeyEnv, cfg.Summarize.LLM.Model)
		}
	}
	if bc := cfg.Telegram.Broadcast; bc.Enabled() {
		printCheck(true, "broadcast to %d on %q", bc.ChatID, bc.Cron)
	}

	ctx := cmd.Context()

	// Database
	if cfg.Storage.Path == "" {
		printInfo("feed health log disabled (storage.path is empty)")
	} else {
		db, err := store.Open(cfg.Storage.Path)
		if err != nil {
			printCheck(false, "database: %v", err)
			ok = false
		} else {
			defer func() { _ = db.Close() }()
			printCheck(true, "database %s", cfg.Storage.Path)
			checkFeedHealth(ctx, db)
		}
	}

	if doctorProbe && len(urls) > 0 {
		if !probeFeeds(ctx, cfg, urls) {
			ok = false
		}
	}

	if !ok {
		return fmt.Errorf("some checks failed")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

// probeFeeds reports each feed as parsed by us and as detected by gofeed.
// It fails only when no feed yields entries.
func probeFeeds(ctx context.Context, cfg *config.Config, urls []string) bool {
	f := newFetcher(cfg)
	defer f.Close()

	fmt.Println()
	working := 0
	for _, u := range urls {
		p := f.Probe(ctx, u)
		if p.Err != nil {
			printCheck(false, "%s: %v", u, p.Err)
			continue
		}
		if p.Entries == 0 {
			printCheck(false, "%s: no entries (%s, gofeed: %s)", u, p.Dialect, p.Detected)
			continue
		}
		working++

		enc := p.Encoding
		if p.Guessed {
			enc += "?"
		}
		printCheck(true, "%s: %s, %d entries, %s, %s (gofeed: %s)",
			u, p.Dialect, p.Entries, enc, p.Duration.Round(time.Millisecond), p.Detected)
		if p.Dialect == "bare" && p.Detected != "unknown" {
			printInfo("%s: gofeed sees %s but no channel or feed element was found", u, p.Detected)
		}
	}
	return working > 0
}

func checkFeedHealth(ctx context.Context, db *store.Store) {
	stats, err := db.FeedStats(ctx, time.Now().AddDate(0, 0, -healthWindowDays))
	if err != nil || len(stats) == 0 {
		return // no data yet, skip
	}

	for _, fs := range stats {
		if fs.LastSuccess.IsZero() {
			printInfo("failing: %s, %d runs in %d days, none succeeded (last error: %s)",
				fs.URL, fs.Runs, healthWindowDays, fs.LastError)
			continue
		}
		if fs.FailureRate() >= failureRateToWarn {
			printInfo("flaky: %s, %.0f%% of %d runs failed", fs.URL, fs.FailureRate()*100, fs.Runs)
		}
	}
}

func printCheck(pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Printf("[%s] %s\n", mark, fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Printf("[INFO] %s\n", fmt.Sprintf(format, args...))
}
