package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/feedbrief/internal/config"
	"github.com/ppiankov/feedbrief/internal/feed"
	"github.com/ppiankov/feedbrief/internal/store"
	"github.com/ppiankov/feedbrief/internal/summarize"
)

// newFetcher is replaced in tests.
var newFetcher = func(cfg *config.Config) *feed.Fetcher {
	return feed.NewFetcher(feed.Options{
		Timeout:        cfg.Feeds.Timeout.Duration,
		UserAgent:      cfg.Feeds.UserAgent,
		AcceptLanguage: cfg.Feeds.AcceptLanguage,
		MaxItems:       cfg.Feeds.MaxItems,
		MaxConcurrency: cfg.Feeds.MaxConcurrency,
	})
}

// newSummarizer returns nil when summaries should come from the fallback
// only: mode "fallback" or no API key.
func newSummarizer(cfg *config.Config) summarize.Summarizer {
	llm := cfg.Summarize.LLM
	if cfg.Summarize.Mode != "llm" {
		return nil
	}
	if llm.APIKey == "" {
		slog.Warn("no LLM API key set, using fallback summaries", "env", llm.APIKeyEnv)
		return nil
	}
	return summarize.NewLLM(summarize.LLMOptions{
		APIKey:      llm.APIKey,
		Endpoint:    llm.Endpoint,
		Model:       llm.Model,
		MaxTokens:   llm.MaxTokens,
		Temperature: llm.Temperature,
		PromptChars: llm.PromptChars,
		Timeout:     llm.Timeout.Duration,
	})
}

// openStore opens the feed health log, or returns nil when storage is
// disabled. Old runs are pruned on open.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	if cfg.Storage.Path == "" {
		return nil, nil
	}
	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if n, err := db.PruneOld(ctx, cfg.Storage.RetainDays); err != nil {
		slog.Warn("prune feed runs failed", "error", err)
	} else if n > 0 {
		slog.Debug("pruned old feed runs", "rows", n)
	}
	return db, nil
}

// collectFeeds runs one fetch over the configured feed list and records
// the per-feed outcome when db is not nil.
func collectFeeds(ctx context.Context, cfg *config.Config, db *store.Store) (feed.Report, error) {
	urls, err := feed.LoadURLs(cfg.FeedsPath())
	if err != nil {
		return feed.Report{}, err
	}

	f := newFetcher(cfg)
	defer f.Close()

	at := time.Now()
	report := f.Collect(ctx, urls)
	if db != nil {
		if err := db.RecordRun(ctx, at, report.Feeds); err != nil {
			slog.Warn("record feed run failed", "error", err)
		}
	}
	return report, nil
}
