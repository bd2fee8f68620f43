package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ppiankov/feedbrief/internal/bot"
	"github.com/ppiankov/feedbrief/internal/config"
	"github.com/ppiankov/feedbrief/internal/feed"
	"github.com/ppiankov/feedbrief/internal/privacy"
	"github.com/ppiankov/feedbrief/internal/ratelimit"
	"github.com/ppiankov/feedbrief/internal/telegram"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Serve /news, /latest and /sources over Telegram",
	RunE:  botAction,
}

// newChatClient is replaced in tests.
var newChatClient = func(token string) bot.Client {
	return telegram.New(token)
}

func botAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("bot token not set (export %s or add it to %s/.env)", cfg.Telegram.TokenEnv, configDir)
	}

	redactor, err := privacy.NewRedactor(cfg.RedactPatterns())
	if err != nil {
		return fmt.Errorf("compile redact patterns: %w", err)
	}

	ctx := cmd.Context()
	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	fetcher := newFetcher(cfg)
	defer fetcher.Close()

	opts := bot.Options{
		URLs:             func() ([]string, error) { return feed.LoadURLs(cfg.FeedsPath()) },
		Collector:        fetcher,
		Summarizer:       newSummarizer(cfg),
		Limiter:          ratelimit.New(cfg.Telegram.Cooldown.Duration),
		Redact:           redactor.Redact,
		MaxMessageLength: cfg.Telegram.MaxMessageLength,
		MaxChars:         cfg.Summarize.MaxChars,
		LatestCount:      cfg.Telegram.LatestCount,
		PollTimeout:      cfg.Telegram.PollTimeout.Duration,
	}
	if db != nil {
		opts.Recorder = db
	}

	b, err := bot.New(newChatClient(cfg.Telegram.Token), opts)
	if err != nil {
		return err
	}

	if bc := cfg.Telegram.Broadcast; bc.Enabled() {
		sched, err := bot.NewBroadcaster(ctx, b, bc.Cron, bc.ChatID)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	slog.Info("bot started", "feeds", cfg.FeedsPath(), "cooldown", cfg.Telegram.Cooldown.Duration)
	if err := b.Run(ctx); err != nil {
		return err
	}
	slog.Info("bot stopped")
	return nil
}
