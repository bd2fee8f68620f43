package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/feedbrief/internal/config"
	"github.com/ppiankov/feedbrief/internal/digest"
	"github.com/ppiankov/feedbrief/internal/message"
	"github.com/ppiankov/feedbrief/internal/privacy"
	"github.com/ppiankov/feedbrief/internal/summarize"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch feeds, summarize, and print the messages /news would send",
	RunE:  runAction,
}

func runAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
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

	report, err := collectFeeds(ctx, cfg, db)
	if err != nil {
		return err
	}
	if len(report.Items) == 0 {
		fmt.Printf("No news from %d feeds (%d failed).\n", len(report.Feeds), report.Failed())
		return nil
	}

	text := redactor.Redact(digest.AnalysisText(report.Items, cfg.Summarize.MaxChars))
	summary := summarize.Analyze(ctx, newSummarizer(cfg), text)
	msg := digest.NewsMessage(summary, len(report.Items), digest.CountSources(report.Items))

	chunks := message.Split(msg, cfg.Telegram.MaxMessageLength)
	for i, chunk := range chunks {
		if len(chunks) > 1 {
			fmt.Printf("--- message %d/%d ---\n", i+1, len(chunks))
		}
		fmt.Println(chunk)
	}
	return nil
}
