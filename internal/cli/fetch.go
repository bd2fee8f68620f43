package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/feedbrief/internal/config"
	"github.com/ppiankov/feedbrief/internal/digest"
)

var (
	fetchFormat string
	noColor     bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch all feeds and print the collected items",
	RunE:  fetchAction,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchFormat, "format", "terminal", "output format: terminal, json, markdown")
	fetchCmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI colors")
}

func fetchAction(cmd *cobra.Command, _ []string) error {
	formatter, err := newFormatter(fetchFormat)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
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

	return formatter.Format(os.Stdout, digest.Input{
		Items:     report.Items,
		Feeds:     len(report.Feeds),
		Failed:    report.Failed(),
		FetchedAt: time.Now(),
	})
}

func newFormatter(format string) (digest.Formatter, error) {
	switch format {
	case "json":
		return digest.NewJSON(), nil
	case "markdown", "md":
		return digest.NewMarkdown(), nil
	case "terminal", "":
		return digest.NewTerminal(!noColor), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want terminal, json, or markdown)", format)
	}
}
