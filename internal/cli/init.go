package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/feedbrief/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config directory with example files",
	RunE:  initAction,
}

func initAction(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	files := []struct {
		name string
		data string
		mode os.FileMode
	}{
		{config.DefaultConfigFile, exampleConfig, 0o644},
		{config.DefaultFeedsFile, exampleFeeds, 0o644},
		{config.DefaultEnvFile, exampleEnv, 0o600},
	}

	created := 0
	for _, f := range files {
		wrote, err := writeIfNotExists(filepath.Join(configDir, f.name), []byte(f.data), f.mode)
		if err != nil {
			return err
		}
		if wrote {
			created++
		}
	}

	if created == 0 {
		fmt.Printf("Config directory %s already initialized.\n", configDir)
	} else {
		fmt.Printf("Initialized %s with %d files.\n", configDir, created)
	}
	return nil
}

// writeIfNotExists writes data to path if the file does not exist.
// Returns true if the file was created.
func writeIfNotExists(path string, data []byte, mode os.FileMode) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("  exists: %s\n", path)
		return false, nil
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("  created: %s\n", path)
	return true, nil
}

const exampleConfig = `# feedbrief configuration

feeds:
  file: rss_feeds.txt
  max_items: 30
  timeout: 30s
  max_concurrency: 0
  accept_language: "ru-RU,ru;q=0.9"

summarize:
  mode: llm          # llm or fallback
  max_chars: 8000
  llm:
    endpoint: https://api.groq.com/openai/v1/chat/completions
    model: llama-3.1-8b-instant
    api_key_env: GROQ_API_KEY
    prompt_chars: 4000
    max_tokens: 1000
    temperature: 0.5
    timeout: 30s

telegram:
  token_env: TELEGRAM_BOT_TOKEN
  max_message_length: 4096
  cooldown: 30s
  poll_timeout: 30s
  latest_count: 10
  broadcast:
    chat_id: 0
    cron: ""         # e.g. "0 9 * * *"

privacy:
  redact:
    enabled: false
    patterns: []

storage:
  path: .feedbrief/health.db
  retain_days: 30
`

const exampleFeeds = `# One feed URL per line. Lines starting with # are ignored.
https://lenta.ru/rss
https://www.vedomosti.ru/rss/news
https://www.kommersant.ru/RSS/news.xml
`

const exampleEnv = `# Secrets for feedbrief. Variables already set in the environment win.
TELEGRAM_BOT_TOKEN=
GROQ_API_KEY=
`
