package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/feedbrief/internal/privacy"
)

const (
	DefaultConfigDir  = ".feedbrief"
	DefaultConfigFile = "config.yaml"
	DefaultEnvFile    = ".env"

	DefaultFeedsFile      = "rss_feeds.txt"
	DefaultMaxItems       = 30
	DefaultFeedTimeout    = 30 * time.Second
	DefaultAcceptLanguage = "ru-RU,ru;q=0.9"

	DefaultSummarizeMode = "llm"
	DefaultMaxChars      = 8000
	DefaultLLMEndpoint   = "https://api.groq.com/openai/v1/chat/completions"
	DefaultLLMModel      = "llama-3.1-8b-instant"
	DefaultAPIKeyEnv     = "GROQ_API_KEY"
	DefaultPromptChars   = 4000
	DefaultMaxTokens     = 1000
	DefaultTemperature   = 0.5
	DefaultLLMTimeout    = 30 * time.Second

	DefaultTokenEnv         = "TELEGRAM_BOT_TOKEN"
	DefaultMaxMessageLength = 4096 // UTF-16 code units, as Telegram counts
	DefaultCooldown         = 30 * time.Second
	DefaultPollTimeout      = 30 * time.Second
	DefaultLatestCount      = 10

	DefaultStoragePath = ".feedbrief/health.db"
	DefaultRetainDays  = 30
)

// Duration wraps time.Duration for YAML unmarshaling from strings like "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Feeds     FeedsConfig     `yaml:"feeds"`
	Summarize SummarizeConfig `yaml:"summarize"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Privacy   PrivacyConfig   `yaml:"privacy"`
	Storage   StorageConfig   `yaml:"storage"`

	// Dir is the config directory the file was loaded from.
	Dir string `yaml:"-"`
}

type FeedsConfig struct {
	File           string   `yaml:"file"` // relative paths resolve against the config dir
	MaxItems       int      `yaml:"max_items"`
	Timeout        Duration `yaml:"timeout"`
	MaxConcurrency int      `yaml:"max_concurrency"` // 0 = unbounded
	UserAgent      string   `yaml:"user_agent"`
	AcceptLanguage string   `yaml:"accept_language"`
}

type SummarizeConfig struct {
	Mode     string    `yaml:"mode"`
	MaxChars int       `yaml:"max_chars"`
	LLM      LLMConfig `yaml:"llm"`
}

type LLMConfig struct {
	Endpoint    string   `yaml:"endpoint"`
	Model       string   `yaml:"model"`
	APIKeyEnv   string   `yaml:"api_key_env"`
	PromptChars int      `yaml:"prompt_chars"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature float64  `yaml:"temperature"`
	Timeout     Duration `yaml:"timeout"`

	// Resolved from env var at load time.
	APIKey string `yaml:"-"`
}

type TelegramConfig struct {
	TokenEnv         string          `yaml:"token_env"`
	MaxMessageLength int             `yaml:"max_message_length"`
	Cooldown         Duration        `yaml:"cooldown"`
	PollTimeout      Duration        `yaml:"poll_timeout"`
	LatestCount      int             `yaml:"latest_count"`
	Broadcast        BroadcastConfig `yaml:"broadcast"`

	// Resolved from env var at load time.
	Token string `yaml:"-"`
}

type BroadcastConfig struct {
	ChatID int64  `yaml:"chat_id"`
	Cron   string `yaml:"cron"`
}

// Enabled reports whether a scheduled broadcast is configured.
func (b BroadcastConfig) Enabled() bool {
	return b.ChatID != 0 && strings.TrimSpace(b.Cron) != ""
}

type PrivacyConfig struct {
	Redact RedactConfig `yaml:"redact"`
}

type RedactConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Patterns []string `yaml:"patterns"` // empty = privacy.DefaultPatterns
}

type StorageConfig struct {
	Path       string `yaml:"path"` // empty disables the feed health log
	RetainDays int    `yaml:"retain_days"`
}

// Load reads the optional .env and config.yaml from dir, applies defaults,
// resolves env vars and validates. A missing config.yaml yields defaults.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	if err := godotenv.Load(filepath.Join(dir, DefaultEnvFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	// Set before decoding so that an explicit empty path disables storage.
	cfg := Config{Storage: StorageConfig{Path: DefaultStoragePath}}

	data, err := os.ReadFile(filepath.Join(dir, DefaultConfigFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Dir = dir
	applyDefaults(&cfg)
	resolveEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// FeedsPath is the feed list file, resolved against the config dir.
func (c *Config) FeedsPath() string {
	if filepath.IsAbs(c.Feeds.File) {
		return c.Feeds.File
	}
	return filepath.Join(c.Dir, c.Feeds.File)
}

// RedactPatterns returns the patterns to apply, or nil when redaction is off.
func (c *Config) RedactPatterns() []string {
	if !c.Privacy.Redact.Enabled {
		return nil
	}
	if len(c.Privacy.Redact.Patterns) == 0 {
		return privacy.DefaultPatterns
	}
	return c.Privacy.Redact.Patterns
}

func applyDefaults(cfg *Config) {
	if cfg.Feeds.File == "" {
		cfg.Feeds.File = DefaultFeedsFile
	}
	if cfg.Feeds.MaxItems == 0 {
		cfg.Feeds.MaxItems = DefaultMaxItems
	}
	if cfg.Feeds.Timeout.Duration == 0 {
		cfg.Feeds.Timeout.Duration = DefaultFeedTimeout
	}
	if cfg.Feeds.AcceptLanguage == "" {
		cfg.Feeds.AcceptLanguage = DefaultAcceptLanguage
	}

	if cfg.Summarize.Mode == "" {
		cfg.Summarize.Mode = DefaultSummarizeMode
	}
	if cfg.Summarize.MaxChars == 0 {
		cfg.Summarize.MaxChars = DefaultMaxChars
	}
	llm := &cfg.Summarize.LLM
	if llm.Endpoint == "" {
		llm.Endpoint = DefaultLLMEndpoint
	}
	if llm.Model == "" {
		llm.Model = DefaultLLMModel
	}
	if llm.APIKeyEnv == "" {
		llm.APIKeyEnv = DefaultAPIKeyEnv
	}
	if llm.PromptChars == 0 {
		llm.PromptChars = DefaultPromptChars
	}
	if llm.MaxTokens == 0 {
		llm.MaxTokens = DefaultMaxTokens
	}
	if llm.Temperature == 0 {
		llm.Temperature = DefaultTemperature
	}
	if llm.Timeout.Duration == 0 {
		llm.Timeout.Duration = DefaultLLMTimeout
	}

	tg := &cfg.Telegram
	if tg.TokenEnv == "" {
		tg.TokenEnv = DefaultTokenEnv
	}
	if tg.MaxMessageLength == 0 {
		tg.MaxMessageLength = DefaultMaxMessageLength
	}
	if tg.Cooldown.Duration == 0 {
		tg.Cooldown.Duration = DefaultCooldown
	}
	if tg.PollTimeout.Duration == 0 {
		tg.PollTimeout.Duration = DefaultPollTimeout
	}
	if tg.LatestCount == 0 {
		tg.LatestCount = DefaultLatestCount
	}

	if cfg.Storage.RetainDays == 0 {
		cfg.Storage.RetainDays = DefaultRetainDays
	}
}

func resolveEnv(cfg *Config) {
	if cfg.Summarize.LLM.APIKeyEnv != "" {
		cfg.Summarize.LLM.APIKey = os.Getenv(cfg.Summarize.LLM.APIKeyEnv)
	}
	if cfg.Telegram.TokenEnv != "" {
		cfg.Telegram.Token = os.Getenv(cfg.Telegram.TokenEnv)
	}
}

func validate(cfg *Config) error {
	if cfg.Feeds.MaxItems < 0 {
		return fmt.Errorf("feeds.max_items: must be positive, got %d", cfg.Feeds.MaxItems)
	}
	if cfg.Feeds.MaxConcurrency < 0 {
		return fmt.Errorf("feeds.max_concurrency: must not be negative, got %d", cfg.Feeds.MaxConcurrency)
	}
	if cfg.Feeds.Timeout.Duration < 0 {
		return errors.New("feeds.timeout: must be positive")
	}

	switch cfg.Summarize.Mode {
	case "llm", "fallback":
		// valid
	default:
		return fmt.Errorf("summarize.mode: unknown mode %q (want llm or fallback)", cfg.Summarize.Mode)
	}
	if cfg.Summarize.MaxChars < 0 || cfg.Summarize.LLM.PromptChars < 0 || cfg.Summarize.LLM.MaxTokens < 0 {
		return errors.New("summarize: max_chars, prompt_chars and max_tokens must be positive")
	}

	if n := cfg.Telegram.MaxMessageLength; n < 0 || n > DefaultMaxMessageLength {
		return fmt.Errorf("telegram.max_message_length: must be in 1..%d, got %d", DefaultMaxMessageLength, n)
	}
	if cfg.Telegram.Cooldown.Duration < 0 {
		return errors.New("telegram.cooldown: must not be negative")
	}

	b := cfg.Telegram.Broadcast
	if strings.TrimSpace(b.Cron) != "" {
		if b.ChatID == 0 {
			return errors.New("telegram.broadcast: chat_id is required with cron")
		}
		if _, err := cron.ParseStandard(b.Cron); err != nil {
			return fmt.Errorf("telegram.broadcast.cron: %w", err)
		}
	}

	if _, err := privacy.Compile(cfg.RedactPatterns()); err != nil {
		return fmt.Errorf("privacy.redact: %w", err)
	}

	if cfg.Storage.RetainDays < 0 {
		return fmt.Errorf("storage.retain_days: must not be negative, got %d", cfg.Storage.RetainDays)
	}

	return nil
}
