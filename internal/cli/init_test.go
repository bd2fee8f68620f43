package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/feedbrief/internal/config"
	"github.com/ppiankov/feedbrief/internal/feed"
)

func TestInitAction(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".feedbrief")
	setConfigDir(t, dir)

	out, err := captureStdout(t, func() error { return initAction(nil, nil) })
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	requireContains(t, out, "Initialized "+dir+" with 3 files.")

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("example config does not load: %v", err)
	}
	if cfg.Telegram.Broadcast.Enabled() {
		t.Error("example config should not enable broadcast")
	}

	urls, err := feed.LoadURLs(cfg.FeedsPath())
	if err != nil || len(urls) == 0 {
		t.Fatalf("example feed list = %v, %v", urls, err)
	}

	info, err := os.Stat(filepath.Join(dir, config.DefaultEnvFile))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf(".env mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestInitAction_Idempotent(t *testing.T) {
	dir := t.TempDir()
	setConfigDir(t, dir)

	custom := []byte("https://mine.example/rss\n")
	if err := os.WriteFile(filepath.Join(dir, config.DefaultFeedsFile), custom, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := captureStdout(t, func() error { return initAction(nil, nil) }); err != nil {
		t.Fatalf("first init: %v", err)
	}
	out, err := captureStdout(t, func() error { return initAction(nil, nil) })
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	requireContains(t, out, "already initialized")

	data, _ := os.ReadFile(filepath.Join(dir, config.DefaultFeedsFile))
	if string(data) != string(custom) {
		t.Errorf("existing feed list overwritten: %q", data)
	}
}
