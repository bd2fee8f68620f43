// Package bot serves the Telegram chat front end: it polls for commands,
// runs the feed pipeline on demand and replies in message-sized chunks.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ppiankov/feedbrief/internal/feed"
	"github.com/ppiankov/feedbrief/internal/message"
	"github.com/ppiankov/feedbrief/internal/ratelimit"
	"github.com/ppiankov/feedbrief/internal/summarize"
	"github.com/ppiankov/feedbrief/internal/telegram"
)

const (
	defaultPollTimeout = 30 * time.Second
	minRetryDelay      = time.Second
	maxRetryDelay      = 30 * time.Second
)

// Client is the chat transport.
type Client interface {
	SendMessage(ctx context.Context, chatID int64, text, parseMode string) error
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
}

// Collector runs one fetch over a list of feed URLs.
type Collector interface {
	Collect(ctx context.Context, urls []string) feed.Report
}

// Recorder keeps per-feed outcomes of each collection.
type Recorder interface {
	RecordRun(ctx context.Context, at time.Time, results []feed.FeedResult) error
}

// Options wires a Bot to the pipeline. URLs and Collector are required.
type Options struct {
	URLs       func() ([]string, error) // read on every request
	Collector  Collector
	Summarizer summarize.Summarizer // nil means degraded summaries only
	Limiter    *ratelimit.Limiter   // nil disables rate limiting
	Recorder   Recorder             // optional
	Redact     func(string) string  // applied to text before summarizing

	MaxMessageLength int
	MaxChars         int // analysis text budget
	LatestCount      int // headlines listed by /latest
	PollTimeout      time.Duration
}

// Bot answers chat commands.
type Bot struct {
	client Client
	opts   Options

	// sleep waits between failed polls; tests replace it.
	sleep func(ctx context.Context, d time.Duration)
	now   func() time.Time
}

// New creates a bot over client.
func New(client Client, opts Options) (*Bot, error) {
	if client == nil {
		return nil, errors.New("bot: client is required")
	}
	if opts.URLs == nil || opts.Collector == nil {
		return nil, errors.New("bot: feed list and collector are required")
	}
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = message.DefaultMaxLength
	}
	if opts.LatestCount <= 0 {
		opts.LatestCount = 10
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = defaultPollTimeout
	}
	if opts.Redact == nil {
		opts.Redact = func(s string) string { return s }
	}
	return &Bot{client: client, opts: opts, sleep: sleepCtx, now: time.Now}, nil
}

// Run long-polls for updates until ctx is done. Each message is handled in
// its own goroutine; Run waits for in-flight handlers before returning.
func (b *Bot) Run(ctx context.Context) error {
	var (
		wg     sync.WaitGroup
		offset int64
		delay  = minRetryDelay
	)
	defer wg.Wait()

	slog.Info("bot polling started", "poll_timeout", b.opts.PollTimeout)
	for {
		if ctx.Err() != nil {
			return nil
		}

		updates, err := b.client.GetUpdates(ctx, offset, b.opts.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Warn("get updates failed", "error", err, "retry_in", delay)
			b.sleep(ctx, delay)
			delay = min(delay*2, maxRetryDelay)
			continue
		}
		delay = minRetryDelay

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			wg.Add(1)
			go func(m *telegram.Message) {
				defer wg.Done()
				b.HandleMessage(ctx, m)
			}(u.Message)
		}
	}
}

// reply sends text to chatID in chunks. A chunk whose markup the API
// rejects is resent as plain text.
func (b *Bot) reply(ctx context.Context, chatID int64, text, parseMode string) {
	for _, chunk := range message.Split(text, b.opts.MaxMessageLength) {
		err := b.client.SendMessage(ctx, chatID, chunk, parseMode)
		var apiErr *telegram.APIError
		if err != nil && parseMode != "" && errors.As(err, &apiErr) && apiErr.IsParseError() {
			slog.Debug("markup rejected, resending as plain text", "chat", chatID)
			err = b.client.SendMessage(ctx, chatID, chunk, "")
		}
		if err != nil {
			slog.Warn("send message failed", "chat", chatID, "error", err)
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
