package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ppiankov/feedbrief/internal/telegram"
)

// Broadcaster posts the news digest to one chat on a cron schedule.
type Broadcaster struct {
	cron   *cron.Cron
	bot    *Bot
	chatID int64
}

// NewBroadcaster schedules b.Broadcast for chatID using a standard
// five-field cron spec.
func NewBroadcaster(ctx context.Context, b *Bot, spec string, chatID int64) (*Broadcaster, error) {
	c := cron.New()
	bc := &Broadcaster{cron: c, bot: b, chatID: chatID}

	if _, err := c.AddFunc(spec, func() { bc.bot.Broadcast(ctx, bc.chatID) }); err != nil {
		return nil, fmt.Errorf("schedule broadcast %q: %w", spec, err)
	}
	return bc, nil
}

// Start begins running the schedule in the background.
func (bc *Broadcaster) Start() {
	bc.cron.Start()
	slog.Info("broadcast scheduled", "chat", bc.chatID, "next", bc.cron.Entries()[0].Schedule.Next(time.Now()))
}

// Stop halts the schedule and waits for a running broadcast to finish.
func (bc *Broadcaster) Stop() {
	<-bc.cron.Stop().Done()
}

// Broadcast sends the summarized digest to chatID without rate limiting.
func (b *Bot) Broadcast(ctx context.Context, chatID int64) {
	slog.Info("broadcast started", "chat", chatID)
	b.reply(ctx, chatID, b.News(ctx), telegram.ParseMarkdown)
}
