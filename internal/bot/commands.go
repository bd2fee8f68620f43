package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ppiankov/feedbrief/internal/digest"
	"github.com/ppiankov/feedbrief/internal/feed"
	"github.com/ppiankov/feedbrief/internal/summarize"
	"github.com/ppiankov/feedbrief/internal/telegram"
)

const (
	helpText = `📰 Бот новостной аналитики

/news — анализ последних новостей
/latest — свежие заголовки без анализа
/sources — список источников
/help — эта справка`

	progressText = "🔄 Собираю и анализирую новости..."
	noNewsText   = "❌ Не удалось получить новости. Попробуйте позже."
	cooldownText = "⏳ Подождите %d сек. перед следующим запросом."
)

// HandleMessage dispatches one incoming message. Text that is not a known
// command is ignored.
func (b *Bot) HandleMessage(ctx context.Context, m *telegram.Message) {
	cmd := command(m.Text)
	if cmd == "" {
		return
	}
	chatID := m.Chat.ID
	slog.Debug("command received", "command", cmd, "chat", chatID)

	switch cmd {
	case "start", "help":
		b.reply(ctx, chatID, helpText, "")
	case "news":
		if b.allow(ctx, m) {
			b.reply(ctx, chatID, progressText, "")
			b.reply(ctx, chatID, b.News(ctx), telegram.ParseMarkdown)
		}
	case "latest":
		if b.allow(ctx, m) {
			b.reply(ctx, chatID, b.latest(ctx), "")
		}
	case "sources":
		b.reply(ctx, chatID, b.sources(), "")
	}
}

// News runs the pipeline and returns the summarized digest text.
func (b *Bot) News(ctx context.Context) string {
	items := b.collect(ctx)
	if len(items) == 0 {
		return noNewsText
	}

	text := b.opts.Redact(digest.AnalysisText(items, b.opts.MaxChars))
	summary := summarize.Analyze(ctx, b.opts.Summarizer, text)
	return digest.NewsMessage(summary, len(items), digest.CountSources(items))
}

func (b *Bot) latest(ctx context.Context) string {
	items := b.collect(ctx)
	if len(items) == 0 {
		return noNewsText
	}
	return digest.LatestMessage(items, b.opts.LatestCount)
}

func (b *Bot) sources() string {
	urls, err := b.opts.URLs()
	if err != nil {
		slog.Warn("load feed list failed", "error", err)
		return noNewsText
	}
	if len(urls) == 0 {
		return "Источники не настроены."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Источников: %d\n", len(urls))
	for _, u := range urls {
		host := u
		if parsed, err := url.Parse(u); err == nil && parsed.Host != "" {
			host = parsed.Host
		}
		sb.WriteString("\n• ")
		sb.WriteString(host)
	}
	return sb.String()
}

func (b *Bot) collect(ctx context.Context) []feed.NewsItem {
	urls, err := b.opts.URLs()
	if err != nil {
		slog.Warn("load feed list failed", "error", err)
		return nil
	}
	if len(urls) == 0 {
		return nil
	}

	at := b.now()
	report := b.opts.Collector.Collect(ctx, urls)
	slog.Info("feeds collected", "feeds", len(urls), "failed", report.Failed(), "items", len(report.Items))

	if b.opts.Recorder != nil {
		if err := b.opts.Recorder.RecordRun(ctx, at, report.Feeds); err != nil {
			slog.Warn("record feed health failed", "error", err)
		}
	}
	return report.Items
}

// allow applies the per-user cooldown and tells a denied user how long to wait.
func (b *Bot) allow(ctx context.Context, m *telegram.Message) bool {
	if b.opts.Limiter == nil {
		return true
	}
	id := m.Chat.ID
	if m.From != nil {
		id = m.From.ID
	}
	if b.opts.Limiter.Allow(id) {
		return true
	}
	wait := max(b.opts.Limiter.Remaining(id), 1)
	b.reply(ctx, m.Chat.ID, fmt.Sprintf(cooldownText, wait), "")
	return false
}

// command extracts the command name from "/name@bot args", or "" for
// text that is not a command.
func command(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	name, _, _ := strings.Cut(text[1:], " ")
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name)
}
