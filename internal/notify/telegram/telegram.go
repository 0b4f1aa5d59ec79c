// Package telegram sends arbitrage and line-movement alerts to a Telegram
// chat. Grounded on the teacher's internal/calculator/calculator
// telegram_notifier.go (rate limiting, markdown escaping, alert formatting)
// adapted to subscribe to internal/bus events instead of being called
// directly from the calculator.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/oddsentry/oddsentry/internal/bus"
)

// sendInterval is the minimum gap between two messages to the same chat,
// staying well clear of Telegram's ~30/min rate limit.
const sendInterval = 2 * time.Second

// Notifier sends formatted alerts for bus events to a single Telegram chat.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger

	mu       sync.Mutex
	lastSend time.Time
}

// New connects to the Telegram Bot API and verifies the token via GetMe.
func New(token string, chatID int64, log *slog.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot: %w", err)
	}
	bot.Debug = false

	if _, err := bot.GetMe(); err != nil {
		return nil, fmt.Errorf("telegram: verify token: %w", err)
	}

	log.Info("telegram notifier ready", "chat_id", chatID)
	return &Notifier{bot: bot, chatID: chatID, log: log}, nil
}

// Run subscribes to arbitrage and line-movement events on bus b and blocks
// until ctx is cancelled or the subscription closes.
func (n *Notifier) Run(ctx context.Context, b *bus.Bus) {
	sub := b.Subscribe([]string{string(bus.Arbitrage), string(bus.LineMovement)}, 64)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			n.handle(ctx, ev)
		}
	}
}

func (n *Notifier) handle(ctx context.Context, ev bus.Event) {
	var err error
	switch ev.Type {
	case bus.Arbitrage:
		alert, ok := ev.Payload.(bus.ArbitrageAlert)
		if !ok {
			return
		}
		err = n.sendArbitrageAlert(ctx, alert)
	case bus.LineMovement:
		alert, ok := ev.Payload.(bus.LineMovementAlert)
		if !ok {
			return
		}
		err = n.sendLineMovementAlert(ctx, alert)
	}
	if err != nil {
		n.log.Warn("telegram: send failed", "error", err, "event", ev.Type)
	}
}

func (n *Notifier) waitInterval(ctx context.Context) error {
	for {
		elapsed := time.Since(n.lastSend)
		if elapsed >= sendInterval {
			return nil
		}
		wait := sendInterval - elapsed
		if wait > 500*time.Millisecond {
			wait = 500 * time.Millisecond
		}
		n.mu.Unlock()
		select {
		case <-ctx.Done():
			n.mu.Lock()
			return ctx.Err()
		case <-time.After(wait):
			n.mu.Lock()
		}
	}
}

func (n *Notifier) send(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	n.mu.Lock()
	if err := n.waitInterval(ctx); err != nil {
		n.mu.Unlock()
		return err
	}
	n.lastSend = time.Now()
	_, err := n.bot.Send(msg)
	n.mu.Unlock()
	return err
}

func (n *Notifier) sendArbitrageAlert(ctx context.Context, alert bus.ArbitrageAlert) error {
	opp := alert.Opportunity
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚨 *Arbitrage found (%.2f%% profit)*\n\n", opp.ProfitPct))
	b.WriteString(fmt.Sprintf("*%s*\n", escapeMarkdown(alert.MatchName)))
	b.WriteString(fmt.Sprintf("📌 %s", formatLabel(string(opp.BetType))))
	if opp.Margin != 0 {
		b.WriteString(fmt.Sprintf(" (%.2f)", opp.Margin))
	}
	b.WriteString("\n\n")
	for i, leg := range opp.BestOdds {
		stake := 0.0
		if i < len(opp.Stakes) {
			stake = opp.Stakes[i]
		}
		b.WriteString(fmt.Sprintf("💰 *%s*: %.2f @ %s (stake %.1f%%)\n", escapeMarkdown(leg.Outcome), leg.Odd, escapeMarkdown(string(leg.Bookmaker)), stake))
	}
	if !alert.StartTime.IsZero() {
		b.WriteString(fmt.Sprintf("🕐 Kick-off: %s\n", alert.StartTime.Format("2006-01-02 15:04 UTC")))
	}
	if alert.Sport != "" {
		b.WriteString(fmt.Sprintf("🏆 %s\n", alert.Sport))
	}
	return n.send(ctx, b.String())
}

func (n *Notifier) sendLineMovementAlert(ctx context.Context, alert bus.LineMovementAlert) error {
	mv := alert.Movement
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 *Line movement (≥%.1f%%)*\n\n", alert.ThresholdPercent))
	b.WriteString(fmt.Sprintf("*%s*\n", escapeMarkdown(alert.MatchName)))
	b.WriteString(fmt.Sprintf("📌 %s | %s\n\n", formatLabel(string(mv.Key.BetType)), escapeMarkdown(mv.Key.Selection)))
	b.WriteString(fmt.Sprintf("🏠 *%s*\n", escapeMarkdown(string(mv.Key.Bookmaker))))
	b.WriteString(fmt.Sprintf("Was: *%.2f* → now: *%.2f* (%+.1f%%)\n", mv.PreviousOdd, mv.CurrentOdd, mv.ChangePercent))
	if len(alert.History) > 0 {
		b.WriteString("Timeline: ")
		for i, p := range alert.History {
			if i > 0 {
				b.WriteString(" → ")
			}
			mins := int(time.Since(p.RecordedAt).Minutes())
			if mins <= 0 {
				b.WriteString(fmt.Sprintf("*%.2f* (now)", p.Odd))
			} else {
				b.WriteString(fmt.Sprintf("*%.2f* (%d min ago)", p.Odd, mins))
			}
		}
		b.WriteString("\n")
	}
	if alert.Sport != "" {
		b.WriteString(fmt.Sprintf("🏆 %s\n", alert.Sport))
	}
	return n.send(ctx, b.String())
}

func formatLabel(s string) string {
	parts := strings.Split(s, "_")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
		}
	}
	return strings.Join(parts, " ")
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]",
		"(", "\\(", ")", "\\)", "~", "\\~", "`", "\\`",
		">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
		"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}",
		".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}
