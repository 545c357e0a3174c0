// Package notify delivers new-listing batches to Telegram. Delivery is
// best-effort: the orchestrator logs failures and moves on, since the
// listings are already persisted by the time a notification goes out.
package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"marketwatch/internal/domain"
)

const (
	maxItemsPerMessage = 10
	maxTitleRunes      = 50
)

// TelegramNotifier sends one Markdown message per cycle with the new
// listings, capped at the first 10 items.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, listings []domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	msg := tgbotapi.NewMessage(n.chatID, BuildMessage(listings))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	n.logger.Info("telegram notification sent", zap.Int("listings", len(listings)))
	return nil
}

// BuildMessage renders the notification text: a header with the total count
// followed by at most the first 10 listings, each with source, a title
// shortened to 50 runes, price and URL.
func BuildMessage(listings []domain.Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 Found %d new listings!\n\n", len(listings))

	shown := listings
	if len(shown) > maxItemsPerMessage {
		shown = shown[:maxItemsPerMessage]
	}
	for _, l := range shown {
		fmt.Fprintf(&b, "*%s*\n[%s](%s)\nPrice: %s\n\n", l.Source, TruncateTitle(l.Title), l.URL, l.Price)
	}
	return b.String()
}

// TruncateTitle shortens a title to 50 runes with an ellipsis suffix.
func TruncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleRunes {
		return title
	}
	return string(runes[:maxTitleRunes]) + "..."
}
