// Package notify delivers posting announcements: Telegram for the category
// channels, plus an optional AMQP fan-out for downstream consumers.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jobherald/internal/domain"
)

// TelegramAnnouncer sends one HTML-formatted message per accepted posting to
// the category's chat. No internal retries: a failed send is a delivery error
// scoped to that posting, and retry policy belongs to the scheduler.
type TelegramAnnouncer struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger
}

func NewTelegramAnnouncer(token string, logger *slog.Logger) (*TelegramAnnouncer, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	logger.Info("connected to telegram", "bot", api.Self.UserName)

	return &TelegramAnnouncer{
		api:    api,
		logger: logger,
	}, nil
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// FormatAnnouncement renders the human-readable announcement text.
func FormatAnnouncement(p domain.Posting) string {
	location := p.Location
	if location == "" {
		location = "N/A"
	}

	return fmt.Sprintf(
		"🎉 <a href=\"%s\">%s</a> just posted a new job!\n\n"+
			"💼 <b>Role:</b> <a href=\"%s\">%s</a>\n"+
			"📍 <b>Location:</b> %s",
		p.CompanyURL,
		htmlEscaper.Replace(p.Company),
		p.ApplicationURL,
		htmlEscaper.Replace(p.Title),
		htmlEscaper.Replace(location),
	)
}

// Announce delivers the posting to the given chat. The bot API client carries
// its own HTTP timeout; ctx is accepted for interface symmetry with the other
// collaborators.
func (t *TelegramAnnouncer) Announce(_ context.Context, chatID int64, p domain.Posting) error {
	msg := tgbotapi.NewMessage(chatID, FormatAnnouncement(p))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send to chat %d: %w", chatID, err)
	}

	t.logger.Debug("announced posting",
		"chat_id", chatID,
		"identity", p.Identity,
		"title", p.Title,
	)

	return nil
}

// SendStatus posts a plain status line, used by the heartbeat.
func (t *TelegramAnnouncer) SendStatus(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := t.api.Send(msg)
	return err
}
