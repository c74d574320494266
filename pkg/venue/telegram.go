package venue

import (
	"fmt"

	"github.com/korjavin/donutbot/pkg/logger"
	"github.com/korjavin/donutbot/pkg/messages"
	"github.com/korjavin/donutbot/pkg/models"
	"github.com/korjavin/donutbot/pkg/telegram"
)

// TelegramVenue materializes a subgroup by announcing it in the chat with
// member mentions and an icebreaker. Telegram bots cannot open group DMs,
// so the announcement is the venue.
type TelegramVenue struct {
	bot      *telegram.Bot
	messages *messages.Service
	logger   *logger.Logger
}

// NewTelegram creates a Telegram-backed materializer.
func NewTelegram(bot *telegram.Bot, msgService *messages.Service) *TelegramVenue {
	return &TelegramVenue{
		bot:      bot,
		messages: msgService,
		logger:   logger.New(""),
	}
}

// Materialize posts the announcement message for one subgroup.
func (v *TelegramVenue) Materialize(chatID int64, group models.Group) error {
	text := v.messages.GroupAnnouncement(group)
	if _, err := v.bot.SendMessage(chatID, text); err != nil {
		return fmt.Errorf("failed to announce group: %w", err)
	}
	return nil
}
