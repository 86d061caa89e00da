package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v4"

	"moodbot/messages"
)

const updateTimeout = 30 * time.Second

// Register подключает команды и текст к боту
func (h *ConversationHandler) Register(bot *tele.Bot) {
	bot.Handle("/start", h.wrap(h.HandleStart))
	bot.Handle("/quiz", h.wrap(h.HandleQuiz))
	bot.Handle("/cancel", h.wrap(h.HandleCancel))
	bot.Handle(tele.OnText, h.wrap(h.HandleText))
}

// Бот работает только в личных сообщениях
func (h *ConversationHandler) wrap(fn func(context.Context, Inbound) error) tele.HandlerFunc {
	return func(c tele.Context) error {
		chat, sender := c.Chat(), c.Sender()
		if chat == nil || sender == nil || chat.Type != tele.ChatPrivate {
			return nil
		}
		in := Inbound{
			UserID: sender.ID,
			Name:   messages.DisplayName(sender),
			Text:   strings.TrimSpace(c.Text()),
		}
		log.Debug().Int64("user_id", in.UserID).Str("text", in.Text).Msg("Received message")

		ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
		defer cancel()
		return fn(ctx, in)
	}
}
