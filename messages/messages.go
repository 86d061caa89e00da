package messages

import (
	"fmt"
	"html"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Keyboard - подсказка интерфейсу. Ответы все равно проверяются по тексту
type Keyboard struct {
	Rows [][]string
	// Убрать клавиатуру, оставшуюся от прошлого вопроса
	Remove bool
}

func Buttons(rows [][]string) *Keyboard {
	return &Keyboard{Rows: rows}
}

// Single раскладывает варианты в один ряд
func Single(labels []string) *Keyboard {
	return &Keyboard{Rows: [][]string{labels}}
}

func RemoveKeyboard() *Keyboard {
	return &Keyboard{Remove: true}
}

// Sender отправляет сообщение пользователю в личный чат
type Sender interface {
	Send(userID int64, text string, kb *Keyboard) error
}

type TeleSender struct {
	bot *tele.Bot
}

func NewTeleSender(bot *tele.Bot) *TeleSender {
	return &TeleSender{bot: bot}
}

func (s *TeleSender) Send(userID int64, text string, kb *Keyboard) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML}
	if markup := replyMarkup(kb); markup != nil {
		opts.ReplyMarkup = markup
	}
	if _, err := s.bot.Send(tele.ChatID(userID), text, opts); err != nil {
		return fmt.Errorf("send message to %d: %w", userID, err)
	}
	return nil
}

func replyMarkup(kb *Keyboard) *tele.ReplyMarkup {
	if kb == nil {
		return nil
	}
	if kb.Remove {
		return &tele.ReplyMarkup{RemoveKeyboard: true}
	}
	menu := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	rows := make([]tele.Row, 0, len(kb.Rows))
	for _, labels := range kb.Rows {
		btns := make([]tele.Btn, 0, len(labels))
		for _, label := range labels {
			btns = append(btns, menu.Text(label))
		}
		rows = append(rows, menu.Row(btns...))
	}
	menu.Reply(rows...)
	return menu
}

// Mention - HTML ссылка на пользователя
func Mention(userID int64, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "друг"
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, userID, html.EscapeString(name))
}

// DisplayName собирает имя так же, как его показывает Telegram
func DisplayName(u *tele.User) string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return name
}
