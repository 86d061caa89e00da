package handlers

import (
	"sync"
	"time"

	"moodbot/catalog"
	"moodbot/database"
	"moodbot/messages"
	"moodbot/sessions"
)

// ConversationHandler ведет диалоги регистрации и опроса.
// Апдейты одного пользователя обрабатываются строго по очереди
type ConversationHandler struct {
	Store    database.Store
	Sessions sessions.Store
	Catalog  *catalog.Catalog
	Sender   messages.Sender
	// Часовой пояс, по которому выбирается вариант опроса
	Location *time.Location
	Now      func() time.Time

	locks [lockStripes]sync.Mutex
}

// Число замков фиксировано: пользователь всегда попадает в один и тот же
const lockStripes = 64

// Inbound - входящее сообщение из личного чата
type Inbound struct {
	UserID int64
	Name   string
	Text   string
}

func NewConversationHandler(store database.Store, sess sessions.Store, cat *catalog.Catalog, sender messages.Sender, loc *time.Location) *ConversationHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ConversationHandler{
		Store:    store,
		Sessions: sess,
		Catalog:  cat,
		Sender:   sender,
		Location: loc,
		Now:      time.Now,
	}
}

func (h *ConversationHandler) userLock(userID int64) *sync.Mutex {
	return &h.locks[uint64(userID)%lockStripes]
}

func (h *ConversationHandler) lockUser(userID int64) func() {
	mu := h.userLock(userID)
	mu.Lock()
	return mu.Unlock
}

func (h *ConversationHandler) now() time.Time {
	if h.Now == nil {
		return time.Now().In(h.Location)
	}
	return h.Now().In(h.Location)
}

func (h *ConversationHandler) professionKeyboard() *messages.Keyboard {
	return messages.Buttons(h.Catalog.Professions)
}

func (h *ConversationHandler) answerKeyboard() *messages.Keyboard {
	return messages.Single(h.Catalog.AnswerLabels())
}
