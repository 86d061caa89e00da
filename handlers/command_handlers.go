package handlers

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"moodbot/catalog"
	"moodbot/domain"
	"moodbot/messages"
	"moodbot/sessions"
	textcases "moodbot/text_cases"
)

// HandleStart начинает регистрацию или здоровается с уже известным пользователем
func (h *ConversationHandler) HandleStart(ctx context.Context, in Inbound) error {
	unlock := h.lockUser(in.UserID)
	defer unlock()

	mention := messages.Mention(in.UserID, in.Name)
	user, err := h.Store.GetUser(ctx, in.UserID)
	switch {
	case err == nil:
		h.dropSession(ctx, in.UserID)
		return h.Sender.Send(in.UserID, textcases.WelcomeBack(mention, user.Profession), messages.RemoveKeyboard())
	case !errors.Is(err, domain.ErrUserNotFound):
		log.Error().Err(err).Int64("user_id", in.UserID).Msg("Couldn't load user on /start")
		return h.Sender.Send(in.UserID, textcases.SomethingWentWrong, nil)
	}

	session := sessions.Session{Stage: sessions.StageAwaitingProfession, UpdatedAt: h.now()}
	if err := h.Sessions.Put(ctx, in.UserID, session); err != nil {
		log.Error().Err(err).Int64("user_id", in.UserID).Msg("Couldn't save registration session")
		return h.Sender.Send(in.UserID, textcases.SomethingWentWrong, nil)
	}
	log.Info().Int64("user_id", in.UserID).Msg("Registration started")
	return h.Sender.Send(in.UserID, textcases.Greeting(mention), h.professionKeyboard())
}

// HandleQuiz запускает опрос. Повторный /quiz во время опроса начинает его заново
func (h *ConversationHandler) HandleQuiz(ctx context.Context, in Inbound) error {
	unlock := h.lockUser(in.UserID)
	defer unlock()

	if _, err := h.Store.GetUser(ctx, in.UserID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return h.Sender.Send(in.UserID, textcases.RegisterFirst, messages.RemoveKeyboard())
		}
		log.Error().Err(err).Int64("user_id", in.UserID).Msg("Couldn't load user on /quiz")
		return h.Sender.Send(in.UserID, textcases.SomethingWentWrong, nil)
	}

	now := h.now()
	quizType := catalog.VariantAt(now)
	quiz, ok := h.Catalog.Quiz(quizType)
	if !ok {
		log.Error().Str("quiz_type", string(quizType)).Msg("Quiz is missing in catalog")
		return h.Sender.Send(in.UserID, textcases.SomethingWentWrong, nil)
	}

	session := sessions.Session{Stage: sessions.StageQ0, QuizType: quizType, UpdatedAt: now}
	if err := h.Sessions.Put(ctx, in.UserID, session); err != nil {
		log.Error().Err(err).Int64("user_id", in.UserID).Msg("Couldn't save quiz session")
		return h.Sender.Send(in.UserID, textcases.SomethingWentWrong, nil)
	}
	log.Info().Int64("user_id", in.UserID).Str("quiz_type", string(quizType)).Msg("Quiz started")

	if err := h.Sender.Send(in.UserID, textcases.Escape(quiz.Intro), messages.RemoveKeyboard()); err != nil {
		return err
	}
	return h.Sender.Send(in.UserID, textcases.Escape(quiz.Questions[0]), h.answerKeyboard())
}

// HandleCancel завершает любой диалог. Без активного диалога отвечает так же
func (h *ConversationHandler) HandleCancel(ctx context.Context, in Inbound) error {
	unlock := h.lockUser(in.UserID)
	defer unlock()

	h.dropSession(ctx, in.UserID)
	return h.Sender.Send(in.UserID, textcases.Cancelled, messages.RemoveKeyboard())
}

func (h *ConversationHandler) dropSession(ctx context.Context, userID int64) {
	if err := h.Sessions.Delete(ctx, userID); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Couldn't delete session")
	}
}
