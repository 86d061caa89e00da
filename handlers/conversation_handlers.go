package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"moodbot/domain"
	"moodbot/messages"
	"moodbot/sessions"
	textcases "moodbot/text_cases"
)

// HandleText передает обычный текст в активный диалог пользователя.
// Без диалога текст игнорируется
func (h *ConversationHandler) HandleText(ctx context.Context, in Inbound) error {
	if strings.HasPrefix(in.Text, "/") {
		return nil
	}

	unlock := h.lockUser(in.UserID)
	defer unlock()

	session, err := h.Sessions.Get(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			log.Debug().Int64("user_id", in.UserID).Msg("Text without active conversation, ignored")
			return nil
		}
		log.Error().Err(err).Int64("user_id", in.UserID).Msg("Couldn't load session")
		return h.Sender.Send(in.UserID, textcases.SomethingWentWrong, nil)
	}

	if session.Stage == sessions.StageAwaitingProfession {
		return h.handleProfession(ctx, in)
	}
	if idx, ok := session.Stage.QuestionIndex(); ok {
		return h.handleAnswer(ctx, in, session, idx)
	}

	log.Warn().Int64("user_id", in.UserID).Stringer("stage", session.Stage).Msg("Unknown stage, dropping session")
	h.dropSession(ctx, in.UserID)
	return nil
}

func (h *ConversationHandler) handleProfession(ctx context.Context, in Inbound) error {
	if !h.Catalog.IsProfession(in.Text) {
		return h.Sender.Send(in.UserID, textcases.ChooseProfessionAgain, h.professionKeyboard())
	}

	created, err := h.Store.UpsertUser(ctx, in.UserID, in.Text)
	if err != nil {
		log.Error().Err(err).Int64("user_id", in.UserID).Msg("Couldn't save user")
		return h.Sender.Send(in.UserID, textcases.SaveFailed, h.professionKeyboard())
	}
	if created {
		log.Info().Int64("user_id", in.UserID).Str("profession", in.Text).Msg("New user registered")
	}

	// профессия фиксируется при первой регистрации, показываем сохраненную
	profession := in.Text
	if user, err := h.Store.GetUser(ctx, in.UserID); err == nil {
		profession = user.Profession
	}

	h.dropSession(ctx, in.UserID)
	return h.Sender.Send(in.UserID, textcases.Registered(profession), messages.RemoveKeyboard())
}

func (h *ConversationHandler) handleAnswer(ctx context.Context, in Inbound, session sessions.Session, idx int) error {
	quiz, ok := h.Catalog.Quiz(session.QuizType)
	if !ok || idx >= len(quiz.Questions) {
		log.Error().Int64("user_id", in.UserID).Str("quiz_type", string(session.QuizType)).Msg("Session points to unknown quiz")
		h.dropSession(ctx, in.UserID)
		return h.Sender.Send(in.UserID, textcases.SomethingWentWrong, messages.RemoveKeyboard())
	}

	score, ok := h.Catalog.Score(in.Text)
	if !ok {
		return h.Sender.Send(in.UserID, textcases.ChooseAnswer, h.answerKeyboard())
	}

	now := h.now()
	record := domain.ResponseRecord{
		Timestamp:  now,
		UserID:     in.UserID,
		Profession: h.professionOf(ctx, in.UserID),
		QuizType:   session.QuizType,
		Question:   quiz.Questions[idx],
		Answer:     in.Text,
		Score:      score,
	}
	if err := h.Store.AppendResponse(ctx, record); err != nil {
		log.Error().Err(err).Int64("user_id", in.UserID).Int("question", idx).Msg("Couldn't save answer")
		return h.Sender.Send(in.UserID, textcases.SaveFailed, h.answerKeyboard())
	}

	next, ok := sessions.QuestionStage(idx + 1)
	if !ok || idx+1 >= len(quiz.Questions) {
		h.dropSession(ctx, in.UserID)
		log.Info().Int64("user_id", in.UserID).Str("quiz_type", string(session.QuizType)).Msg("Quiz completed")
		return h.Sender.Send(in.UserID, textcases.QuizFinished, messages.RemoveKeyboard())
	}

	session.Stage = next
	session.UpdatedAt = now
	if err := h.Sessions.Put(ctx, in.UserID, session); err != nil {
		log.Error().Err(err).Int64("user_id", in.UserID).Msg("Couldn't advance quiz session")
		return h.Sender.Send(in.UserID, textcases.SomethingWentWrong, nil)
	}
	return h.Sender.Send(in.UserID, textcases.Escape(quiz.Questions[idx+1]), h.answerKeyboard())
}

// Профессия на момент ответа. Если строки пользователя нет, пишем Unknown
func (h *ConversationHandler) professionOf(ctx context.Context, userID int64) string {
	user, err := h.Store.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			log.Warn().Err(err).Int64("user_id", userID).Msg("Couldn't load profession for answer")
		}
		return domain.UnknownProfession
	}
	return user.Profession
}
