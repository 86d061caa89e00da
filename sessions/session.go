// Package sessions хранит эфемерное состояние диалога каждого пользователя.
package sessions

import (
	"context"
	"fmt"
	"time"

	"moodbot/domain"
)

// Stage - явное состояние диалога. Нулевое значение не используется,
// отсутствие сессии означает завершенный диалог
type Stage uint8

const (
	StageAwaitingProfession Stage = iota + 1
	StageQ0
	StageQ1
	StageQ2
	StageQ3
	StageQ4
)

var questionStages = [domain.QuestionsPerQuiz]Stage{StageQ0, StageQ1, StageQ2, StageQ3, StageQ4}

// QuestionStage возвращает стадию, на которой задан вопрос с индексом index
func QuestionStage(index int) (Stage, bool) {
	if index < 0 || index >= len(questionStages) {
		return 0, false
	}
	return questionStages[index], true
}

// QuestionIndex возвращает индекс вопроса, который сейчас задан пользователю.
// Стадия и индекс совпадают: на StageQ0 задан вопрос 0
func (s Stage) QuestionIndex() (int, bool) {
	switch s {
	case StageQ0, StageQ1, StageQ2, StageQ3, StageQ4:
		return int(s - StageQ0), true
	}
	return 0, false
}

func (s Stage) Valid() bool {
	return s >= StageAwaitingProfession && s <= StageQ4
}

func (s Stage) String() string {
	switch s {
	case StageAwaitingProfession:
		return "awaiting_profession"
	case StageQ0, StageQ1, StageQ2, StageQ3, StageQ4:
		idx, _ := s.QuestionIndex()
		return fmt.Sprintf("q%d", idx)
	}
	return fmt.Sprintf("stage(%d)", uint8(s))
}

type Session struct {
	Stage Stage
	// Вариант опроса выбирается один раз при старте и не меняется до конца сессии
	QuizType  domain.QuizType
	UpdatedAt time.Time
}

// Store хранит сессии по идентификатору пользователя.
// Get возвращает domain.ErrSessionNotFound, если сессии нет или она протухла
type Store interface {
	Get(ctx context.Context, userID int64) (Session, error)
	Put(ctx context.Context, userID int64, session Session) error
	Delete(ctx context.Context, userID int64) error
}
