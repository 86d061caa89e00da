package domain

import (
	"time"
)

// Количество вопросов в каждом опросе. Стадии опроса Q0..Q4 завязаны на это число
const QuestionsPerQuiz = 5

// Профессия, которая пишется в ответ, если пользователя не нашли в таблице
const UnknownProfession = "Unknown"

type QuizType string

const (
	QuizMorning QuizType = "morning"
	QuizDay     QuizType = "day"
	QuizEvening QuizType = "evening"
)

// QuizTypes возвращает все варианты опроса в порядке времени суток
func QuizTypes() []QuizType {
	return []QuizType{QuizMorning, QuizDay, QuizEvening}
}

func (t QuizType) Valid() bool {
	switch t {
	case QuizMorning, QuizDay, QuizEvening:
		return true
	}
	return false
}

type User struct {
	UserID     int64
	Profession string
}

// ResponseRecord - одна строка журнала ответов. Профессия копируется из User в момент записи
type ResponseRecord struct {
	Timestamp  time.Time
	UserID     int64
	Profession string
	QuizType   QuizType
	Question   string
	Answer     string
	Score      int
}
