package catalog

import (
	"fmt"
	"slices"

	"moodbot/domain"
)

type Quiz struct {
	Key       domain.QuizType
	Intro     string
	Questions []string
}

// Answer - вариант ответа на шкале и его балл
type Answer struct {
	Label string
	Score int
}

// Catalog хранит все неизменяемые справочники бота: профессии, опросы и шкалу ответов.
// После создания не меняется, поэтому безопасен для чтения из разных горутин
type Catalog struct {
	// Профессии сгруппированы по строкам клавиатуры, группировка нужна только для отображения
	Professions [][]string
	Quizzes     map[domain.QuizType]Quiz
	Answers     []Answer
}

// IsProfession проверяет точное совпадение текста с одной из профессий
func (c *Catalog) IsProfession(text string) bool {
	for _, row := range c.Professions {
		if slices.Contains(row, text) {
			return true
		}
	}
	return false
}

// Score возвращает балл для текста ответа. ok == false, если такого ответа нет на шкале
func (c *Catalog) Score(label string) (int, bool) {
	for _, a := range c.Answers {
		if a.Label == label {
			return a.Score, true
		}
	}
	return 0, false
}

func (c *Catalog) Quiz(t domain.QuizType) (Quiz, bool) {
	q, ok := c.Quizzes[t]
	return q, ok
}

// AnswerLabels возвращает подписи кнопок ответа в порядке шкалы
func (c *Catalog) AnswerLabels() []string {
	labels := make([]string, 0, len(c.Answers))
	for _, a := range c.Answers {
		labels = append(labels, a.Label)
	}
	return labels
}

// Validate проверяет инварианты каталога: три опроса по пять вопросов,
// уникальные профессии и взаимно однозначную шкалу ответов
func (c *Catalog) Validate() error {
	seen := make(map[string]bool)
	count := 0
	for _, row := range c.Professions {
		for _, p := range row {
			if p == "" {
				return fmt.Errorf("%w: empty profession", domain.ErrInvalidCatalog)
			}
			if seen[p] {
				return fmt.Errorf("%w: duplicate profession %q", domain.ErrInvalidCatalog, p)
			}
			seen[p] = true
			count++
		}
	}
	if count == 0 {
		return fmt.Errorf("%w: no professions", domain.ErrInvalidCatalog)
	}

	for _, t := range domain.QuizTypes() {
		q, ok := c.Quizzes[t]
		if !ok {
			return fmt.Errorf("%w: quiz %q is missing", domain.ErrInvalidCatalog, t)
		}
		if len(q.Questions) != domain.QuestionsPerQuiz {
			return fmt.Errorf("%w: quiz %q has %d questions, want %d", domain.ErrInvalidCatalog, t, len(q.Questions), domain.QuestionsPerQuiz)
		}
		if slices.Contains(q.Questions, "") {
			return fmt.Errorf("%w: quiz %q has an empty question", domain.ErrInvalidCatalog, t)
		}
	}
	for t := range c.Quizzes {
		if !t.Valid() {
			return fmt.Errorf("%w: unknown quiz %q", domain.ErrInvalidCatalog, t)
		}
	}

	if len(c.Answers) == 0 {
		return fmt.Errorf("%w: empty answer scale", domain.ErrInvalidCatalog)
	}
	labels := make(map[string]bool)
	scores := make(map[int]bool)
	for _, a := range c.Answers {
		if a.Label == "" || labels[a.Label] {
			return fmt.Errorf("%w: bad answer label %q", domain.ErrInvalidCatalog, a.Label)
		}
		if scores[a.Score] {
			return fmt.Errorf("%w: duplicate score %d", domain.ErrInvalidCatalog, a.Score)
		}
		labels[a.Label] = true
		scores[a.Score] = true
	}
	return nil
}
