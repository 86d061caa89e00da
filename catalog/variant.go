package catalog

import (
	"time"

	"moodbot/domain"
)

// VariantAt выбирает вариант опроса по локальному часу:
// [6,12) - утренний, [12,17) - дневной, остальное - вечерний.
// Перед вызовом время нужно перевести в часовой пояс бота
func VariantAt(now time.Time) domain.QuizType {
	hour := now.Hour()
	switch {
	case hour >= 6 && hour < 12:
		return domain.QuizMorning
	case hour >= 12 && hour < 17:
		return domain.QuizDay
	default:
		return domain.QuizEvening
	}
}
