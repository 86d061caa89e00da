package activities

import (
	"context"

	"github.com/rs/zerolog/log"

	"moodbot/domain"
	"moodbot/messages"
	textcases "moodbot/text_cases"
)

// UserLister - часть хранилища, нужная рассылке. Рассылка ничего не пишет
type UserLister interface {
	LoadUsers(ctx context.Context) ([]domain.User, error)
}

// Report - итог одной рассылки
type Report struct {
	Total  int
	Sent   int
	Failed int
}

type Notifier struct {
	users  UserLister
	sender messages.Sender
}

func NewNotifier(users UserLister, sender messages.Sender) *Notifier {
	return &Notifier{users: users, sender: sender}
}

// Broadcast напоминает всем зарегистрированным пройти опрос.
// Ошибка отправки одному пользователю не останавливает рассылку остальным
func (n *Notifier) Broadcast(ctx context.Context) Report {
	users, err := n.users.LoadUsers(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Couldn't load users for quiz broadcast")
		return Report{}
	}

	report := Report{Total: len(users)}
	log.Info().Int("users", report.Total).Msg("Scheduled quiz broadcast")
	for _, user := range users {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Int("sent", report.Sent).Msg("Quiz broadcast interrupted")
			break
		}
		if err := n.sender.Send(user.UserID, textcases.QuizNotice, nil); err != nil {
			report.Failed++
			log.Error().Err(err).Int64("user_id", user.UserID).Msg("Couldn't send quiz notice")
			continue
		}
		report.Sent++
	}
	log.Info().Int("sent", report.Sent).Int("failed", report.Failed).Msg("Quiz broadcast finished")
	return report
}
