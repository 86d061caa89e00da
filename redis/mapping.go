package redis

import (
	"fmt"

	"moodbot/domain"
	"moodbot/sessions"
)

func sessionToRedis(s sessions.Session) sessionRedis {
	return sessionRedis{
		Stage:     uint8(s.Stage),
		QuizType:  string(s.QuizType),
		UpdatedAt: s.UpdatedAt,
	}
}

func sessionFromRedis(s sessionRedis) (sessions.Session, error) {
	stage := sessions.Stage(s.Stage)
	if !stage.Valid() {
		return sessions.Session{}, fmt.Errorf("invalid stage %d in stored session", s.Stage)
	}
	return sessions.Session{
		Stage:     stage,
		QuizType:  domain.QuizType(s.QuizType),
		UpdatedAt: s.UpdatedAt,
	}, nil
}
