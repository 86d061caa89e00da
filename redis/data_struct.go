package redis

import "time"

// Сессия в том виде, в котором она лежит в Redis
type sessionRedis struct {
	Stage     uint8     `json:"stage"`
	QuizType  string    `json:"quiz_type"`
	UpdatedAt time.Time `json:"updated_at"`
}
