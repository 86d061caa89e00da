package database

import (
	"time"
)

// UserPostgres - строка таблицы пользователей в Postgres
type UserPostgres struct {
	UserID     int64     `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Profession string    `gorm:"size:255;not null" json:"profession"`
	CreatedAt  time.Time `json:"created_at"`
}

// ResponsePostgres - строка журнала ответов в Postgres
type ResponsePostgres struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
	UserID     int64     `gorm:"not null;index" json:"user_id"`
	Profession string    `gorm:"size:255;not null" json:"profession"`
	QuizType   string    `gorm:"size:16;not null" json:"quiz_type"`
	Question   string    `gorm:"type:text;not null" json:"question"`
	Answer     string    `gorm:"size:255;not null" json:"answer"`
	Score      int       `gorm:"not null" json:"score"`
}

func (UserPostgres) TableName() string {
	return "users"
}

func (ResponsePostgres) TableName() string {
	return "responses"
}
