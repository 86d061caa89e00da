package database

import (
	"context"

	"moodbot/domain"
)

// Store - табличное хранилище пользователей и ответов.
// Строки пользователей не меняются после создания, ответы только дописываются
type Store interface {
	LoadUsers(ctx context.Context) ([]domain.User, error)
	// UpsertUser ничего не делает, если пользователь уже есть. created == true, если строка добавлена
	UpsertUser(ctx context.Context, userID int64, profession string) (created bool, err error)
	GetUser(ctx context.Context, userID int64) (domain.User, error)
	AppendResponse(ctx context.Context, record domain.ResponseRecord) error
	LoadResponses(ctx context.Context) ([]domain.ResponseRecord, error)
}

var (
	_ Store = (*CSVStore)(nil)
	_ Store = (*PostgresRepository)(nil)
)
