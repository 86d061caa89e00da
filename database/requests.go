package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"moodbot/domain"
)

// Получить всех пользователей в порядке регистрации
func (p *PostgresRepository) LoadUsers(ctx context.Context) ([]domain.User, error) {
	var users []UserPostgres
	err := p.db.WithContext(ctx).Order("created_at, user_id").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	usersDomain := make([]domain.User, 0, len(users))
	for _, user := range users {
		usersDomain = append(usersDomain, userFromPostgresToDomain(&user))
	}
	return usersDomain, nil
}

// Сохранить пользователя, если его еще нет. Существующую строку не трогаем
func (p *PostgresRepository) UpsertUser(ctx context.Context, userID int64, profession string) (bool, error) {
	user := UserPostgres{UserID: userID, Profession: profession}
	result := p.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
	if result.Error != nil {
		return false, fmt.Errorf("failed to save user %d: %w", userID, result.Error)
	}
	created := result.RowsAffected > 0
	if created {
		log.Info().Int64("user_id", userID).Str("profession", profession).Msg("New user saved")
	}
	return created, nil
}

// Получить пользователя по Telegram UserID
func (p *PostgresRepository) GetUser(ctx context.Context, userID int64) (domain.User, error) {
	var userPg UserPostgres
	err := p.db.WithContext(ctx).Where("user_id = ?", userID).First(&userPg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return userFromPostgresToDomain(&userPg), nil
}

// Дописать ответ в журнал
func (p *PostgresRepository) AppendResponse(ctx context.Context, record domain.ResponseRecord) error {
	responsePg := responseFromDomainToPostgres(&record)
	if err := p.db.WithContext(ctx).Create(&responsePg).Error; err != nil {
		return fmt.Errorf("failed to save response of user %d: %w", record.UserID, err)
	}
	return nil
}

// Получить все ответы в порядке записи
func (p *PostgresRepository) LoadResponses(ctx context.Context) ([]domain.ResponseRecord, error) {
	var responses []ResponsePostgres
	if err := p.db.WithContext(ctx).Order("id").Find(&responses).Error; err != nil {
		return nil, fmt.Errorf("failed to get responses: %w", err)
	}
	records := make([]domain.ResponseRecord, 0, len(responses))
	for _, r := range responses {
		records = append(records, responseFromPostgresToDomain(&r))
	}
	return records, nil
}
