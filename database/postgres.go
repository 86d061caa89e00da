package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// gormWriter пускает логи gorm через zerolog
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	log.Debug().Msgf(format, args...)
}

func newGormLogger() logger.Interface {
	return logger.New(gormWriter{}, logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// InitPostgreSQL инициализирует подключение к PostgreSQL
func InitPostgreSQL(host, user, password, dbname string, port int, sslmode, timezone string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		host, user, password, dbname, port, sslmode, timezone)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// Проверяем подключение
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB instance: %w", err)
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	log.Info().Str("host", host).Str("db", dbname).Msg("Successfully connected to PostgreSQL")
	return db, nil
}

// ClosePostgreSQL закрывает подключение к PostgreSQL
func ClosePostgreSQL(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate создает таблицы пользователей и ответов
func AutoMigrate(db *gorm.DB) error {
	log.Info().Msg("Starting database migration...")

	err := db.AutoMigrate(
		&UserPostgres{},
		&ResponsePostgres{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Msg("Database migration completed successfully")
	return nil
}
