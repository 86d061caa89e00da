package environment

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"moodbot/domain"
)

type MainEnvironment struct {
	Token string
	// Пустой адрес означает long polling
	WebhookURL    string
	WebhookSecret string
	Port          int
	Timezone      string
	QuizSlots     string
	DataDir       string
	UsersFile     string
	DataFile      string
	Storage       string
	SessionTTL    time.Duration
	CatalogFile   string
}

type LogEnvironment struct {
	Level  string
	Format string
}

type PostgreSQLEnvironment struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type RedisEnvironment struct {
	Addr     string
	Password string
	DB       int
}

// Environment - вся конфигурация процесса
type Environment struct {
	Main     MainEnvironment
	Postgres PostgreSQLEnvironment
	Redis    RedisEnvironment
}

const (
	StorageCSV      = "csv"
	StoragePostgres = "postgres"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 8443)
	v.SetDefault("TIMEZONE", "Europe/Moscow")
	v.SetDefault("QUIZ_SLOTS", "10:00,14:00,18:00")
	v.SetDefault("DATA_DIR", ".")
	v.SetDefault("USERS_FILE", "users.csv")
	v.SetDefault("DATA_FILE", "mood_data.csv")
	v.SetDefault("STORAGE", StorageCSV)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "moodbot")
	v.SetDefault("POSTGRES_DB", "moodbot")
	v.SetDefault("POSTGRES_SSLMODE", "disable")

	v.SetDefault("REDIS_DB", 0)
	return v
}

// Load читает конфигурацию для запуска бота. .env подгружается раньше, в cli
func Load() (Environment, error) {
	mainEnv, err := GetMainEnvironment()
	if err != nil {
		return Environment{}, err
	}
	if mainEnv.Token == "" {
		return Environment{}, domain.ErrMissingToken
	}
	return Environment{
		Main:     mainEnv,
		Postgres: GetPostgreSQLEnvironment(),
		Redis:    GetRedisEnvironment(),
	}, nil
}

// GetMainEnvironment не требует токена: служебным командам он не нужен
func GetMainEnvironment() (MainEnvironment, error) {
	v := newViper()

	env := MainEnvironment{
		Token:         firstNonEmpty(v.GetString("BOT_TOKEN"), v.GetString("TELEGRAM_TOKEN")),
		WebhookURL:    firstNonEmpty(v.GetString("WEBHOOK_URL"), v.GetString("RENDER_EXTERNAL_URL")),
		WebhookSecret: v.GetString("WEBHOOK_SECRET"),
		Port:          v.GetInt("PORT"),
		Timezone:      v.GetString("TIMEZONE"),
		QuizSlots:     v.GetString("QUIZ_SLOTS"),
		DataDir:       v.GetString("DATA_DIR"),
		UsersFile:     v.GetString("USERS_FILE"),
		DataFile:      v.GetString("DATA_FILE"),
		Storage:       strings.ToLower(strings.TrimSpace(v.GetString("STORAGE"))),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		CatalogFile:   v.GetString("CATALOG_FILE"),
	}

	if env.Storage != StorageCSV && env.Storage != StoragePostgres {
		return env, fmt.Errorf("unknown STORAGE %q, expected %s or %s", env.Storage, StorageCSV, StoragePostgres)
	}
	if env.SessionTTL <= 0 {
		return env, fmt.Errorf("SESSION_TTL must be positive, got %s", env.SessionTTL)
	}
	return env, nil
}

func GetPostgreSQLEnvironment() PostgreSQLEnvironment {
	v := newViper()
	return PostgreSQLEnvironment{
		Host:     v.GetString("POSTGRES_HOST"),
		Port:     v.GetInt("POSTGRES_PORT"),
		User:     v.GetString("POSTGRES_USER"),
		Password: v.GetString("POSTGRES_PASSWORD"),
		Database: v.GetString("POSTGRES_DB"),
		SSLMode:  v.GetString("POSTGRES_SSLMODE"),
	}
}

func GetLogEnvironment() LogEnvironment {
	v := newViper()
	return LogEnvironment{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}
}

func GetRedisEnvironment() RedisEnvironment {
	v := newViper()
	return RedisEnvironment{
		Addr:     v.GetString("REDIS_ADDR"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}
}

// UseWebhook - true, если задан публичный адрес
func (e MainEnvironment) UseWebhook() bool {
	return e.WebhookURL != ""
}

func (e MainEnvironment) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", e.Timezone, err)
	}
	return loc, nil
}

// Enabled - сессии хранятся в Redis только если задан адрес
func (r RedisEnvironment) Enabled() bool {
	return r.Addr != ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
