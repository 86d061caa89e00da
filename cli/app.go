package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"moodbot/database"
	"moodbot/environment"
	redisstore "moodbot/redis"
	"moodbot/sessions"
)

// openStore открывает хранилище, выбранное в STORAGE. Возвращенный close безопасно вызывать всегда
func openStore(env environment.MainEnvironment, pg environment.PostgreSQLEnvironment, loc *time.Location) (database.Store, func(), error) {
	switch env.Storage {
	case environment.StoragePostgres:
		db, err := database.InitPostgreSQL(pg.Host, pg.User, pg.Password, pg.Database, pg.Port, pg.SSLMode, env.Timezone)
		if err != nil {
			return nil, func() {}, err
		}
		closeDB := func() {
			if err := database.ClosePostgreSQL(db); err != nil {
				log.Error().Err(err).Msg("Error closing PostgreSQL connection")
			}
		}
		if err := database.AutoMigrate(db); err != nil {
			closeDB()
			return nil, func() {}, err
		}
		return database.NewPostgresRepository(db), closeDB, nil
	default:
		if err := os.MkdirAll(env.DataDir, 0o755); err != nil {
			return nil, func() {}, fmt.Errorf("create data dir: %w", err)
		}
		log.Info().Str("dir", env.DataDir).Msg("Using CSV storage")
		return database.NewCSVStore(env.DataDir, env.UsersFile, env.DataFile, loc), func() {}, nil
	}
}

// openSessions держит сессии в Redis, если он настроен и доступен, иначе в памяти
func openSessions(env environment.MainEnvironment, rc environment.RedisEnvironment) (sessions.Store, func()) {
	memory := sessions.NewMemoryStore(env.SessionTTL)
	if !rc.Enabled() {
		return memory, func() {}
	}

	client, err := redisstore.InitRedis(rc.Addr, rc.Password, rc.DB)
	if err != nil {
		log.Warn().Err(err).Msg("Redis is unavailable, keeping sessions in memory")
		return memory, func() {}
	}
	store := sessions.NewFallbackStore(redisstore.NewSessionStore(client, env.SessionTTL), memory)
	return store, func() { redisstore.CloseRedis(client) }
}
