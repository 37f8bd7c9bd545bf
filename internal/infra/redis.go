package infra

import (
	"context"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/settings"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

// NewSettings picks the settings backend: a Redis hash when redisURL is set,
// otherwise the app_settings table inside the shop database. The returned
// client is nil for the database backend.
func NewSettings(st *store.Store, redisURL string) (settings.Store, *redis.Client, error) {
	if redisURL == "" {
		kv, err := settings.NewDBStore(st.DB())
		return kv, nil, err
	}
	rdb, err := NewRedis(redisURL)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Msg("settings stored in redis")
	return settings.NewRedisStore(rdb, ""), rdb, nil
}
