package commands

import (
	"context"
	"fmt"

	"github.com/arturoeanton/redcross-volunteers/internal/adapter/store"
	"github.com/arturoeanton/redcross-volunteers/pkg/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AppContext holds the dependencies shared across all commands.
type AppContext struct {
	Cfg    *config.Config
	Logger *zap.Logger
	Ctx    context.Context
}

func (app *AppContext) openStore(ctx context.Context) (*store.PostgresStore, error) {
	pg, err := store.NewPostgresStore(ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pg, nil
}

// openRedis returns nil when no address is configured.
func (app *AppContext) openRedis(ctx context.Context) (*redis.Client, error) {
	if app.Cfg.RedisAddr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     app.Cfg.RedisAddr,
		Password: app.Cfg.RedisPassword,
		DB:       app.Cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
