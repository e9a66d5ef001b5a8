package store

import (
	"context"
	"errors"
	"time"

	"github.com/arturoeanton/redcross-volunteers/internal/domain"
	"github.com/arturoeanton/redcross-volunteers/internal/port"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const blocklistKeyPrefix = "blocklist:ip:"

// CachedBlocklist is a read-through Redis cache in front of a BlocklistStore.
// A nil client disables caching. Redis failures fall back to the store.
type CachedBlocklist struct {
	store  port.BlocklistStore
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedBlocklist wraps store. ttl <= 0 defaults to one minute.
func NewCachedBlocklist(store port.BlocklistStore, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedBlocklist {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedBlocklist{store: store, redis: client, ttl: ttl, logger: logger.Named("blocklist_cache")}
}

func blocklistKey(ip string) string {
	return blocklistKeyPrefix + ip
}

// IsBlocked checks the cache first, then the store.
func (c *CachedBlocklist) IsBlocked(ctx context.Context, ip string) (bool, error) {
	if c.redis == nil {
		return c.store.IsBlocked(ctx, ip)
	}

	value, err := c.redis.Get(ctx, blocklistKey(ip)).Result()
	switch {
	case err == nil:
		return value == "1", nil
	case !errors.Is(err, redis.Nil):
		c.logger.Debug("redis get failed", zap.String("ip", ip), zap.Error(err))
	}

	blocked, err := c.store.IsBlocked(ctx, ip)
	if err != nil {
		return false, err
	}

	value = "0"
	if blocked {
		value = "1"
	}
	if err := c.redis.Set(ctx, blocklistKey(ip), value, c.ttl).Err(); err != nil {
		c.logger.Debug("redis set failed", zap.String("ip", ip), zap.Error(err))
	}
	return blocked, nil
}

// BlockIP writes through to the store and invalidates the cached answer.
func (c *CachedBlocklist) BlockIP(ctx context.Context, ip, reason string) (*domain.BlockedIP, error) {
	b, err := c.store.BlockIP(ctx, ip, reason)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, ip)
	return b, nil
}

// UnblockIP writes through to the store and invalidates the cached answer.
func (c *CachedBlocklist) UnblockIP(ctx context.Context, ip string) error {
	if err := c.store.UnblockIP(ctx, ip); err != nil {
		return err
	}
	c.invalidate(ctx, ip)
	return nil
}

// ListBlockedIPs always reads from the store.
func (c *CachedBlocklist) ListBlockedIPs(ctx context.Context) ([]domain.BlockedIP, error) {
	return c.store.ListBlockedIPs(ctx)
}

func (c *CachedBlocklist) invalidate(ctx context.Context, ip string) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, blocklistKey(ip)).Err(); err != nil {
		c.logger.Warn("failed to invalidate blocklist cache", zap.String("ip", ip), zap.Error(err))
	}
}
