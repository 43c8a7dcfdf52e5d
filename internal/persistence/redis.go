package persistence

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/helpdesk-kit/helpdesk-service/internal/config"
)

const unreadCountTTL = 5 * time.Minute

// Redis wraps the go-redis client and the per-user unread-count cache built
// on top of it. The cache backs the frontend's 30-second unread poll so it
// does not hit Postgres every tick.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

func unreadKey(userID string) string {
	return "notif:unread:" + userID
}

// GetUnreadCount returns the cached unread count for a user. The second
// return value is false on cache miss or when Redis is unavailable.
func (r *Redis) GetUnreadCount(ctx context.Context, userID string) (int, bool) {
	if r == nil || r.Client == nil {
		return 0, false
	}
	val, err := r.Client.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return count, true
}

// SetUnreadCount caches the unread count for a user.
func (r *Redis) SetUnreadCount(ctx context.Context, userID string, count int) {
	if r == nil || r.Client == nil {
		return
	}
	_ = r.Client.Set(ctx, unreadKey(userID), strconv.Itoa(count), unreadCountTTL).Err()
}

// InvalidateUnreadCount drops the cached count after any read-state mutation
// or new notification.
func (r *Redis) InvalidateUnreadCount(ctx context.Context, userID string) {
	if r == nil || r.Client == nil {
		return
	}
	_ = r.Client.Del(ctx, unreadKey(userID)).Err()
}
