package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bentswoodworking/bents-api/internal/models"
	"github.com/bentswoodworking/bents-api/internal/utils"
)

const sessionKeyPrefix = "bents:sessions:"

func NewRedisClient(ctx context.Context, cfg utils.RedisConfig) (*redis.Client, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("redis: address is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return client, nil
}

// CachedSessions is a read-through cache in front of another SessionStore.
// Saves overwrite the cached record; fills after a miss only land when the
// key is still absent, so a slow read cannot replace a newer save.
// Cache failures are logged and never fail the request.
type CachedSessions struct {
	next   SessionStore
	client *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewCachedSessions(next SessionStore, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedSessions {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = utils.Logger()
	}
	return &CachedSessions{next: next, client: client, ttl: ttl, logger: logger.Sugar()}
}

func (c *CachedSessions) LoadSessions(ctx context.Context, userID string) (*models.SessionRecord, error) {
	key := sessionKeyPrefix + userID

	cached, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var record models.SessionRecord
		if jsonErr := json.Unmarshal(cached, &record); jsonErr == nil {
			return &record, nil
		}
		c.logger.Warnw("discarding malformed cached sessions", "user_id", userID)
		if delErr := c.client.Del(ctx, key).Err(); delErr != nil {
			c.logger.Warnw("session cache invalidation failed", "user_id", userID, "error", delErr)
		}
	case !errors.Is(err, redis.Nil):
		c.logger.Warnw("session cache read failed", "user_id", userID, "error", err)
	}

	record, err := c.next.LoadSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.fill(ctx, key, record)
	return record, nil
}

func (c *CachedSessions) SaveSessions(ctx context.Context, userID string, sessions []models.Session) (*models.SessionRecord, error) {
	record, err := c.next.SaveSessions(ctx, userID, sessions)
	if err != nil {
		return nil, err
	}

	key := sessionKeyPrefix + userID
	payload, err := json.Marshal(record)
	if err == nil {
		err = c.client.Set(ctx, key, payload, c.ttl).Err()
	}
	if err != nil {
		c.logger.Warnw("session cache write failed", "user_id", userID, "error", err)
		// A stale entry must not outlive a failed overwrite.
		if delErr := c.client.Del(ctx, key).Err(); delErr != nil {
			c.logger.Warnw("session cache invalidation failed", "user_id", userID, "error", delErr)
		}
	}
	return record, nil
}

func (c *CachedSessions) fill(ctx context.Context, key string, record *models.SessionRecord) {
	payload, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := c.client.SetNX(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warnw("session cache fill failed", "key", key, "error", err)
	}
}
