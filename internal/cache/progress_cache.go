package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mentorbridge/mentorbridge-backend/internal/logger"
	"github.com/mentorbridge/mentorbridge-backend/internal/utils"
)

// ProgressCache drops cached progress reads after a mutating pass so the
// next read observes the store, not a stale snapshot. The store contract is
// "writes are immediately visible to subsequent reads"; the cache must not
// weaken it.
type ProgressCache struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewProgressCache(log *logger.Logger) (*ProgressCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &ProgressCache{
		log: log.With("service", "ProgressCache"),
		rdb: rdb,
	}, nil
}

func progressKey(userID, objectiveItemID uuid.UUID) string {
	return fmt.Sprintf("progress:%s:%s", userID, objectiveItemID)
}

func (c *ProgressCache) Invalidate(ctx context.Context, userID uuid.UUID, objectiveItemIDs ...uuid.UUID) error {
	if len(objectiveItemIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(objectiveItemIDs))
	for _, id := range objectiveItemIDs {
		keys = append(keys, progressKey(userID, id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("progress cache invalidation failed", "error", err, "user_id", userID)
		return err
	}
	return nil
}

func (c *ProgressCache) Get(ctx context.Context, userID, objectiveItemID uuid.UUID) (string, bool) {
	val, err := c.rdb.Get(ctx, progressKey(userID, objectiveItemID)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *ProgressCache) Set(ctx context.Context, userID, objectiveItemID uuid.UUID, payload string, ttl time.Duration) {
	if err := c.rdb.Set(ctx, progressKey(userID, objectiveItemID), payload, ttl).Err(); err != nil {
		c.log.Warn("progress cache set failed", "error", err, "user_id", userID)
	}
}

func (c *ProgressCache) Close() error {
	return c.rdb.Close()
}
