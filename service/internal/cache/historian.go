// internal/cache/historian.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultHistorianKey is the Redis list that receives action records.
const DefaultHistorianKey = "declare:actions"

// GameActionRecord is one accepted intent or lifecycle step, in the order the
// game applied it.
type GameActionRecord struct {
	GameID        uuid.UUID              `json:"gameId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorUserID   uuid.UUID              `json:"actorUserId"` // uuid.Nil for game-driven steps
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload"`
	Timestamp     int64                  `json:"timestamp"` // unix milliseconds
}

// RedisHistorian appends action records to a Redis list for an external
// history consumer.
type RedisHistorian struct {
	rdb *redis.Client
	key string
}

// NewRedisHistorian connects to the Redis server at url and verifies it answers.
func NewRedisHistorian(ctx context.Context, url, key string) (*RedisHistorian, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewHistorianFromClient(rdb, key), nil
}

// NewHistorianFromClient wraps an existing client. An empty key selects DefaultHistorianKey.
func NewHistorianFromClient(rdb *redis.Client, key string) *RedisHistorian {
	if key == "" {
		key = DefaultHistorianKey
	}
	return &RedisHistorian{rdb: rdb, key: key}
}

// Key returns the list the historian writes to.
func (h *RedisHistorian) Key() string { return h.key }

// PublishGameAction pushes rec onto the history list.
func (h *RedisHistorian) PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	if err := h.rdb.RPush(ctx, h.key, data).Err(); err != nil {
		return fmt.Errorf("push action %d: %w", rec.ActionIndex, err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (h *RedisHistorian) Close() error {
	return h.rdb.Close()
}
