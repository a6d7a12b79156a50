package sessions

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/endguard/internal/redis"
)

const (
	snapshotKey = "endguard:session_snapshot"
	defaultTTL  = 24 * time.Hour
)

// RedisConfig holds the configuration for the Redis repository
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock

	// TTL bounds how long an unconsumed snapshot survives
	TTL time.Duration
}

// Validate ensures all required dependencies are provided
func (c *RedisConfig) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	if c.Clock == nil {
		return errors.InvalidArgument("clock is required")
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
	ttl    time.Duration
}

// NewRedisRepository creates a snapshot repository backed by Redis
func NewRedisRepository(cfg *RedisConfig) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}

	return &redisRepository{client: cfg.Client, clock: cfg.Clock, ttl: ttl}, nil
}

func (r *redisRepository) Save(ctx context.Context, input *SaveInput) (*SaveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	snapshot := newSnapshot(input, r.clock)
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal snapshot")
	}

	if err := r.client.Set(ctx, snapshotKey, data, r.ttl).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to store snapshot in Redis")
	}

	return &SaveOutput{Snapshot: snapshot}, nil
}

func (r *redisRepository) Consume(ctx context.Context, _ *ConsumeInput) (*ConsumeOutput, error) {
	var get *redis.StringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.Get(ctx, snapshotKey)
		pipe.Del(ctx, snapshotKey)
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, errors.Wrap(err, "failed to consume snapshot from Redis")
	}

	data, err := get.Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFound("no session snapshot")
		}
		return nil, errors.Wrap(err, "failed to read snapshot from Redis")
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, errors.ParseError(snapshotKey, "", err)
	}

	return &ConsumeOutput{Snapshot: &snapshot}, nil
}
