package loothistory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/pkg/clock"
	"github.com/KirkDiggler/endguard/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/endguard/internal/redis"
)

const (
	// Key pattern: loot_history:{world}
	historyKeyPrefix = "loot_history:"
	defaultTTL       = 7 * 24 * time.Hour
	defaultMaxLength = 100
	defaultListLimit = 10

	errEntryNil   = "entry cannot be nil"
	errWorldEmpty = "world cannot be empty"
)

// Config holds the configuration for the Redis repository
type Config struct {
	Client      redisclient.Client
	Clock       clock.Clock
	IDGenerator idgen.Generator

	// TTL is refreshed on every write
	TTL time.Duration

	// MaxLength caps the entries kept per world
	MaxLength int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Client == nil {
		vb.RequiredField("Client")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	return vb.Build()
}

type redisRepository struct {
	client    redisclient.Client
	clock     clock.Clock
	idGen     idgen.Generator
	ttl       time.Duration
	maxLength int
}

// NewRedisRepository creates a new Redis repository for loot history
func NewRedisRepository(cfg *Config) (Repository, error) {
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
	maxLength := cfg.MaxLength
	if maxLength <= 0 {
		maxLength = defaultMaxLength
	}

	return &redisRepository{
		client:    cfg.Client,
		clock:     cfg.Clock,
		idGen:     cfg.IDGenerator,
		ttl:       ttl,
		maxLength: maxLength,
	}, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) Record(ctx context.Context, input *RecordInput) (*RecordOutput, error) {
	if input == nil || input.Entry == nil {
		return nil, errors.InvalidArgument(errEntryNil)
	}
	if input.Entry.World == "" {
		return nil, errors.InvalidArgument(errWorldEmpty)
	}

	entry := *input.Entry
	stamp(&entry, r.idGen, r.clock)

	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal entry")
	}

	key := r.buildKey(entry.World)
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, entryJSON)
	pipe.LTrim(ctx, key, 0, int64(r.maxLength-1))
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to store entry in Redis")
	}

	return &RecordOutput{Entry: &entry}, nil
}

func (r *redisRepository) List(ctx context.Context, input *ListInput) (*ListOutput, error) {
	if input == nil || input.World == "" {
		return nil, errors.InvalidArgument(errWorldEmpty)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	raw, err := r.client.LRange(ctx, r.buildKey(input.World), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list entries from Redis")
	}

	entries := make([]*Entry, 0, len(raw))
	for _, item := range raw {
		var entry Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal entry")
		}
		entries = append(entries, &entry)
	}

	return &ListOutput{Entries: entries}, nil
}

// buildKey creates the Redis key for a world's history
func (r *redisRepository) buildKey(world string) string {
	return fmt.Sprintf("%s%s", historyKeyPrefix, world)
}

func stamp(entry *Entry, idGen idgen.Generator, c clock.Clock) {
	if entry.ID == "" {
		entry.ID = idGen.Generate()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = c.Now()
	}
}
