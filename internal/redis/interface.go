package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client is what the snapshot and history repositories talk to. Every
// deployment flavor Dial can return satisfies it.
type Client interface {
	redis.UniversalClient
}
