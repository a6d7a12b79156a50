// Package testutils provides shared test helpers: miniredis-backed clients,
// a scripted dice roller and encounter fixtures.
package testutils

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/endguard/internal/redis"
)

// NewRedis starts a miniredis server and a client pointed at it. Both are
// closed when the test finishes; the server is returned so tests can seed
// keys, inspect TTLs or fast-forward time.
func NewRedis(t testing.TB) (redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := redis.NewClient(mr.Addr(), nil)
	require.NoError(t, err, "failed to create redis client")
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}
