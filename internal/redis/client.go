// Package redis builds the go-redis client that backs session snapshots and
// loot history.
package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/endguard/internal/errors"
)

// DefaultPingTimeout bounds the startup reachability check
const DefaultPingTimeout = 5 * time.Second

// Options tunes the connection pool
type Options struct {
	PoolSize    int
	MaxRetries  int
	DialTimeout time.Duration
	UseTLS      bool
}

// Endpoint locates the deployment. A master name selects sentinel failover
// and several addresses without one select cluster mode.
type Endpoint struct {
	Addrs      []string
	MasterName string
}

// Validate checks the endpoint names at least one usable address
func (e Endpoint) Validate() error {
	vb := errors.NewValidationBuilder()
	if len(e.Addrs) == 0 {
		vb.RequiredField("Addrs")
	}
	for i, addr := range e.Addrs {
		if addr == "" {
			vb.Field(fmt.Sprintf("Addrs[%d]", i), "must not be empty")
		}
	}
	return vb.Build()
}

// Dial creates a client for endpoint. No connection is made until the first
// command; use Ping to fail fast.
func Dial(endpoint Endpoint, opts *Options) (Client, error) {
	if err := endpoint.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid redis endpoint")
	}
	if opts == nil {
		opts = &Options{}
	}

	universal := &redis.UniversalOptions{
		Addrs:       endpoint.Addrs,
		MasterName:  endpoint.MasterName,
		PoolSize:    opts.PoolSize,
		MaxRetries:  opts.MaxRetries,
		DialTimeout: opts.DialTimeout,
	}
	if opts.UseTLS {
		universal.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return redis.NewUniversalClient(universal), nil
}

// NewClient dials a single instance at addr
func NewClient(addr string, opts *Options) (Client, error) {
	return Dial(Endpoint{Addrs: []string{addr}}, opts)
}

// Ping reports Unavailable when the server does not answer within timeout
func Ping(ctx context.Context, client Client, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "redis did not answer ping")
	}
	return nil
}
