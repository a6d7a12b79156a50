// Package idgen mints identifiers for dragons and loot history entries
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator mints identifiers
type Generator interface {
	Generate() string
}

// Func adapts a plain function to Generator
type Func func() string

func (f Func) Generate() string { return f() }

// NewUUID returns random identifiers of the form prefix_<uuid>, or a bare
// uuid when prefix is empty. Dragon ids come from here so they survive a
// snapshot and restore unchanged.
func NewUUID(prefix string) Generator {
	return Func(func() string {
		return join(prefix, uuid.NewString())
	})
}

// Sequential hands out prefix_1, prefix_2 and so on. Tests use it for
// predictable ids; it is safe for concurrent use.
type Sequential struct {
	prefix string
	last   atomic.Uint64
}

func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

func (s *Sequential) Generate() string {
	return join(s.prefix, strconv.FormatUint(s.last.Add(1), 10))
}

func join(prefix, id string) string {
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
