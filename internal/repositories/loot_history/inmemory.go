package loothistory

import (
	"context"
	"sync"

	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/pkg/clock"
	"github.com/KirkDiggler/endguard/internal/pkg/idgen"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu        sync.RWMutex
	clock     clock.Clock
	idGen     idgen.Generator
	maxLength int
	store     map[string][]*Entry
}

// NewInMemory creates a new in-memory repository keeping at most maxLength
// entries per world
func NewInMemory(c clock.Clock, idGen idgen.Generator, maxLength int) *InMemoryRepository {
	if maxLength <= 0 {
		maxLength = defaultMaxLength
	}
	return &InMemoryRepository{
		clock:     c,
		idGen:     idGen,
		maxLength: maxLength,
		store:     make(map[string][]*Entry),
	}
}

var _ Repository = (*InMemoryRepository)(nil)

// Record stores an entry
func (r *InMemoryRepository) Record(_ context.Context, input *RecordInput) (*RecordOutput, error) {
	if input == nil || input.Entry == nil {
		return nil, errors.InvalidArgument(errEntryNil)
	}
	if input.Entry.World == "" {
		return nil, errors.InvalidArgument(errWorldEmpty)
	}

	entry := *input.Entry
	stamp(&entry, r.idGen, r.clock)

	r.mu.Lock()
	defer r.mu.Unlock()

	list := append([]*Entry{&entry}, r.store[entry.World]...)
	if len(list) > r.maxLength {
		list = list[:r.maxLength]
	}
	r.store[entry.World] = list

	return &RecordOutput{Entry: &entry}, nil
}

// List returns a world's most recent entries
func (r *InMemoryRepository) List(_ context.Context, input *ListInput) (*ListOutput, error) {
	if input == nil || input.World == "" {
		return nil, errors.InvalidArgument(errWorldEmpty)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.store[input.World]
	if len(list) > limit {
		list = list[:limit]
	}
	out := make([]*Entry, len(list))
	for i, e := range list {
		copied := *e
		out[i] = &copied
	}

	return &ListOutput{Entries: out}, nil
}
