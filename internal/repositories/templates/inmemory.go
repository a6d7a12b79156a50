package templates

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/pkg/weighted"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu     sync.RWMutex
	source weighted.Source
	store  map[string]*entities.Template
	pool   *weighted.Pool[string]
}

// NewInMemory creates an empty repository drawing from source. A nil source
// is non-reproducible.
func NewInMemory(source weighted.Source) *InMemoryRepository {
	return &InMemoryRepository{
		source: source,
		store:  make(map[string]*entities.Template),
		pool:   weighted.NewPool[string](source),
	}
}

var _ Repository = (*InMemoryRepository)(nil)

// Get retrieves a template by ID
func (r *InMemoryRepository) Get(_ context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.ID == "" {
		return nil, errors.InvalidArgument("template ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.store[input.ID]
	if !exists {
		return nil, errors.NotFoundf("template %s not found", input.ID)
	}

	return &GetOutput{Template: t}, nil
}

// List returns every template sorted by ID
func (r *InMemoryRepository) List(_ context.Context, _ *ListInput) (*ListOutput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Template, 0, len(r.store))
	for _, t := range r.store {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return &ListOutput{Templates: out}, nil
}

// Choose draws a template weighted by its spawn weight
func (r *InMemoryRepository) Choose(_ context.Context, _ *ChooseInput) (*ChooseOutput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.pool.Next()
	if !ok {
		return nil, errors.NotFound("no templates available")
	}

	return &ChooseOutput{Template: r.store[id]}, nil
}

// Replace swaps the whole set. Templates without an ID or with a duplicate
// ID are skipped; a non-positive weight keeps the template selectable by ID
// but out of the random draw.
func (r *InMemoryRepository) Replace(_ context.Context, input *ReplaceInput) (*ReplaceOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	store := make(map[string]*entities.Template, len(input.Templates))
	pool := weighted.NewPool[string](r.source)
	out := &ReplaceOutput{}

	for _, t := range input.Templates {
		if t == nil || t.ID == "" {
			out.Skipped = append(out.Skipped, "")
			continue
		}
		if _, dup := store[t.ID]; dup {
			slog.Warn("duplicate template id, keeping the first", "template", t.ID)
			out.Skipped = append(out.Skipped, t.ID)
			continue
		}
		store[t.ID] = t
		if !pool.Add(t.SpawnWeight, t.ID) {
			slog.Warn("template excluded from random selection",
				"template", t.ID,
				"weight", t.SpawnWeight)
		}
	}
	out.Count = len(store)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.store = store
	r.pool = pool

	return out, nil
}
