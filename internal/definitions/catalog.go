// Package definitions loads encounter templates, loot tables and particle
// shapes from YAML and keeps the live catalog the orchestrators read.
package definitions

import (
	"sort"
	"sync"

	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/loot"
	"github.com/KirkDiggler/endguard/internal/particles"
)

// Catalog is one consistent set of loaded definitions
type Catalog struct {
	Templates  []*entities.Template
	LootTables map[string]*loot.Table
	Shapes     map[string]*particles.Shape
}

// NewCatalog returns an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		LootTables: make(map[string]*loot.Table),
		Shapes:     make(map[string]*particles.Shape),
	}
}

// LootTable returns the table with id
func (c *Catalog) LootTable(id string) (*loot.Table, bool) {
	t, ok := c.LootTables[id]
	return t, ok
}

// Shape returns the shape with id
func (c *Catalog) Shape(id string) (*particles.Shape, bool) {
	s, ok := c.Shapes[id]
	return s, ok
}

// LootTableIDs lists the table ids in sorted order
func (c *Catalog) LootTableIDs() []string {
	ids := make([]string, 0, len(c.LootTables))
	for id := range c.LootTables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Store holds the live catalog. Swapping never disturbs values already
// handed out.
type Store struct {
	mu      sync.RWMutex
	current *Catalog
}

// NewStore creates a store holding catalog, or an empty one when nil
func NewStore(catalog *Catalog) *Store {
	if catalog == nil {
		catalog = NewCatalog()
	}
	return &Store{current: catalog}
}

// Swap replaces the live catalog
func (s *Store) Swap(catalog *Catalog) {
	if catalog == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = catalog
}

// Current returns the live catalog
func (s *Store) Current() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// LootTable returns the table with id from the live catalog
func (s *Store) LootTable(id string) (*loot.Table, bool) {
	return s.Current().LootTable(id)
}

// Shape returns the shape with id from the live catalog
func (s *Store) Shape(id string) (*particles.Shape, bool) {
	return s.Current().Shape(id)
}
