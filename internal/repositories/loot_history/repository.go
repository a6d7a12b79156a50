// Package loothistory keeps a bounded, expiring record of generated loot per world
package loothistory

import (
	"context"
	"time"

	"github.com/KirkDiggler/endguard/internal/engine"
)

// Entry is one loot generation
type Entry struct {
	ID          string             `json:"id"`
	World       string             `json:"world"`
	TemplateID  string             `json:"template_id,omitempty"`
	TableID     string             `json:"table_id"`
	DragonID    string             `json:"dragon_id,omitempty"`
	Killer      string             `json:"killer,omitempty"`
	ChestPlaced bool               `json:"chest_placed"`
	EggPlaced   bool               `json:"egg_placed"`
	Items       []engine.ItemStack `json:"items,omitempty"`
	Commands    []string           `json:"commands,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// RecordInput contains the entry to record
type RecordInput struct {
	Entry *Entry
}

// RecordOutput contains the stored entry
type RecordOutput struct {
	Entry *Entry
}

// ListInput contains parameters for listing a world's history
type ListInput struct {
	World string
	Limit int
}

// ListOutput contains a world's history, newest first
type ListOutput struct {
	Entries []*Entry
}

// Repository defines the interface for loot history storage operations
type Repository interface {
	// Record stores an entry, assigning its ID and timestamp when unset
	Record(ctx context.Context, input *RecordInput) (*RecordOutput, error)

	// List returns a world's most recent entries
	List(ctx context.Context, input *ListInput) (*ListOutput, error)
}
