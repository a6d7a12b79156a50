// Package sessions persists in-flight encounter sessions across restarts. A
// snapshot is written at shutdown and consumed exactly once at startup.
package sessions

//go:generate mockgen -destination=mock/mock_repository.go -package=sessionsmock github.com/KirkDiggler/endguard/internal/repositories/sessions Repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NoRespawn marks a world without a respawn in flight
const NoRespawn = -1

// WorldSnapshot is the persisted state of one world
type WorldSnapshot struct {
	World                   string    `json:"world"`
	ActiveTemplateID        string    `json:"active_template_id,omitempty"`
	RespawningTemplateID    string    `json:"respawning_template_id,omitempty"`
	RespawnSecondsRemaining int       `json:"respawn_seconds_remaining"`
	LootOverride            string    `json:"loot_override,omitempty"`
	LastDefeatedDragon      uuid.UUID `json:"last_defeated_dragon"`
}

// Snapshot is every world captured at one shutdown
type Snapshot struct {
	ID      uuid.UUID       `json:"id"`
	Worlds  []WorldSnapshot `json:"worlds"`
	SavedAt time.Time       `json:"saved_at"`
}

// SaveInput defines the request for saving a snapshot
type SaveInput struct {
	Worlds []WorldSnapshot
}

// SaveOutput defines the response for saving a snapshot
type SaveOutput struct {
	Snapshot *Snapshot
}

// ConsumeInput defines the request for consuming the snapshot
type ConsumeInput struct{}

// ConsumeOutput defines the response for consuming the snapshot
type ConsumeOutput struct {
	Snapshot *Snapshot
}

// Repository defines the storage interface for session snapshots
type Repository interface {
	// Save replaces any stored snapshot
	Save(ctx context.Context, input *SaveInput) (*SaveOutput, error)

	// Consume returns the stored snapshot and deletes it. NotFound when
	// nothing was saved.
	Consume(ctx context.Context, input *ConsumeInput) (*ConsumeOutput, error)
}
