package encounter

import (
	"github.com/KirkDiggler/endguard/internal/entities"
)

// StartRespawnInput defines the request for arming a respawn
type StartRespawnInput struct {
	World        string
	DelaySeconds int

	// TemplateID picks the variant; empty draws one by spawn weight
	TemplateID string

	// LootTableID replaces the template's table for the next death only
	LootTableID string
}

// StartRespawnOutput defines the response for arming a respawn
type StartRespawnOutput struct {
	Started bool
}

// HandleDragonSpawnInput is the host reporting a living dragon
type HandleDragonSpawnInput struct {
	World  string
	Dragon *entities.Dragon
}

// HandleDragonSpawnOutput reports the template the fight runs with
type HandleDragonSpawnOutput struct {
	Template *entities.Template
}

// HandleDragonDeathInput is the host reporting a killed dragon
type HandleDragonDeathInput struct {
	World  string
	Dragon *entities.Dragon
	Killer *entities.Player
}

// HandleDragonDeathOutput defines the response for a dragon death
type HandleDragonDeathOutput struct {
	Sequencing bool
}

// HandlePlayerJoinInput is the host reporting a player entering a world
type HandlePlayerJoinInput struct {
	World  string
	Player *entities.Player
}

// HandlePlayerJoinOutput defines the response for a player join
type HandlePlayerJoinOutput struct {
	RespawnStarted bool
}

// GetWorldStatusInput defines the request for a world's status
type GetWorldStatusInput struct {
	World string
}

// WorldStatus is the observable state of one world
type WorldStatus struct {
	World               string
	State               entities.SessionState
	ActiveTemplate      string
	PreviousTemplate    string
	RespawningTemplate  string
	SecondsUntilRespawn int
	LastDefeatedDragon  string
}

// GetWorldStatusOutput defines the response for a world's status
type GetWorldStatusOutput struct {
	Status *WorldStatus
}

// RestoreOutput reports what a startup restore re-armed
type RestoreOutput struct {
	Worlds   int
	Respawns int
}
