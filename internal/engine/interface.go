// Package engine defines the host game engine surface the encounter core
// drives: the boss fight, crystals, blocks, effects, chat and players.
package engine

import (
	"github.com/KirkDiggler/endguard/internal/entities"
)

// Host is the full collaborator surface consumed by the orchestrators.
// Every call happens on the tick loop goroutine.
type Host interface {
	Battles
	Crystals
	Blocks
	Effects
	Messenger
	Players
}

// Battles exposes the boss fight of each world
type Battles interface {
	// Worlds lists the worlds that have a portal
	Worlds() []string

	// PortalLocation returns the center of the world's portal
	PortalLocation(world string) (entities.Position, bool)

	// FindDragon returns the living dragon of world, if any
	FindDragon(world string) (*entities.Dragon, bool)

	// PreviouslyKilled reports whether the world's dragon was defeated at least once
	PreviouslyKilled(world string) bool

	// SetPresentation applies the title and bar style of the running fight
	SetPresentation(world string, presentation Presentation)

	// RespawnDragon signals the host to resurrect the dragon
	RespawnDragon(world string) error

	// ResetBattle clears the host's respawn bookkeeping after a failed resurrection
	ResetBattle(world string)

	// DeathAnimationTicks is the elapsed time of the host's death animation
	DeathAnimationTicks(world string) int
}

// Crystals manages the summoning crystals around the portal
type Crystals interface {
	LoadChunk(world string, pos entities.Position)
	SpawnCrystal(world string, pos entities.Position, invulnerable bool) error
	RemoveCrystal(world string, pos entities.Position) bool
	HasCrystal(world string, pos entities.Position) bool
}

// Blocks places reward blocks and items
type Blocks interface {
	ClearBlock(world string, pos entities.Position)
	PlaceContainer(world string, pos entities.Position, name string) (Container, error)
	PlaceEgg(world string, pos entities.Position) error
	DropItem(world string, pos entities.Position, item ItemStack)
}

// Container is a placed chest
type Container interface {
	Size() int
	IsEmpty(slot int) bool
	SetItem(slot int, item ItemStack) error
}

// Effects emits visual effects
type Effects interface {
	SpawnParticle(world string, effect ParticleEffect)
	CreateExplosion(world string, pos entities.Position, power float64)
	StrikeLightning(world string, pos entities.Position)
}

// Messenger sends messages and runs server commands
type Messenger interface {
	Broadcast(world string, msg Message)
	DispatchCommand(command string) error
}

// Players enumerates players
type Players interface {
	Players(world string) []*entities.Player
}
