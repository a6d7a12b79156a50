package entities

import "github.com/KirkDiggler/rpg-toolkit/core"

// Entity types reported through core.Entity
const (
	EntityTypeDragon = "dragon"
	EntityTypePlayer = "player"
	EntityTypeWorld  = "world"
)

// Dragon is the boss entity guarding a portal
type Dragon struct {
	ID    string `json:"id"`
	World string `json:"world"`
}

// GetID implements core.Entity
func (d *Dragon) GetID() string { return d.ID }

// GetType implements core.Entity
func (d *Dragon) GetType() string { return EntityTypeDragon }

// Player is a connected player in a world
type Player struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	World    string   `json:"world"`
	Position Position `json:"position"`
}

// GetID implements core.Entity
func (p *Player) GetID() string { return p.ID }

// GetType implements core.Entity
func (p *Player) GetType() string { return EntityTypePlayer }

// WorldRef identifies a world as an event source when no dragon is involved
type WorldRef struct {
	Name string
}

// GetID implements core.Entity
func (w *WorldRef) GetID() string { return w.Name }

// GetType implements core.Entity
func (w *WorldRef) GetType() string { return EntityTypeWorld }

var (
	_ core.Entity = (*Dragon)(nil)
	_ core.Entity = (*Player)(nil)
	_ core.Entity = (*WorldRef)(nil)
)
