package engine

import "github.com/KirkDiggler/endguard/internal/entities"

// MaterialDragonEgg is the item and block placed by the egg reward
const MaterialDragonEgg = "dragon_egg"

// Presentation is the boss bar shown during a fight
type Presentation struct {
	Title string
	Color string
	Style string
}

// ItemStack is a stack of items placed into a container or dropped
type ItemStack struct {
	Material    string   `json:"material"`
	Amount      int      `json:"amount"`
	DisplayName string   `json:"display_name,omitempty"`
	Lore        []string `json:"lore,omitempty"`
}

// ParticleEffect describes one particle emission
type ParticleEffect struct {
	Kind     string
	Position entities.Position
	Count    int
	OffsetX  float64
	OffsetY  float64
	OffsetZ  float64
	Speed    float64
}

// Message is a short-lived on-screen message. A positive Radius limits
// delivery to players within that distance of Center.
type Message struct {
	Text   string
	Center entities.Position
	Radius float64
}

// Reaches reports whether a player at pos receives msg
func (m Message) Reaches(pos entities.Position) bool {
	if m.Radius <= 0 {
		return true
	}
	return m.Center.Distance(pos) <= m.Radius
}

// HostEventKind is the kind of event a host reports back
type HostEventKind string

// Host event kinds
const (
	HostEventDragonSpawned HostEventKind = "dragon_spawned"
	HostEventDragonDied    HostEventKind = "dragon_died"
	HostEventPlayerJoined  HostEventKind = "player_joined"
)

// HostEvent is something the host reports back to the encounter core. On a
// death, Player is the killer when known.
type HostEvent struct {
	Kind   HostEventKind
	World  string
	Dragon *entities.Dragon
	Player *entities.Player
}
