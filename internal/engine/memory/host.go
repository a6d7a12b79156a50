// Package memory provides an in-memory engine.Host. It backs the simulate
// command and the orchestrator tests; it keeps every side effect observable.
package memory

import (
	"sort"
	"sync"

	"github.com/KirkDiggler/endguard/internal/engine"
	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/pkg/idgen"
)

// DeathAnimationLength is the number of ticks the host's own death animation lasts
const DeathAnimationLength = 200


// Crystal is a placed summoning crystal
type Crystal struct {
	Position     entities.Position
	Invulnerable bool
}

// World is the observable state of one simulated world
type World struct {
	Name             string
	Portal           entities.Position
	Dragon           *entities.Dragon
	PreviouslyKilled bool
	Presentation     engine.Presentation
	DeathTicks       int
	Dying            bool

	Crystals     map[string]*Crystal
	LoadedChunks map[string]bool
	Containers   map[string]*Container
	Eggs         map[string]entities.Position
	Cleared      []entities.Position
	Dropped      []engine.ItemStack
	Particles    []engine.ParticleEffect
	Explosions   []entities.Position
	Lightning    []entities.Position
	Messages     []engine.Message
	Players      map[string]*entities.Player

	RespawnCalls int
	ResetCalls   int

	pendingSpawn int
}

// Config configures the in-memory host
type Config struct {
	// SpawnDelay is the number of host ticks between RespawnDragon and the
	// dragon appearing. Negative disables materialization, which simulates a
	// host that drops the resurrection.
	SpawnDelay int

	IDGenerator idgen.Generator
}

// Host implements engine.Host in memory
type Host struct {
	mu         sync.Mutex
	spawnDelay int
	idGen      idgen.Generator
	worlds     map[string]*World
	commands   []string
	pending    []engine.HostEvent
}

// NewHost creates an empty in-memory host
func NewHost(cfg *Config) *Host {
	if cfg == nil {
		cfg = &Config{}
	}
	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = idgen.NewUUID("")
	}
	return &Host{
		spawnDelay: cfg.SpawnDelay,
		idGen:      idGen,
		worlds:     make(map[string]*World),
	}
}

var _ engine.Host = (*Host)(nil)

// AddWorld registers a world with a portal at the given position
func (h *Host) AddWorld(name string, portal entities.Position) *World {
	h.mu.Lock()
	defer h.mu.Unlock()

	w := &World{
		Name:         name,
		Portal:       portal,
		Crystals:     make(map[string]*Crystal),
		LoadedChunks: make(map[string]bool),
		Containers:   make(map[string]*Container),
		Eggs:         make(map[string]entities.Position),
		Players:      make(map[string]*entities.Player),
		pendingSpawn: -1,
	}
	h.worlds[name] = w
	return w
}

// World returns the state of a world for inspection
func (h *Host) World(name string) *World {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.worlds[name]
}

// AddPlayer places a player in a world and queues a join event
func (h *Host) AddPlayer(world string, player *entities.Player) {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.worlds[world]
	if !ok {
		return
	}
	player.World = world
	w.Players[player.ID] = player
	h.pending = append(h.pending, engine.HostEvent{Kind: engine.HostEventPlayerJoined, World: world, Player: player})
}

// RemovePlayer removes a player from a world
func (h *Host) RemovePlayer(world, playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if w, ok := h.worlds[world]; ok {
		delete(w.Players, playerID)
	}
}

// SpawnDragon materializes a dragon immediately, as an external spawn would
func (h *Host) SpawnDragon(world string) *entities.Dragon {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.worlds[world]
	if !ok {
		return nil
	}
	return h.materialize(w)
}

// KillDragon removes the dragon and starts the host death animation. killer
// may be nil.
func (h *Host) KillDragon(world string, killer *entities.Player) *entities.Dragon {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.worlds[world]
	if !ok || w.Dragon == nil {
		return nil
	}
	dead := w.Dragon
	w.Dragon = nil
	w.PreviouslyKilled = true
	w.Dying = true
	w.DeathTicks = 0
	h.pending = append(h.pending, engine.HostEvent{Kind: engine.HostEventDragonDied, World: world, Dragon: dead, Player: killer})
	return dead
}

// Tick advances the host by one tick and returns the events it produced
func (h *Host) Tick() []engine.HostEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	names := make([]string, 0, len(h.worlds))
	for name := range h.worlds {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		w := h.worlds[name]
		if w.Dying {
			w.DeathTicks++
			if w.DeathTicks >= DeathAnimationLength {
				w.Dying = false
			}
		}
		if w.pendingSpawn > 0 {
			w.pendingSpawn--
		}
		if w.pendingSpawn == 0 {
			w.pendingSpawn = -1
			h.materialize(w)
		}
	}

	events := h.pending
	h.pending = nil
	return events
}

// Commands returns every dispatched command
func (h *Host) Commands() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.commands...)
}

func (h *Host) materialize(w *World) *entities.Dragon {
	if w.Dragon != nil {
		return w.Dragon
	}
	w.Dragon = &entities.Dragon{ID: h.idGen.Generate(), World: w.Name}
	w.Dying = false
	h.pending = append(h.pending, engine.HostEvent{Kind: engine.HostEventDragonSpawned, World: w.Name, Dragon: w.Dragon})
	return w.Dragon
}

// Worlds implements engine.Battles
func (h *Host) Worlds() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	names := make([]string, 0, len(h.worlds))
	for name := range h.worlds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PortalLocation implements engine.Battles
func (h *Host) PortalLocation(world string) (entities.Position, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.worlds[world]
	if !ok {
		return entities.Position{}, false
	}
	return w.Portal, true
}

// FindDragon implements engine.Battles
func (h *Host) FindDragon(world string) (*entities.Dragon, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.worlds[world]
	if !ok || w.Dragon == nil {
		return nil, false
	}
	return w.Dragon, true
}

// PreviouslyKilled implements engine.Battles
func (h *Host) PreviouslyKilled(world string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.worlds[world]
	return ok && w.PreviouslyKilled
}

// SetPresentation implements engine.Battles
func (h *Host) SetPresentation(world string, presentation engine.Presentation) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if w, ok := h.worlds[world]; ok {
		w.Presentation = presentation
	}
}

// RespawnDragon implements engine.Battles
func (h *Host) RespawnDragon(world string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.worlds[world]
	if !ok {
		return errors.NotFoundf("world %s not found", world)
	}
	w.RespawnCalls++
	if h.spawnDelay >= 0 {
		w.pendingSpawn = h.spawnDelay
		if h.spawnDelay == 0 {
			w.pendingSpawn = -1
			h.materialize(w)
		}
	}
	return nil
}

// ResetBattle implements engine.Battles
func (h *Host) ResetBattle(world string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if w, ok := h.worlds[world]; ok {
		w.ResetCalls++
		w.pendingSpawn = -1
	}
}

// DeathAnimationTicks implements engine.Battles
func (h *Host) DeathAnimationTicks(world string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if w, ok := h.worlds[world]; ok {
		return w.DeathTicks
	}
	return 0
}

// LoadChunk implements engine.Crystals
func (h *Host) LoadChunk(world string, pos entities.Position) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if w, ok := h.worlds[world]; ok {
		w.LoadedChunks[pos.ChunkKey()] = true
	}
}

// SpawnCrystal implements engine.Crystals
func (h *Host) SpawnCrystal(world string, pos entities.Position, invulnerable bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.worlds[world]
	if !ok {
		return errors.NotFoundf("world %s not found", world)
	}
	if !w.LoadedChunks[pos.ChunkKey()] {
		return errors.FailedPreconditionf("chunk %s of %s is not loaded", pos.ChunkKey(), world)
	}
	w.Crystals[blockKey(pos)] = &Crystal{Position: pos, Invulnerable: invulnerable}
	return nil
}

// RemoveCrystal implements engine.Crystals
func (h *Host) RemoveCrystal(world string, pos entities.Position) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.worlds[world]
	if !ok {
		return false
	}
	key := blockKey(pos)
	if _, exists := w.Crystals[key]; !exists {
		return false
	}
	delete(w.Crystals, key)
	return true
}

// HasCrystal implements engine.Crystals
func (h *Host) HasCrystal(world string, pos entities.Position) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.worlds[world]
	if !ok {
		return false
	}
	_, exists := w.Crystals[blockKey(pos)]
	return exists
}

// ClearBlock implements engine.Blocks
func (h *Host) ClearBlock(world string, pos entities.Position) {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.worlds[world]
	if !ok {
		return
	}
	key := blockKey(pos)
	delete(w.Containers, key)
	delete(w.Eggs, key)
	w.Cleared = append(w.Cleared, pos.Block())
}

// PlaceContainer implements engine.Blocks
func (h *Host) PlaceContainer(world string, pos entities.Position, name string) (engine.Container, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.worlds[world]
	if !ok {
		return nil, errors.NotFoundf("world %s not found", world)
	}
	c := newContainer(name, ContainerSize)
	w.Containers[blockKey(pos)] = c
	return c, nil
}

// PlaceEgg implements engine.Blocks
func (h *Host) PlaceEgg(world string, pos entities.Position) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.worlds[world]
	if !ok {
		return errors.NotFoundf("world %s not found", world)
	}
	w.Eggs[blockKey(pos)] = pos.Block()
	return nil
}

// DropItem implements engine.Blocks
func (h *Host) DropItem(world string, _ entities.Position, item engine.ItemStack) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if w, ok := h.worlds[world]; ok {
		w.Dropped = append(w.Dropped, item)
	}
}

// SpawnParticle implements engine.Effects
func (h *Host) SpawnParticle(world string, effect engine.ParticleEffect) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if w, ok := h.worlds[world]; ok {
		w.Particles = append(w.Particles, effect)
	}
}

// CreateExplosion implements engine.Effects
func (h *Host) CreateExplosion(world string, pos entities.Position, _ float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if w, ok := h.worlds[world]; ok {
		w.Explosions = append(w.Explosions, pos)
	}
}

// StrikeLightning implements engine.Effects
func (h *Host) StrikeLightning(world string, pos entities.Position) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if w, ok := h.worlds[world]; ok {
		w.Lightning = append(w.Lightning, pos)
	}
}

// Broadcast implements engine.Messenger
func (h *Host) Broadcast(world string, msg engine.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if w, ok := h.worlds[world]; ok {
		w.Messages = append(w.Messages, msg)
	}
}

// DispatchCommand implements engine.Messenger
func (h *Host) DispatchCommand(command string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if command == "" {
		return errors.InvalidArgument("command is empty")
	}
	h.commands = append(h.commands, command)
	return nil
}

// Players implements engine.Players
func (h *Host) Players(world string) []*entities.Player {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.worlds[world]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(w.Players))
	for id := range w.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	players := make([]*entities.Player, 0, len(ids))
	for _, id := range ids {
		players = append(players, w.Players[id])
	}
	return players
}

func blockKey(pos entities.Position) string {
	b := pos.Block()
	return b.String()
}
