package encounter

import (
	"github.com/google/uuid"

	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/orchestrators/death"
	"github.com/KirkDiggler/endguard/internal/orchestrators/respawn"
	"github.com/KirkDiggler/endguard/internal/repositories/sessions"
)

// worldSession is the encounter state of one world. Worlds never share one.
type worldSession struct {
	world string

	active   *entities.Template
	previous *entities.Template
	dragon   *entities.Dragon
	killer   *entities.Player

	// lootOverride replaces the active template's table on the next death
	lootOverride string
	// pendingOverride becomes lootOverride once the armed respawn succeeds
	pendingOverride string

	lastDefeated uuid.UUID

	runner    *respawn.Runner
	sequencer *death.Sequencer
}

func newWorldSession(world string) *worldSession {
	return &worldSession{world: world}
}

// stateOf derives the session state from what the session itself tracks.
// A dragon the host never reported leaves the session idle.
func stateOf(s *worldSession) entities.SessionState {
	switch {
	case s.sequencer != nil:
		return entities.SessionStateDying
	case s.runner != nil:
		return entities.SessionStateRespawning
	case s.dragon != nil:
		return entities.SessionStateActive
	}
	return entities.SessionStateIdle
}

func status(s *worldSession) *WorldStatus {
	st := &WorldStatus{
		World:               s.world,
		State:               stateOf(s),
		ActiveTemplate:      entities.TemplateID(s.active),
		PreviousTemplate:    entities.TemplateID(s.previous),
		SecondsUntilRespawn: -1,
	}
	if s.runner != nil {
		st.RespawningTemplate = entities.TemplateID(s.runner.Template())
		st.SecondsUntilRespawn = s.runner.Remaining()
	}
	if s.lastDefeated != uuid.Nil {
		st.LastDefeatedDragon = s.lastDefeated.String()
	}
	return st
}

// capture snapshots every world with something worth carrying over
func (o *orchestrator) capture() []sessions.WorldSnapshot {
	var worlds []sessions.WorldSnapshot
	for _, name := range o.sortedWorlds() {
		s := o.worlds[name]

		ws := sessions.WorldSnapshot{
			World:                   s.world,
			ActiveTemplateID:        entities.TemplateID(s.active),
			RespawnSecondsRemaining: sessions.NoRespawn,
			LootOverride:            s.lootOverride,
			LastDefeatedDragon:      s.lastDefeated,
		}
		if s.runner != nil && !s.runner.Done() {
			ws.RespawningTemplateID = entities.TemplateID(s.runner.Template())
			ws.RespawnSecondsRemaining = s.runner.Remaining()
			ws.LootOverride = s.pendingOverride
		}

		if ws.ActiveTemplateID == "" &&
			ws.RespawnSecondsRemaining == sessions.NoRespawn &&
			ws.LootOverride == "" &&
			ws.LastDefeatedDragon == uuid.Nil {
			continue
		}
		worlds = append(worlds, ws)
	}
	return worlds
}
