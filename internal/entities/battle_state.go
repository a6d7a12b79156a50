package entities

// BattleState is a phase of the dragon encounter lifecycle
type BattleState int

// Battle states in lifecycle order. Transitions are driven by external
// triggers and only the pairs in ValidTransitions are ever published.
const (
	BattleStateDragonDead BattleState = iota
	BattleStateCrystalsSpawning
	BattleStateDragonRespawning
	BattleStateBattleCommenced
	BattleStateBattleEnd
	BattleStateParticlesStart
	BattleStateLootSpawn
)

var battleStateNames = map[BattleState]string{
	BattleStateDragonDead:       "DRAGON_DEAD",
	BattleStateCrystalsSpawning: "CRYSTALS_SPAWNING",
	BattleStateDragonRespawning: "DRAGON_RESPAWNING",
	BattleStateBattleCommenced:  "BATTLE_COMMENCED",
	BattleStateBattleEnd:        "BATTLE_END",
	BattleStateParticlesStart:   "PARTICLES_START",
	BattleStateLootSpawn:        "LOOT_SPAWN",
}

func (s BattleState) String() string {
	if name, ok := battleStateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// ValidTransitions lists every (previous, next) pair the orchestrators emit
var ValidTransitions = map[BattleState]BattleState{
	BattleStateDragonDead:       BattleStateCrystalsSpawning,
	BattleStateCrystalsSpawning: BattleStateDragonRespawning,
	BattleStateDragonRespawning: BattleStateBattleCommenced,
	BattleStateBattleCommenced:  BattleStateBattleEnd,
	BattleStateBattleEnd:        BattleStateParticlesStart,
	BattleStateParticlesStart:   BattleStateLootSpawn,
}

// IsValidTransition reports whether from -> to is an emitted transition
func IsValidTransition(from, to BattleState) bool {
	next, ok := ValidTransitions[from]
	return ok && next == to
}

// SessionState is the coarse state of a world's encounter session
type SessionState string

// Session states
const (
	SessionStateIdle       SessionState = "idle"
	SessionStateActive     SessionState = "active"
	SessionStateDying      SessionState = "dying"
	SessionStateRespawning SessionState = "respawning"
)
