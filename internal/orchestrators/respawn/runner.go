// Package respawn drives the summoning ritual that brings a dragon back: a
// per-second countdown, crystal sequencing around the portal, the
// resurrection call and a safeguard against hosts that never spawn the dragon.
package respawn

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/KirkDiggler/endguard/internal/engine"
	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/services/announcer"
)

// Placeholders substituted into the countdown message
const (
	PlaceholderTime          = "%time%"
	PlaceholderFormattedTime = "%formatted-time%"
)

// Defaults applied when the config leaves them unset
const (
	DefaultSafeguardSeconds = 30
	CrystalExplosionPower   = 0.0
	AbandonedEffect         = "large_smoke"
	AbandonedEffectCount    = 20
)

// Phase is the current step of a runner
type Phase int

// Runner phases
const (
	PhaseCountdown Phase = iota
	PhaseWaitingForPlayers
	PhaseSequencing
	PhaseSafeguard
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseCountdown:
		return "countdown"
	case PhaseWaitingForPlayers:
		return "waiting_for_players"
	case PhaseSequencing:
		return "sequencing"
	case PhaseSafeguard:
		return "safeguard"
	case PhaseDone:
		return "done"
	}
	return "unknown"
}

// Result is how a finished runner ended
type Result int

// Runner results
const (
	ResultPending Result = iota
	ResultResurrected
	ResultAbandoned
	ResultTimedOut
	ResultCancelled
	ResultFailed
)

func (r Result) String() string {
	switch r {
	case ResultPending:
		return "pending"
	case ResultResurrected:
		return "resurrected"
	case ResultAbandoned:
		return "abandoned"
	case ResultTimedOut:
		return "timed_out"
	case ResultCancelled:
		return "cancelled"
	case ResultFailed:
		return "failed"
	}
	return "unknown"
}

// Config configures a respawn runner
type Config struct {
	World     string
	Host      engine.Host
	Announcer announcer.Service

	// DelaySeconds is the countdown length
	DelaySeconds int

	// Template is the variant being summoned
	Template *entities.Template

	// CountdownMessage is broadcast every countdown second when set
	CountdownMessage string

	// AnnounceRadius limits countdown and abandon messages to players near
	// the portal when positive
	AnnounceRadius float64

	AbandonedMessage string

	// SafeguardSeconds bounds the wait for the host to spawn the dragon
	SafeguardSeconds int
}

// Validate validates the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRequired("World", c.World, vb)
	if c.Host == nil {
		vb.RequiredField("Host")
	}
	if c.Announcer == nil {
		vb.RequiredField("Announcer")
	}
	if c.DelaySeconds < 0 {
		vb.Field("DelaySeconds", "must not be negative")
	}
	if c.SafeguardSeconds < 0 {
		vb.Field("SafeguardSeconds", "must not be negative")
	}

	return vb.Build()
}

// Runner is the respawn state machine of one world. It is advanced once per
// second by its owner and is not safe for concurrent use.
type Runner struct {
	world     string
	host      engine.Host
	announcer announcer.Service
	template  *entities.Template

	countdownMessage string
	abandonedMessage string
	radius           float64
	safeguard        int

	portal    entities.Position
	anchors   [4]entities.Position
	phase     Phase
	result    Result
	remaining int
	placed    int
	waited    int
}

// New creates a runner and publishes the start of the crystal phase
func New(ctx context.Context, cfg *Config) (*Runner, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	portal, ok := cfg.Host.PortalLocation(cfg.World)
	if !ok {
		return nil, errors.FailedPreconditionf("world %s has no portal", cfg.World)
	}

	safeguard := cfg.SafeguardSeconds
	if safeguard == 0 {
		safeguard = DefaultSafeguardSeconds
	}

	r := &Runner{
		world:            cfg.World,
		host:             cfg.Host,
		announcer:        cfg.Announcer,
		template:         cfg.Template,
		countdownMessage: cfg.CountdownMessage,
		abandonedMessage: cfg.AbandonedMessage,
		radius:           cfg.AnnounceRadius,
		safeguard:        safeguard,
		portal:           portal,
		anchors:          entities.AnchorPositions(portal),
		phase:            PhaseCountdown,
		remaining:        cfg.DelaySeconds,
	}

	r.transition(ctx, entities.BattleStateDragonDead, entities.BattleStateCrystalsSpawning)

	slog.Info("respawn scheduled",
		"world", r.world,
		"delay_seconds", cfg.DelaySeconds,
		"template", entities.TemplateID(r.template))

	return r, nil
}

// Advance runs one second of the ritual
func (r *Runner) Advance(ctx context.Context) {
	switch r.phase {
	case PhaseCountdown:
		r.countdown()
	case PhaseWaitingForPlayers:
		r.awaitPlayers()
	case PhaseSequencing:
		r.sequence(ctx)
	case PhaseSafeguard:
		r.guard()
	case PhaseDone:
	}
}

// DragonSpawned completes the runner once the host reports the dragon
func (r *Runner) DragonSpawned() {
	if r.phase != PhaseSafeguard {
		return
	}
	r.finish(ResultResurrected)
}

// Cancel stops the runner. Cancelling a finished runner is a no-op.
func (r *Runner) Cancel() {
	if r.phase == PhaseDone {
		return
	}
	slog.Info("respawn cancelled", "world", r.world, "phase", r.phase.String())
	r.finish(ResultCancelled)
}

// Remaining is the number of countdown seconds left
func (r *Runner) Remaining() int {
	if r.phase != PhaseCountdown {
		return 0
	}
	return r.remaining
}

// Phase reports the current phase
func (r *Runner) Phase() Phase {
	return r.phase
}

// Result reports how the runner ended, ResultPending while running
func (r *Runner) Result() Result {
	return r.result
}

// Done reports whether the runner finished
func (r *Runner) Done() bool {
	return r.phase == PhaseDone
}

// Template is the variant being summoned
func (r *Runner) Template() *entities.Template {
	return r.template
}

func (r *Runner) countdown() {
	if r.dragonPresent() {
		return
	}
	if r.remaining > 0 {
		r.broadcastCountdown()
		r.remaining--
		return
	}
	r.phase = PhaseWaitingForPlayers
	r.awaitPlayers()
}

func (r *Runner) awaitPlayers() {
	if r.dragonPresent() {
		return
	}
	if len(r.host.Players(r.world)) == 0 {
		r.waited++
		if r.waited == 1 {
			slog.Info("respawn waiting for a player", "world", r.world)
		}
		return
	}
	r.phase = PhaseSequencing
}

func (r *Runner) sequence(ctx context.Context) {
	if r.dragonPresent() {
		return
	}

	pos := r.anchors[r.placed]
	r.host.LoadChunk(r.world, pos)
	r.host.RemoveCrystal(r.world, pos)
	if err := r.host.SpawnCrystal(r.world, pos, true); err != nil {
		slog.Error("failed to spawn crystal",
			"world", r.world,
			"anchor", r.placed,
			"error", err)
	}
	r.host.CreateExplosion(r.world, pos, CrystalExplosionPower)
	r.placed++

	if r.placed < len(r.anchors) {
		return
	}

	if r.dragonPresent() {
		return
	}

	if err := r.host.RespawnDragon(r.world); err != nil {
		slog.Error("resurrection failed", "world", r.world, "error", err)
		r.host.ResetBattle(r.world)
		r.finish(ResultFailed)
		return
	}

	r.transition(ctx, entities.BattleStateCrystalsSpawning, entities.BattleStateDragonRespawning)
	r.phase = PhaseSafeguard
	r.remaining = r.safeguard
}

func (r *Runner) guard() {
	if _, exists := r.host.FindDragon(r.world); exists {
		r.finish(ResultResurrected)
		return
	}

	r.remaining--
	if r.remaining > 0 {
		return
	}

	slog.Warn("dragon never spawned after resurrection, resetting battle",
		"world", r.world,
		"safeguard_seconds", r.safeguard)
	r.host.ResetBattle(r.world)
	r.finish(ResultTimedOut)
}

// dragonPresent abandons the ritual when a dragon exists that this runner
// did not summon
func (r *Runner) dragonPresent() bool {
	if _, exists := r.host.FindDragon(r.world); !exists {
		return false
	}
	r.Abandon()
	return true
}

// Abandon gives the ritual up because a dragon appeared on its own: anchors
// are cleared with the abandoned effect and the warning is broadcast.
// Abandoning a finished runner is a no-op.
func (r *Runner) Abandon() {
	if r.phase == PhaseDone {
		return
	}
	slog.Warn("dragon appeared before the respawn, abandoning",
		"world", r.world,
		"phase", r.phase.String(),
		"placed", r.placed)

	for _, pos := range r.anchors {
		r.host.RemoveCrystal(r.world, pos)
		r.host.SpawnParticle(r.world, engine.ParticleEffect{
			Kind:     AbandonedEffect,
			Position: pos,
			Count:    AbandonedEffectCount,
			OffsetX:  0.5,
			OffsetY:  0.5,
			OffsetZ:  0.5,
		})
	}
	if r.abandonedMessage != "" {
		r.host.Broadcast(r.world, r.message(r.abandonedMessage))
	}
	r.finish(ResultAbandoned)
}

func (r *Runner) finish(result Result) {
	r.phase = PhaseDone
	r.result = result
	r.remaining = 0
	slog.Info("respawn finished", "world", r.world, "result", result.String())
}

func (r *Runner) broadcastCountdown() {
	if r.countdownMessage == "" {
		return
	}
	text := strings.NewReplacer(
		PlaceholderTime, strconv.Itoa(r.remaining),
		PlaceholderFormattedTime, FormatDuration(r.remaining),
	).Replace(r.countdownMessage)
	r.host.Broadcast(r.world, r.message(text))
}

func (r *Runner) message(text string) engine.Message {
	return engine.Message{Text: text, Center: r.portal, Radius: r.radius}
}

func (r *Runner) transition(ctx context.Context, from, to entities.BattleState) {
	dragon, _ := r.host.FindDragon(r.world)
	_, err := r.announcer.Transition(ctx, &announcer.TransitionInput{
		World:    r.world,
		From:     from,
		To:       to,
		Dragon:   dragon,
		Template: r.template,
	})
	if err != nil {
		slog.Warn("failed to publish battle state",
			"world", r.world,
			"next", to.String(),
			"error", err)
	}
}

// FormatDuration renders seconds as "1h 2m 3s", omitting leading zero units
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0s"
	}
	h, m, s := seconds/3600, seconds%3600/60, seconds%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
