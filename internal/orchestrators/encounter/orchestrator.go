// Package encounter runs the per-world encounter sessions: respawn rituals,
// death sequences, loot and the snapshot that carries them across restarts.
package encounter

//go:generate mockgen -destination=mock/mock_service.go -package=encountermock github.com/KirkDiggler/endguard/internal/orchestrators/encounter Service

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KirkDiggler/endguard/internal/engine"
	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/loot"
	"github.com/KirkDiggler/endguard/internal/orchestrators/death"
	"github.com/KirkDiggler/endguard/internal/orchestrators/respawn"
	"github.com/KirkDiggler/endguard/internal/particles"
	"github.com/KirkDiggler/endguard/internal/pkg/expr"
	loothistory "github.com/KirkDiggler/endguard/internal/repositories/loot_history"
	"github.com/KirkDiggler/endguard/internal/repositories/sessions"
	"github.com/KirkDiggler/endguard/internal/repositories/templates"
	"github.com/KirkDiggler/endguard/internal/services/announcer"
)

// Defaults applied to unset settings
const (
	DefaultTicksPerSecond   = 20
	DefaultDeathStartHeight = 8.0

	historyQueueSize    = 64
	historyWriteTimeout = 5 * time.Second
)

// Service defines the encounter operations. Every call is expected on the
// tick loop goroutine; off-loop callers go through the loop.
type Service interface {
	// StartRespawn arms a respawn. Started is false, with nothing changed,
	// when a dragon is alive or a respawn or death sequence is in flight.
	StartRespawn(ctx context.Context, input *StartRespawnInput) (*StartRespawnOutput, error)

	// HandleDragonSpawn attaches the fight's template once the host reports the dragon
	HandleDragonSpawn(ctx context.Context, input *HandleDragonSpawnInput) (*HandleDragonSpawnOutput, error)

	// HandleDragonDeath starts the death sequence
	HandleDragonDeath(ctx context.Context, input *HandleDragonDeathInput) (*HandleDragonDeathOutput, error)

	// HandlePlayerJoin arms a respawn when respawn-on-join is enabled
	HandlePlayerJoin(ctx context.Context, input *HandlePlayerJoinInput) (*HandlePlayerJoinOutput, error)

	// Tick advances death sequences every call and respawn runners once per second
	Tick(ctx context.Context) error

	// GetWorldStatus reports a world's session
	GetWorldStatus(ctx context.Context, input *GetWorldStatusInput) (*GetWorldStatusOutput, error)

	// SecondsUntilRespawn is the countdown left in world, -1 when no respawn is armed
	SecondsUntilRespawn(world string) int

	// Restore consumes the snapshot written by the last Shutdown
	Restore(ctx context.Context) (*RestoreOutput, error)

	// Shutdown cancels in-flight work, drains loot history and saves a snapshot
	Shutdown(ctx context.Context) error
}

// Definitions resolves loot tables and particle shapes by id
type Definitions interface {
	LootTable(id string) (*loot.Table, bool)
	Shape(id string) (*particles.Shape, bool)
}

// LootGenerator produces the rewards of a death
type LootGenerator interface {
	Generate(ctx context.Context, table *loot.Table, input *loot.GenerateInput) (*loot.GenerateOutput, error)
}

// Settings tunes respawn and death behavior
type Settings struct {
	TicksPerSecond int

	RespawnOnDeath    bool
	RespawnOnJoin     bool
	DeathDelaySeconds int
	JoinDelaySeconds  int

	// CountdownMessage supports %time% and %formatted-time%
	CountdownMessage string
	AnnounceRadius   float64
	AbandonedMessage string
	SafeguardSeconds int

	DeathThresholdTicks int
	DeathMaxTicks       int
	LightningStrikes    int

	// DefaultShape is played for templates without their own shape
	DefaultShape string

	// DeathStartHeight is how far above the portal the descent starts
	DeathStartHeight float64
}

// Config holds the dependencies for the encounter orchestrator
type Config struct {
	Host        engine.Host
	Announcer   announcer.Service
	Templates   templates.Repository
	Definitions Definitions
	Loot        LootGenerator
	Parser      *expr.Parser

	// History records generated loot when set
	History loothistory.Repository

	// Snapshots carries sessions across restarts when set
	Snapshots sessions.Repository

	Settings Settings
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Host == nil {
		vb.RequiredField("Host")
	}
	if c.Announcer == nil {
		vb.RequiredField("Announcer")
	}
	if c.Templates == nil {
		vb.RequiredField("Templates")
	}
	if c.Definitions == nil {
		vb.RequiredField("Definitions")
	}
	if c.Loot == nil {
		vb.RequiredField("Loot")
	}
	if c.Parser == nil {
		vb.RequiredField("Parser")
	}

	st := c.Settings
	if st.TicksPerSecond < 0 {
		vb.Field("Settings.TicksPerSecond", "must not be negative")
	}
	if st.DeathDelaySeconds < 0 {
		vb.Field("Settings.DeathDelaySeconds", "must not be negative")
	}
	if st.JoinDelaySeconds < 0 {
		vb.Field("Settings.JoinDelaySeconds", "must not be negative")
	}
	if st.SafeguardSeconds < 0 {
		vb.Field("Settings.SafeguardSeconds", "must not be negative")
	}
	if st.LightningStrikes < 0 {
		vb.Field("Settings.LightningStrikes", "must not be negative")
	}

	return vb.Build()
}

type orchestrator struct {
	host      engine.Host
	announcer announcer.Service
	templates templates.Repository
	defs      Definitions
	loot      LootGenerator
	parser    *expr.Parser
	history   loothistory.Repository
	snapshots sessions.Repository
	settings  Settings

	mu     sync.Mutex
	worlds map[string]*worldSession
	ticks  int
	closed bool

	historyCh   chan *loothistory.Entry
	historyDone chan struct{}
}

// NewOrchestrator creates a new encounter orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	settings := cfg.Settings
	if settings.TicksPerSecond == 0 {
		settings.TicksPerSecond = DefaultTicksPerSecond
	}
	if settings.DeathStartHeight == 0 {
		settings.DeathStartHeight = DefaultDeathStartHeight
	}

	o := &orchestrator{
		host:      cfg.Host,
		announcer: cfg.Announcer,
		templates: cfg.Templates,
		defs:      cfg.Definitions,
		loot:      cfg.Loot,
		parser:    cfg.Parser,
		history:   cfg.History,
		snapshots: cfg.Snapshots,
		settings:  settings,
		worlds:    make(map[string]*worldSession),
	}

	if o.history != nil {
		o.historyCh = make(chan *loothistory.Entry, historyQueueSize)
		o.historyDone = make(chan struct{})
		go o.writeHistory()
	}

	return o, nil
}

// StartRespawn arms a respawn for a world
func (o *orchestrator) StartRespawn(ctx context.Context, input *StartRespawnInput) (*StartRespawnOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.World == "" {
		return nil, errors.InvalidArgument("world is required")
	}
	if input.DelaySeconds < 0 {
		return nil, errors.InvalidArgument("delay must not be negative")
	}
	if input.LootTableID != "" {
		if _, ok := o.defs.LootTable(input.LootTableID); !ok {
			return nil, errors.NotFoundf("loot table %s not found", input.LootTableID)
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, errors.FailedPrecondition("encounter service is shut down")
	}

	s := o.session(input.World)
	if reason := o.respawnBlocked(s); reason != "" {
		slog.Info("respawn rejected", "world", s.world, "reason", reason)
		return &StartRespawnOutput{Started: false}, nil
	}

	template, err := o.resolveTemplate(ctx, input.TemplateID)
	if err != nil {
		return nil, err
	}

	if err := o.arm(ctx, s, input.DelaySeconds, template, input.LootTableID); err != nil {
		return nil, err
	}
	return &StartRespawnOutput{Started: true}, nil
}

// HandleDragonSpawn attaches the fight's template to a newly spawned dragon
func (o *orchestrator) HandleDragonSpawn(ctx context.Context, input *HandleDragonSpawnInput) (*HandleDragonSpawnOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.World == "" {
		return nil, errors.InvalidArgument("world is required")
	}
	if input.Dragon == nil {
		return nil, errors.InvalidArgument("dragon is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.session(input.World)
	if s.dragon != nil && s.dragon.ID == input.Dragon.ID {
		return &HandleDragonSpawnOutput{Template: s.active}, nil
	}

	if s.sequencer != nil {
		slog.Warn("dragon spawned during death sequence", "world", s.world)
		s.sequencer.Cancel()
		s.sequencer = nil
	}

	// Only a runner in its safeguard summoned this dragon; any earlier phase
	// gives the ritual up now instead of counting on.
	if s.runner != nil && s.runner.Phase() != respawn.PhaseSafeguard {
		s.runner.Abandon()
		s.runner = nil
		s.pendingOverride = ""
	}

	var template *entities.Template
	var override string
	switch {
	case s.runner != nil && s.runner.Phase() == respawn.PhaseSafeguard:
		s.runner.DragonSpawned()
		template = s.runner.Template()
		override = s.pendingOverride
		s.runner = nil
		s.pendingOverride = ""
	case s.active != nil:
		template = s.active
	default:
		chosen, err := o.resolveTemplate(ctx, "")
		if err != nil {
			slog.Warn("failed to choose template", "world", s.world, "error", err)
		}
		template = chosen
	}

	o.commence(ctx, s, input.Dragon, template, override)
	return &HandleDragonSpawnOutput{Template: template}, nil
}

// HandleDragonDeath starts the death sequence of a world
func (o *orchestrator) HandleDragonDeath(ctx context.Context, input *HandleDragonDeathInput) (*HandleDragonDeathOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.World == "" {
		return nil, errors.InvalidArgument("world is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, errors.FailedPrecondition("encounter service is shut down")
	}

	s := o.session(input.World)
	if s.sequencer != nil {
		return &HandleDragonDeathOutput{Sequencing: true}, nil
	}

	dragon := input.Dragon
	if dragon == nil {
		dragon = s.dragon
	}
	template := s.active

	o.transition(ctx, s.world, entities.BattleStateBattleCommenced, entities.BattleStateBattleEnd, dragon, template)

	if dragon != nil {
		if id, err := uuid.Parse(dragon.ID); err == nil {
			s.lastDefeated = id
		} else {
			slog.Debug("dragon id is not a uuid", "world", s.world, "dragon", dragon.ID)
		}
	}
	s.dragon = nil
	s.killer = input.Killer

	if s.runner != nil {
		s.runner.Cancel()
		s.runner = nil
		s.pendingOverride = ""
	}

	portal, ok := o.host.PortalLocation(s.world)
	if !ok {
		s.previous = template
		s.active = nil
		return nil, errors.FailedPreconditionf("world %s has no portal", s.world)
	}

	seq, err := death.New(&death.Config{
		World:            s.world,
		Host:             o.host,
		Announcer:        o.announcer,
		Parser:           o.parser,
		Dragon:           dragon,
		Template:         template,
		Shape:            o.shapeFor(template),
		Start:            portal.Add(0, o.settings.DeathStartHeight, 0),
		StopY:            portal.Y,
		ThresholdTicks:   o.settings.DeathThresholdTicks,
		MaxTicks:         o.settings.DeathMaxTicks,
		LightningStrikes: o.settings.LightningStrikes,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to start death sequence")
	}
	s.sequencer = seq

	slog.Info("dragon defeated",
		"world", s.world,
		"template", entities.TemplateID(template),
		"killer", playerName(input.Killer))

	return &HandleDragonDeathOutput{Sequencing: true}, nil
}

// HandlePlayerJoin arms a respawn for an emptied world when enabled
func (o *orchestrator) HandlePlayerJoin(ctx context.Context, input *HandlePlayerJoinInput) (*HandlePlayerJoinOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.World == "" {
		return nil, errors.InvalidArgument("world is required")
	}

	if !o.settings.RespawnOnJoin {
		return &HandlePlayerJoinOutput{}, nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return &HandlePlayerJoinOutput{}, nil
	}
	if _, ok := o.host.PortalLocation(input.World); !ok {
		return &HandlePlayerJoinOutput{}, nil
	}
	if !o.host.PreviouslyKilled(input.World) {
		return &HandlePlayerJoinOutput{}, nil
	}

	s := o.session(input.World)
	if o.respawnBlocked(s) != "" {
		return &HandlePlayerJoinOutput{}, nil
	}

	template, err := o.resolveTemplate(ctx, "")
	if err != nil {
		return nil, err
	}
	if err := o.arm(ctx, s, o.settings.JoinDelaySeconds, template, ""); err != nil {
		return nil, err
	}

	slog.Info("respawn armed by player join",
		"world", s.world,
		"player", playerName(input.Player))

	return &HandlePlayerJoinOutput{RespawnStarted: true}, nil
}

// Tick advances every world by one host tick
func (o *orchestrator) Tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}

	o.ticks++
	second := o.ticks%o.settings.TicksPerSecond == 0

	for _, name := range o.sortedWorlds() {
		s := o.worlds[name]

		if s.sequencer != nil && s.sequencer.Tick(ctx) {
			o.completeDeath(ctx, s)
		}

		if second && s.runner != nil {
			s.runner.Advance(ctx)
			if s.runner.Done() {
				o.settleRunner(ctx, s)
			}
		}
	}

	return nil
}

// GetWorldStatus reports the session of a world
func (o *orchestrator) GetWorldStatus(_ context.Context, input *GetWorldStatusInput) (*GetWorldStatusOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.World == "" {
		return nil, errors.InvalidArgument("world is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	s, ok := o.worlds[input.World]
	if !ok {
		if _, portal := o.host.PortalLocation(input.World); !portal {
			return nil, errors.NotFoundf("world %s not found", input.World)
		}
		s = newWorldSession(input.World)
	}

	return &GetWorldStatusOutput{Status: status(s)}, nil
}

// SecondsUntilRespawn is the countdown left in world
func (o *orchestrator) SecondsUntilRespawn(world string) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	s, ok := o.worlds[world]
	if !ok || s.runner == nil {
		return -1
	}
	return s.runner.Remaining()
}

// Restore re-arms respawns and reattaches templates saved at the last shutdown
func (o *orchestrator) Restore(ctx context.Context) (*RestoreOutput, error) {
	if o.snapshots == nil {
		return &RestoreOutput{}, nil
	}

	consumed, err := o.snapshots.Consume(ctx, &sessions.ConsumeInput{})
	if err != nil {
		if errors.IsNotFound(err) {
			return &RestoreOutput{}, nil
		}
		return nil, errors.Wrap(err, "failed to consume session snapshot")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	out := &RestoreOutput{}
	for _, ws := range consumed.Snapshot.Worlds {
		if _, ok := o.host.PortalLocation(ws.World); !ok {
			slog.Warn("snapshot world has no portal", "world", ws.World)
			continue
		}

		s := o.session(ws.World)
		s.lastDefeated = ws.LastDefeatedDragon
		out.Worlds++

		if t := o.lookupTemplate(ctx, ws.ActiveTemplateID); t != nil {
			s.active = t
			if dragon, ok := o.host.FindDragon(s.world); ok {
				s.dragon = dragon
				o.present(s.world, t)
			}
		}

		if ws.RespawnSecondsRemaining == sessions.NoRespawn {
			s.lootOverride = ws.LootOverride
			continue
		}

		if reason := o.respawnBlocked(s); reason != "" {
			slog.Info("snapshot respawn dropped", "world", s.world, "reason", reason)
			continue
		}
		template := o.lookupTemplate(ctx, ws.RespawningTemplateID)
		if err := o.arm(ctx, s, ws.RespawnSecondsRemaining, template, ws.LootOverride); err != nil {
			slog.Warn("failed to restore respawn", "world", s.world, "error", err)
			continue
		}
		out.Respawns++
	}

	slog.Info("sessions restored",
		"snapshot_id", consumed.Snapshot.ID.String(),
		"saved_at", consumed.Snapshot.SavedAt,
		"worlds", out.Worlds,
		"respawns", out.Respawns)

	return out, nil
}

// Shutdown cancels in-flight work, drains loot history and saves a snapshot.
// Later calls are no-ops.
func (o *orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true

	worlds := o.capture()
	for _, name := range o.sortedWorlds() {
		s := o.worlds[name]
		if s.runner != nil {
			s.runner.Cancel()
		}
		if s.sequencer != nil {
			s.sequencer.Cancel()
		}
	}
	o.mu.Unlock()

	if o.historyCh != nil {
		close(o.historyCh)
		select {
		case <-o.historyDone:
		case <-ctx.Done():
			slog.Warn("loot history not drained before shutdown deadline")
		}
	}

	if o.snapshots == nil || len(worlds) == 0 {
		return nil
	}

	saved, err := o.snapshots.Save(ctx, &sessions.SaveInput{Worlds: worlds})
	if err != nil {
		return errors.Wrap(err, "failed to save session snapshot")
	}

	slog.Info("sessions saved",
		"snapshot_id", saved.Snapshot.ID.String(),
		"worlds", len(worlds))
	return nil
}

func (o *orchestrator) session(world string) *worldSession {
	s, ok := o.worlds[world]
	if !ok {
		s = newWorldSession(world)
		o.worlds[world] = s
	}
	return s
}

func (o *orchestrator) sortedWorlds() []string {
	names := make([]string, 0, len(o.worlds))
	for name := range o.worlds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// respawnBlocked names the reason a respawn cannot be armed, or is empty
func (o *orchestrator) respawnBlocked(s *worldSession) string {
	if _, alive := o.host.FindDragon(s.world); alive {
		return "dragon alive"
	}
	if s.runner != nil {
		return "respawn in flight"
	}
	if s.sequencer != nil {
		return "death sequence running"
	}
	return ""
}

func (o *orchestrator) arm(ctx context.Context, s *worldSession, delay int, template *entities.Template, override string) error {
	runner, err := respawn.New(ctx, &respawn.Config{
		World:            s.world,
		Host:             o.host,
		Announcer:        o.announcer,
		DelaySeconds:     delay,
		Template:         template,
		CountdownMessage: o.settings.CountdownMessage,
		AnnounceRadius:   o.settings.AnnounceRadius,
		AbandonedMessage: o.settings.AbandonedMessage,
		SafeguardSeconds: o.settings.SafeguardSeconds,
	})
	if err != nil {
		return errors.Wrap(err, "failed to arm respawn")
	}
	s.runner = runner
	s.pendingOverride = override
	return nil
}

// resolveTemplate fetches id, or draws by spawn weight when id is empty. An
// empty template set draws nothing.
func (o *orchestrator) resolveTemplate(ctx context.Context, id string) (*entities.Template, error) {
	if id != "" {
		got, err := o.templates.Get(ctx, &templates.GetInput{ID: id})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get template %s", id)
		}
		return got.Template, nil
	}

	chosen, err := o.templates.Choose(ctx, &templates.ChooseInput{})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to choose template")
	}
	return chosen.Template, nil
}

// lookupTemplate fetches id, logging and returning nil when it is gone
func (o *orchestrator) lookupTemplate(ctx context.Context, id string) *entities.Template {
	if id == "" {
		return nil
	}
	got, err := o.templates.Get(ctx, &templates.GetInput{ID: id})
	if err != nil {
		slog.Warn("template no longer defined", "template", id, "error", err)
		return nil
	}
	return got.Template
}

func (o *orchestrator) shapeFor(template *entities.Template) *particles.Shape {
	id := o.settings.DefaultShape
	if template != nil && template.ParticleShape != "" {
		id = template.ParticleShape
	}
	if id == "" {
		return nil
	}
	shape, ok := o.defs.Shape(id)
	if !ok {
		slog.Warn("particle shape not found", "shape", id, "template", entities.TemplateID(template))
		return nil
	}
	return shape
}

func (o *orchestrator) commence(ctx context.Context, s *worldSession, dragon *entities.Dragon, template *entities.Template, override string) {
	s.dragon = dragon
	s.active = template
	if override != "" {
		s.lootOverride = override
	}

	o.present(s.world, template)
	o.transition(ctx, s.world, entities.BattleStateDragonRespawning, entities.BattleStateBattleCommenced, dragon, template)

	slog.Info("battle commenced",
		"world", s.world,
		"dragon", dragon.ID,
		"template", entities.TemplateID(template))
}

func (o *orchestrator) present(world string, template *entities.Template) {
	if template == nil {
		return
	}
	o.host.SetPresentation(world, engine.Presentation{
		Title: template.Name(),
		Color: template.BarColor,
		Style: template.BarStyle,
	})
}

func (o *orchestrator) settleRunner(ctx context.Context, s *worldSession) {
	runner := s.runner
	override := s.pendingOverride
	s.runner = nil
	s.pendingOverride = ""

	if runner.Result() == respawn.ResultResurrected {
		if dragon, ok := o.host.FindDragon(s.world); ok {
			o.commence(ctx, s, dragon, runner.Template(), override)
			return
		}
	}

	slog.Info("respawn ended",
		"world", s.world,
		"result", runner.Result().String(),
		"template", entities.TemplateID(runner.Template()))
}

func (o *orchestrator) completeDeath(ctx context.Context, s *worldSession) {
	seq := s.sequencer
	s.sequencer = nil

	template := seq.Template()
	if template != nil {
		s.previous = template
	}
	s.active = nil

	tableID := s.lootOverride
	s.lootOverride = ""
	if tableID == "" && template != nil {
		tableID = template.LootTableID
	}
	o.generateLoot(ctx, s, seq.Dragon(), template, tableID)
	s.killer = nil

	o.transition(ctx, s.world, entities.BattleStateParticlesStart, entities.BattleStateLootSpawn, seq.Dragon(), template)

	if !o.settings.RespawnOnDeath || len(o.host.Players(s.world)) == 0 {
		return
	}
	next, err := o.resolveTemplate(ctx, "")
	if err != nil {
		slog.Warn("failed to choose next template", "world", s.world, "error", err)
	}
	if err := o.arm(ctx, s, o.settings.DeathDelaySeconds, next, ""); err != nil {
		slog.Error("failed to arm respawn after death", "world", s.world, "error", err)
	}
}

func (o *orchestrator) generateLoot(ctx context.Context, s *worldSession, dragon *entities.Dragon, template *entities.Template, tableID string) {
	if tableID == "" {
		slog.Info("no loot table for defeated dragon", "world", s.world, "template", entities.TemplateID(template))
		return
	}
	table, ok := o.defs.LootTable(tableID)
	if !ok {
		slog.Warn("loot table not found", "world", s.world, "loot_table", tableID)
		return
	}

	portal, _ := o.host.PortalLocation(s.world)
	out, err := o.loot.Generate(ctx, table, &loot.GenerateInput{
		World:    s.world,
		Location: portal,
		Template: template,
		Dragon:   dragon,
		Killer:   s.killer,
	})
	if err != nil {
		slog.Error("failed to generate loot", "world", s.world, "loot_table", tableID, "error", err)
		return
	}

	entry := &loothistory.Entry{
		World:       s.world,
		TemplateID:  entities.TemplateID(template),
		TableID:     out.TableID,
		Killer:      playerName(s.killer),
		ChestPlaced: out.ChestPlaced,
		EggPlaced:   out.EggPlaced,
		Items:       out.Items,
		Commands:    out.Commands,
	}
	if dragon != nil {
		entry.DragonID = dragon.ID
	}
	o.recordHistory(entry)
}

func (o *orchestrator) recordHistory(entry *loothistory.Entry) {
	if o.historyCh == nil {
		return
	}
	select {
	case o.historyCh <- entry:
	default:
		slog.Warn("loot history queue full, dropping entry", "world", entry.World)
	}
}

func (o *orchestrator) writeHistory() {
	defer close(o.historyDone)
	for entry := range o.historyCh {
		ctx, cancel := context.WithTimeout(context.Background(), historyWriteTimeout)
		if _, err := o.history.Record(ctx, &loothistory.RecordInput{Entry: entry}); err != nil {
			slog.Error("failed to record loot history", "world", entry.World, "error", err)
		}
		cancel()
	}
}

func (o *orchestrator) transition(ctx context.Context, world string, from, to entities.BattleState, dragon *entities.Dragon, template *entities.Template) {
	_, err := o.announcer.Transition(ctx, &announcer.TransitionInput{
		World:    world,
		From:     from,
		To:       to,
		Dragon:   dragon,
		Template: template,
	})
	if err != nil {
		slog.Warn("failed to publish battle state",
			"world", world,
			"from", from.String(),
			"to", to.String(),
			"error", err)
	}
}

func playerName(p *entities.Player) string {
	if p == nil {
		return ""
	}
	return p.Name
}
