package encounter_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/endguard/internal/definitions"
	"github.com/KirkDiggler/endguard/internal/engine/memory"
	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/loot"
	"github.com/KirkDiggler/endguard/internal/orchestrators/encounter"
	"github.com/KirkDiggler/endguard/internal/particles"
	"github.com/KirkDiggler/endguard/internal/pkg/clock"
	"github.com/KirkDiggler/endguard/internal/pkg/expr"
	"github.com/KirkDiggler/endguard/internal/pkg/idgen"
	"github.com/KirkDiggler/endguard/internal/pkg/weighted"
	loothistory "github.com/KirkDiggler/endguard/internal/repositories/loot_history"
	"github.com/KirkDiggler/endguard/internal/repositories/sessions"
	sessionsmock "github.com/KirkDiggler/endguard/internal/repositories/sessions/mock"
	"github.com/KirkDiggler/endguard/internal/repositories/templates"
	"github.com/KirkDiggler/endguard/internal/services/announcer"
	"github.com/KirkDiggler/endguard/internal/testutils"
)

const maxSteps = 500

type OrchestratorTestSuite struct {
	suite.Suite
	ctx         context.Context
	ctrl        *gomock.Controller
	host        *memory.Host
	world       *memory.World
	templates   *templates.InMemoryRepository
	store       *definitions.Store
	history     *loothistory.InMemoryRepository
	snapshots   *sessionsmock.MockRepository
	announcer   announcer.Service
	transitions []entities.BattleState
	settings    encounter.Settings
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.host = memory.NewHost(&memory.Config{SpawnDelay: 0})
	s.world = s.host.AddWorld(testutils.TestWorld, testutils.TestPortal)
	s.transitions = nil

	bus := events.NewBus()
	bus.SubscribeFunc(announcer.EventTypeStateChanged, 0, func(_ context.Context, e events.Event) error {
		if _, _, to, ok := announcer.Change(e); ok {
			s.transitions = append(s.transitions, to)
		}
		return nil
	})
	svc, err := announcer.New(&announcer.Config{EventBus: bus})
	s.Require().NoError(err)
	s.announcer = svc

	s.templates = templates.NewInMemory(weighted.NewSeededSource(1))
	_, err = s.templates.Replace(s.ctx, &templates.ReplaceInput{
		Templates: []*entities.Template{testutils.CreateTestTemplate()},
	})
	s.Require().NoError(err)

	parser := expr.NewParser(nil)
	catalog := definitions.NewCatalog()
	table, err := loot.Build(testutils.CreateTestLootTableSpec(), weighted.NewSeededSource(2))
	s.Require().NoError(err)
	catalog.LootTables[table.ID] = table
	shape, err := particles.Compile(&particles.CompileConfig{
		Parser:     parser,
		Conditions: particles.NewConditionRegistry(),
	}, testutils.CreateTestShapeSpec())
	s.Require().NoError(err)
	catalog.Shapes[shape.ID] = shape
	s.store = definitions.NewStore(catalog)

	s.history = loothistory.NewInMemory(clock.NewFixed(time.Unix(1700000000, 0)), idgen.NewSequential("loot"), 10)
	s.snapshots = sessionsmock.NewMockRepository(s.ctrl)

	s.settings = encounter.Settings{
		TicksPerSecond:      1,
		DeathThresholdTicks: 5,
		LightningStrikes:    2,
		SafeguardSeconds:    5,
		AbandonedMessage:    "The ritual was disrupted!",
	}
}

func (s *OrchestratorTestSuite) newService() encounter.Service {
	generator, err := loot.NewGenerator(&loot.GeneratorConfig{
		Host:   s.host,
		Roller: testutils.NewScriptedRoller(),
	})
	s.Require().NoError(err)

	svc, err := encounter.NewOrchestrator(&encounter.Config{
		Host:        s.host,
		Announcer:   s.announcer,
		Templates:   s.templates,
		Definitions: s.store,
		Loot:        generator,
		Parser:      expr.NewParser(nil),
		History:     s.history,
		Snapshots:   s.snapshots,
		Settings:    s.settings,
	})
	s.Require().NoError(err)
	return svc
}

// step runs one host tick the way the serve loop does
func (s *OrchestratorTestSuite) step(svc encounter.Service) {
	encounter.Dispatch(s.ctx, svc, s.host.Tick())
	s.Require().NoError(svc.Tick(s.ctx))
}

func (s *OrchestratorTestSuite) stepUntil(svc encounter.Service, done func() bool) {
	for i := 0; i < maxSteps; i++ {
		if done() {
			return
		}
		s.step(svc)
	}
	s.FailNow("condition not reached")
}

func (s *OrchestratorTestSuite) status(svc encounter.Service) *encounter.WorldStatus {
	out, err := svc.GetWorldStatus(s.ctx, &encounter.GetWorldStatusInput{World: testutils.TestWorld})
	s.Require().NoError(err)
	return out.Status
}

func (s *OrchestratorTestSuite) TestDoubleStartRespawnArmsOneRunner() {
	svc := s.newService()

	first, err := svc.StartRespawn(s.ctx, &encounter.StartRespawnInput{World: testutils.TestWorld, DelaySeconds: 10})
	s.Require().NoError(err)
	s.True(first.Started)

	second, err := svc.StartRespawn(s.ctx, &encounter.StartRespawnInput{World: testutils.TestWorld, DelaySeconds: 3})
	s.Require().NoError(err)
	s.False(second.Started)

	s.Equal(10, svc.SecondsUntilRespawn(testutils.TestWorld))
	st := s.status(svc)
	s.Equal(entities.SessionStateRespawning, st.State)
	s.Equal(testutils.TestTemplateID, st.RespawningTemplate)
	s.Equal([]entities.BattleState{entities.BattleStateCrystalsSpawning}, s.transitions)
}

func (s *OrchestratorTestSuite) TestStartRespawnWithDragonPresentIsRejected() {
	svc := s.newService()
	s.host.SpawnDragon(testutils.TestWorld)

	out, err := svc.StartRespawn(s.ctx, &encounter.StartRespawnInput{World: testutils.TestWorld, DelaySeconds: 5})
	s.Require().NoError(err)
	s.False(out.Started)

	s.Equal(entities.SessionStateIdle, s.status(svc).State)
	s.Equal(-1, svc.SecondsUntilRespawn(testutils.TestWorld))
	s.Empty(s.transitions)
}

func (s *OrchestratorTestSuite) TestStartRespawnValidation() {
	svc := s.newService()

	_, err := svc.StartRespawn(s.ctx, &encounter.StartRespawnInput{})
	s.True(errors.IsInvalidArgument(err))

	_, err = svc.StartRespawn(s.ctx, &encounter.StartRespawnInput{World: testutils.TestWorld, DelaySeconds: -1})
	s.True(errors.IsInvalidArgument(err))

	_, err = svc.StartRespawn(s.ctx, &encounter.StartRespawnInput{World: testutils.TestWorld, LootTableID: "missing"})
	s.True(errors.IsNotFound(err))

	_, err = svc.StartRespawn(s.ctx, &encounter.StartRespawnInput{World: testutils.TestWorld, TemplateID: "missing"})
	s.True(errors.IsNotFound(err))

	_, err = svc.StartRespawn(s.ctx, &encounter.StartRespawnInput{World: "overworld"})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestDeathAnimationLootAndRespawn() {
	s.settings.RespawnOnDeath = true
	s.settings.DeathDelaySeconds = 2
	svc := s.newService()

	s.host.AddPlayer(testutils.TestWorld, testutils.CreateTestPlayer())
	s.host.SpawnDragon(testutils.TestWorld)
	s.step(svc)

	st := s.status(svc)
	s.Equal(entities.SessionStateActive, st.State)
	s.Equal(testutils.TestTemplateID, st.ActiveTemplate)
	s.Equal("Ancient Dragon", s.world.Presentation.Title)
	s.Equal("purple", s.world.Presentation.Color)

	dead := s.host.KillDragon(testutils.TestWorld, testutils.CreateTestPlayer())
	s.Require().NotNil(dead)
	s.step(svc)
	s.Equal(entities.SessionStateDying, s.status(svc).State)

	s.stepUntil(svc, func() bool { return s.status(svc).State != entities.SessionStateDying })

	// egg guaranteed, chest never
	s.Len(s.world.Eggs, 1)
	s.Empty(s.world.Containers)
	s.Len(s.world.Dropped, 2)
	s.Contains(s.host.Commands(), "give Steve experience_bottle 16")
	s.Len(s.world.Lightning, 2)
	s.NotEmpty(s.world.Particles)

	st = s.status(svc)
	s.Equal(entities.SessionStateRespawning, st.State)
	s.Empty(st.ActiveTemplate)
	s.Equal(testutils.TestTemplateID, st.PreviousTemplate)
	s.Equal(dead.ID, st.LastDefeatedDragon)

	s.stepUntil(svc, func() bool { return s.status(svc).State == entities.SessionStateActive })

	s.Equal(1, s.world.RespawnCalls)
	s.Len(s.world.Crystals, 4)
	s.Equal(testutils.TestTemplateID, s.status(svc).ActiveTemplate)

	s.Equal([]entities.BattleState{
		entities.BattleStateBattleCommenced,
		entities.BattleStateBattleEnd,
		entities.BattleStateParticlesStart,
		entities.BattleStateLootSpawn,
		entities.BattleStateCrystalsSpawning,
		entities.BattleStateDragonRespawning,
		entities.BattleStateBattleCommenced,
	}, s.transitions)

	s.snapshots.EXPECT().Save(gomock.Any(), gomock.Any()).Return(&sessions.SaveOutput{
		Snapshot: &sessions.Snapshot{ID: uuid.New()},
	}, nil)
	s.Require().NoError(svc.Shutdown(s.ctx))

	history, err := s.history.List(s.ctx, &loothistory.ListInput{World: testutils.TestWorld})
	s.Require().NoError(err)
	s.Require().Len(history.Entries, 1)
	entry := history.Entries[0]
	s.Equal(testutils.TestLootTableID, entry.TableID)
	s.Equal(testutils.TestPlayerName, entry.Killer)
	s.Equal(dead.ID, entry.DragonID)
	s.True(entry.EggPlaced)
	s.False(entry.ChestPlaced)
}

func (s *OrchestratorTestSuite) TestLootOverrideIsConsumedOnce() {
	other := testutils.CreateTestLootTableSpec()
	other.ID = "override_loot"
	other.EggChance = 0
	other.CommandPools = nil
	table, err := loot.Build(other, weighted.NewSeededSource(3))
	s.Require().NoError(err)
	s.store.Current().LootTables[table.ID] = table

	s.settings.RespawnOnDeath = false
	svc := s.newService()
	s.host.AddPlayer(testutils.TestWorld, testutils.CreateTestPlayer())

	out, err := svc.StartRespawn(s.ctx, &encounter.StartRespawnInput{
		World:       testutils.TestWorld,
		LootTableID: "override_loot",
	})
	s.Require().NoError(err)
	s.Require().True(out.Started)

	s.stepUntil(svc, func() bool { return s.status(svc).State == entities.SessionStateActive })

	s.host.KillDragon(testutils.TestWorld, nil)
	s.step(svc)
	s.stepUntil(svc, func() bool { return s.status(svc).State == entities.SessionStateIdle })

	// the override table has no egg and no commands
	s.Empty(s.world.Eggs)
	s.Empty(s.host.Commands())
	s.Len(s.world.Dropped, 2)

	s.host.SpawnDragon(testutils.TestWorld)
	s.step(svc)
	s.host.KillDragon(testutils.TestWorld, nil)
	s.step(svc)
	s.stepUntil(svc, func() bool { return s.status(svc).State == entities.SessionStateIdle })

	// back on the template's table
	s.Len(s.world.Eggs, 1)
}

func (s *OrchestratorTestSuite) TestSnapshotRestoreRearmsRespawn() {
	defeated := uuid.New()
	s.snapshots.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(&sessions.ConsumeOutput{
		Snapshot: &sessions.Snapshot{
			ID: uuid.New(),
			Worlds: []sessions.WorldSnapshot{
				{
					World:                   testutils.TestWorld,
					RespawningTemplateID:    testutils.TestTemplateID,
					RespawnSecondsRemaining: 30,
					LootOverride:            testutils.TestLootTableID,
					LastDefeatedDragon:      defeated,
				},
				{
					World:                   "gone",
					RespawnSecondsRemaining: 10,
				},
			},
		},
	}, nil)

	svc := s.newService()
	out, err := svc.Restore(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, out.Worlds)
	s.Equal(1, out.Respawns)

	st := s.status(svc)
	s.Equal(entities.SessionStateRespawning, st.State)
	s.Equal(testutils.TestTemplateID, st.RespawningTemplate)
	s.Equal(30, st.SecondsUntilRespawn)
	s.Equal(defeated.String(), st.LastDefeatedDragon)
}

func (s *OrchestratorTestSuite) TestRestoreWithoutSnapshot() {
	s.snapshots.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil, errors.NotFound("no session snapshot"))

	svc := s.newService()
	out, err := svc.Restore(s.ctx)
	s.Require().NoError(err)
	s.Zero(out.Worlds)
}

func (s *OrchestratorTestSuite) TestShutdownSavesInFlightRespawn() {
	svc := s.newService()

	_, err := svc.StartRespawn(s.ctx, &encounter.StartRespawnInput{
		World:        testutils.TestWorld,
		DelaySeconds: 10,
		LootTableID:  testutils.TestLootTableID,
	})
	s.Require().NoError(err)

	var saved *sessions.SaveInput
	s.snapshots.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, input *sessions.SaveInput) (*sessions.SaveOutput, error) {
			saved = input
			return &sessions.SaveOutput{Snapshot: &sessions.Snapshot{ID: uuid.New(), Worlds: input.Worlds}}, nil
		}).Times(1)

	s.Require().NoError(svc.Shutdown(s.ctx))
	s.Require().NoError(svc.Shutdown(s.ctx))

	s.Require().NotNil(saved)
	s.Require().Len(saved.Worlds, 1)
	ws := saved.Worlds[0]
	s.Equal(testutils.TestWorld, ws.World)
	s.Equal(testutils.TestTemplateID, ws.RespawningTemplateID)
	s.Equal(10, ws.RespawnSecondsRemaining)
	s.Equal(testutils.TestLootTableID, ws.LootOverride)

	_, err = svc.StartRespawn(s.ctx, &encounter.StartRespawnInput{World: testutils.TestWorld})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestRespawnOnJoin() {
	s.settings.RespawnOnJoin = true
	s.settings.JoinDelaySeconds = 5
	svc := s.newService()
	player := testutils.CreateTestPlayer()

	// never killed, so joining does nothing
	out, err := svc.HandlePlayerJoin(s.ctx, &encounter.HandlePlayerJoinInput{World: testutils.TestWorld, Player: player})
	s.Require().NoError(err)
	s.False(out.RespawnStarted)

	s.world.PreviouslyKilled = true
	out, err = svc.HandlePlayerJoin(s.ctx, &encounter.HandlePlayerJoinInput{World: testutils.TestWorld, Player: player})
	s.Require().NoError(err)
	s.True(out.RespawnStarted)
	s.Equal(5, svc.SecondsUntilRespawn(testutils.TestWorld))

	out, err = svc.HandlePlayerJoin(s.ctx, &encounter.HandlePlayerJoinInput{World: testutils.TestWorld, Player: player})
	s.Require().NoError(err)
	s.False(out.RespawnStarted)
}

func (s *OrchestratorTestSuite) TestExternalSpawnAbandonsCountdown() {
	s.settings.CountdownMessage = "Dragon returns in %time%s"
	svc := s.newService()
	s.host.AddPlayer(testutils.TestWorld, testutils.CreateTestPlayer())

	_, err := svc.StartRespawn(s.ctx, &encounter.StartRespawnInput{World: testutils.TestWorld, DelaySeconds: 10})
	s.Require().NoError(err)
	s.step(svc)
	s.Require().Equal(entities.SessionStateRespawning, s.status(svc).State)

	s.host.SpawnDragon(testutils.TestWorld)
	s.step(svc)

	s.Equal(entities.SessionStateActive, s.status(svc).State)
	s.Equal(-1, svc.SecondsUntilRespawn(testutils.TestWorld))
	s.Zero(s.world.RespawnCalls)
	s.Empty(s.world.Crystals)
	s.Equal(1, s.countMessages("The ritual was disrupted!"))

	countdowns := s.countMessagesWithPrefix("Dragon returns in")
	for i := 0; i < 3; i++ {
		s.step(svc)
	}
	s.Equal(countdowns, s.countMessagesWithPrefix("Dragon returns in"))
	s.Equal(entities.SessionStateActive, s.status(svc).State)
}

func (s *OrchestratorTestSuite) countMessages(text string) int {
	var n int
	for _, msg := range s.world.Messages {
		if msg.Text == text {
			n++
		}
	}
	return n
}

func (s *OrchestratorTestSuite) countMessagesWithPrefix(prefix string) int {
	var n int
	for _, msg := range s.world.Messages {
		if strings.HasPrefix(msg.Text, prefix) {
			n++
		}
	}
	return n
}

func (s *OrchestratorTestSuite) TestSafeguardExpiryResetsBattle() {
	s.host = memory.NewHost(&memory.Config{SpawnDelay: -1})
	s.world = s.host.AddWorld(testutils.TestWorld, testutils.TestPortal)
	svc := s.newService()
	s.host.AddPlayer(testutils.TestWorld, testutils.CreateTestPlayer())

	_, err := svc.StartRespawn(s.ctx, &encounter.StartRespawnInput{World: testutils.TestWorld})
	s.Require().NoError(err)

	s.stepUntil(svc, func() bool { return s.status(svc).State == entities.SessionStateIdle })

	s.Equal(1, s.world.RespawnCalls)
	s.Equal(1, s.world.ResetCalls)
}

func (s *OrchestratorTestSuite) TestUnknownWorldStatus() {
	svc := s.newService()

	_, err := svc.GetWorldStatus(s.ctx, &encounter.GetWorldStatusInput{World: "overworld"})
	s.True(errors.IsNotFound(err))
	s.Equal(-1, svc.SecondsUntilRespawn("overworld"))
}
