package respawn_test

import (
	"context"
	"testing"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/endguard/internal/engine/memory"
	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/orchestrators/respawn"
	"github.com/KirkDiggler/endguard/internal/services/announcer"
	"github.com/KirkDiggler/endguard/internal/testutils"
)

type RunnerTestSuite struct {
	suite.Suite
	ctx         context.Context
	host        *memory.Host
	announcer   announcer.Service
	transitions []entities.BattleState
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerTestSuite))
}

func (s *RunnerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.host = memory.NewHost(&memory.Config{SpawnDelay: -1})
	s.host.AddWorld(testutils.TestWorld, testutils.TestPortal)
	s.transitions = nil

	bus := events.NewBus()
	bus.SubscribeFunc(announcer.EventTypeStateChanged, 0, func(_ context.Context, e events.Event) error {
		_, _, to, ok := announcer.Change(e)
		if ok {
			s.transitions = append(s.transitions, to)
		}
		return nil
	})

	svc, err := announcer.New(&announcer.Config{EventBus: bus})
	s.Require().NoError(err)
	s.announcer = svc
}

func (s *RunnerTestSuite) newRunner(delay int, mutate ...func(*respawn.Config)) *respawn.Runner {
	cfg := &respawn.Config{
		World:            testutils.TestWorld,
		Host:             s.host,
		Announcer:        s.announcer,
		DelaySeconds:     delay,
		Template:         testutils.CreateTestTemplate(),
		SafeguardSeconds: 5,
		AbandonedMessage: "The ritual was disrupted!",
	}
	for _, m := range mutate {
		m(cfg)
	}
	runner, err := respawn.New(s.ctx, cfg)
	s.Require().NoError(err)
	return runner
}

func (s *RunnerTestSuite) anchorsWithCrystal() int {
	var n int
	for _, pos := range entities.AnchorPositions(testutils.TestPortal) {
		if s.host.HasCrystal(testutils.TestWorld, pos) {
			n++
		}
	}
	return n
}

func (s *RunnerTestSuite) advance(runner *respawn.Runner, n int) {
	for i := 0; i < n; i++ {
		runner.Advance(s.ctx)
	}
}

func (s *RunnerTestSuite) TestNewPublishesCrystalPhase() {
	s.newRunner(3)
	s.Equal([]entities.BattleState{entities.BattleStateCrystalsSpawning}, s.transitions)
}

func (s *RunnerTestSuite) TestNewRequiresPortal() {
	_, err := respawn.New(s.ctx, &respawn.Config{
		World:     "nether",
		Host:      s.host,
		Announcer: s.announcer,
	})
	s.Error(err)
}

func (s *RunnerTestSuite) TestCountdownBroadcasts() {
	runner := s.newRunner(3, func(c *respawn.Config) {
		c.CountdownMessage = "Dragon returns in %time%s (%formatted-time%)"
		c.AnnounceRadius = 50
	})
	s.Equal(3, runner.Remaining())

	s.advance(runner, 3)

	messages := s.host.World(testutils.TestWorld).Messages
	s.Require().Len(messages, 3)
	s.Equal("Dragon returns in 3s (3s)", messages[0].Text)
	s.Equal("Dragon returns in 1s (1s)", messages[2].Text)
	s.Equal(50.0, messages[0].Radius)
	s.Equal(0, runner.Remaining())
	s.Equal(respawn.PhaseCountdown, runner.Phase())
}

func (s *RunnerTestSuite) TestWaitsForPlayer() {
	runner := s.newRunner(0)

	s.advance(runner, 10)
	s.Equal(respawn.PhaseWaitingForPlayers, runner.Phase())
	s.Equal(0, s.anchorsWithCrystal())

	s.host.AddPlayer(testutils.TestWorld, testutils.CreateTestPlayer())
	runner.Advance(s.ctx)
	s.Equal(respawn.PhaseSequencing, runner.Phase())
}

func (s *RunnerTestSuite) TestSequencesOneCrystalPerTick() {
	s.host.AddPlayer(testutils.TestWorld, testutils.CreateTestPlayer())
	runner := s.newRunner(2)

	// two countdown seconds, then expiry
	s.advance(runner, 3)
	s.Equal(respawn.PhaseSequencing, runner.Phase())

	for i := 1; i <= 3; i++ {
		runner.Advance(s.ctx)
		s.Equal(i, s.anchorsWithCrystal())
		s.Equal(0, s.host.World(testutils.TestWorld).RespawnCalls)
	}

	runner.Advance(s.ctx)
	world := s.host.World(testutils.TestWorld)
	s.Equal(4, s.anchorsWithCrystal())
	s.Equal(1, world.RespawnCalls)
	s.Len(world.Explosions, 4)
	for _, c := range world.Crystals {
		s.True(c.Invulnerable)
	}
	s.Equal(respawn.PhaseSafeguard, runner.Phase())
	s.Equal([]entities.BattleState{
		entities.BattleStateCrystalsSpawning,
		entities.BattleStateDragonRespawning,
	}, s.transitions)
}

func (s *RunnerTestSuite) TestReplacesExistingCrystal() {
	s.host.AddPlayer(testutils.TestWorld, testutils.CreateTestPlayer())
	anchor := entities.AnchorPositions(testutils.TestPortal)[0]
	s.host.LoadChunk(testutils.TestWorld, anchor)
	s.Require().NoError(s.host.SpawnCrystal(testutils.TestWorld, anchor, false))

	runner := s.newRunner(0)
	s.advance(runner, 2)

	s.Len(s.host.World(testutils.TestWorld).Crystals, 1)
	for _, c := range s.host.World(testutils.TestWorld).Crystals {
		s.True(c.Invulnerable)
	}
}

func (s *RunnerTestSuite) TestAbandonsWhenDragonAppears() {
	s.host.AddPlayer(testutils.TestWorld, testutils.CreateTestPlayer())
	runner := s.newRunner(0)

	s.advance(runner, 4)
	s.Equal(3, s.anchorsWithCrystal())

	s.host.SpawnDragon(testutils.TestWorld)
	runner.Advance(s.ctx)

	world := s.host.World(testutils.TestWorld)
	s.Equal(0, s.anchorsWithCrystal())
	s.Equal(0, world.RespawnCalls)
	s.True(runner.Done())
	s.Equal(respawn.ResultAbandoned, runner.Result())
	s.Len(world.Particles, 4)
	s.Require().NotEmpty(world.Messages)
	s.Equal("The ritual was disrupted!", world.Messages[len(world.Messages)-1].Text)
}

func (s *RunnerTestSuite) TestAbandonsDuringCountdownWhenDragonAppears() {
	s.host.AddPlayer(testutils.TestWorld, testutils.CreateTestPlayer())
	runner := s.newRunner(10, func(cfg *respawn.Config) {
		cfg.CountdownMessage = "Dragon returns in %time%s"
	})
	s.advance(runner, 2)
	s.Require().Equal(respawn.PhaseCountdown, runner.Phase())

	s.host.SpawnDragon(testutils.TestWorld)
	runner.Advance(s.ctx)

	s.True(runner.Done())
	s.Equal(respawn.ResultAbandoned, runner.Result())
	s.Zero(runner.Remaining())

	world := s.host.World(testutils.TestWorld)
	s.Require().NotEmpty(world.Messages)
	sent := len(world.Messages)
	s.Equal("The ritual was disrupted!", world.Messages[sent-1].Text)

	s.advance(runner, 3)
	s.Len(world.Messages, sent)
	s.Zero(world.RespawnCalls)
}

func (s *RunnerTestSuite) TestAbandonsWhileWaitingForPlayers() {
	runner := s.newRunner(0)
	runner.Advance(s.ctx)
	s.Require().Equal(respawn.PhaseWaitingForPlayers, runner.Phase())

	s.host.SpawnDragon(testutils.TestWorld)
	runner.Advance(s.ctx)

	s.True(runner.Done())
	s.Equal(respawn.ResultAbandoned, runner.Result())
}

func (s *RunnerTestSuite) TestAbandonAfterFinishIsNoOp() {
	runner := s.newRunner(10)
	runner.Cancel()
	runner.Abandon()

	s.Equal(respawn.ResultCancelled, runner.Result())
	s.Empty(s.host.World(testutils.TestWorld).Messages)
}

func (s *RunnerTestSuite) TestSafeguardResetsBattle() {
	s.host.AddPlayer(testutils.TestWorld, testutils.CreateTestPlayer())
	runner := s.newRunner(0)
	s.advance(runner, 5)
	s.Require().Equal(respawn.PhaseSafeguard, runner.Phase())

	s.advance(runner, 4)
	s.False(runner.Done())

	runner.Advance(s.ctx)
	s.True(runner.Done())
	s.Equal(respawn.ResultTimedOut, runner.Result())
	s.Equal(1, s.host.World(testutils.TestWorld).ResetCalls)
}

func (s *RunnerTestSuite) TestDragonSpawnCompletes() {
	s.host.AddPlayer(testutils.TestWorld, testutils.CreateTestPlayer())
	runner := s.newRunner(0)
	s.advance(runner, 5)

	runner.DragonSpawned()
	s.True(runner.Done())
	s.Equal(respawn.ResultResurrected, runner.Result())
	s.Equal(0, s.host.World(testutils.TestWorld).ResetCalls)
}

func (s *RunnerTestSuite) TestCancelIsIdempotent() {
	runner := s.newRunner(10)

	runner.Cancel()
	runner.Cancel()
	runner.Advance(s.ctx)

	s.True(runner.Done())
	s.Equal(respawn.ResultCancelled, runner.Result())
	s.Equal(0, runner.Remaining())
}

func (s *RunnerTestSuite) TestFormatDuration() {
	s.Equal("0s", respawn.FormatDuration(0))
	s.Equal("45s", respawn.FormatDuration(45))
	s.Equal("1m 5s", respawn.FormatDuration(65))
	s.Equal("2h 0m 1s", respawn.FormatDuration(7201))
}
