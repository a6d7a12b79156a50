package death_test

import (
	"context"
	"testing"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/endguard/internal/engine/memory"
	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/orchestrators/death"
	"github.com/KirkDiggler/endguard/internal/particles"
	"github.com/KirkDiggler/endguard/internal/pkg/expr"
	"github.com/KirkDiggler/endguard/internal/services/announcer"
	"github.com/KirkDiggler/endguard/internal/testutils"
)

type SequencerTestSuite struct {
	suite.Suite
	ctx         context.Context
	host        *memory.Host
	parser      *expr.Parser
	shape       *particles.Shape
	announcer   announcer.Service
	transitions []entities.BattleState
}

func TestSequencerSuite(t *testing.T) {
	suite.Run(t, new(SequencerTestSuite))
}

func (s *SequencerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.host = memory.NewHost(nil)
	s.host.AddWorld(testutils.TestWorld, testutils.TestPortal)
	s.parser = expr.NewParser(nil)
	s.transitions = nil

	shape, err := particles.Compile(&particles.CompileConfig{
		Parser:     s.parser,
		Conditions: particles.NewConditionRegistry(),
	}, testutils.CreateTestShapeSpec())
	s.Require().NoError(err)
	s.shape = shape

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
}

func (s *SequencerTestSuite) newSequencer(shape *particles.Shape) *death.Sequencer {
	seq, err := death.New(&death.Config{
		World:            testutils.TestWorld,
		Host:             s.host,
		Announcer:        s.announcer,
		Parser:           s.parser,
		Template:         testutils.CreateTestTemplate(),
		Shape:            shape,
		Start:            testutils.TestPortal.Add(0, 8, 0),
		StopY:            testutils.TestPortalY,
		ThresholdTicks:   5,
		LightningStrikes: 3,
	})
	s.Require().NoError(err)
	return seq
}

func (s *SequencerTestSuite) killAndWait(ticks int) {
	s.host.SpawnDragon(testutils.TestWorld)
	s.host.KillDragon(testutils.TestWorld, nil)
	for i := 0; i < ticks; i++ {
		s.host.Tick()
	}
}

func (s *SequencerTestSuite) TestWaitsForHostAnimation() {
	seq := s.newSequencer(s.shape)
	s.killAndWait(4)

	s.False(seq.Tick(s.ctx))
	s.Equal(death.PhaseWaiting, seq.Phase())
	s.Empty(s.transitions)

	s.host.Tick()
	s.False(seq.Tick(s.ctx))
	s.Equal(death.PhaseAnimating, seq.Phase())
	s.Equal([]entities.BattleState{entities.BattleStateParticlesStart}, s.transitions)
}

func (s *SequencerTestSuite) TestDescentEndsWithLightning() {
	seq := s.newSequencer(s.shape)
	s.killAndWait(5)

	var finished bool
	var ticks int
	for !finished && ticks < 100 {
		finished = seq.Tick(s.ctx)
		ticks++
	}

	s.Require().True(finished)
	// one tick to begin, eight one-block steps down to the portal
	s.Equal(9, ticks)
	s.True(seq.Done())
	s.Equal(testutils.TestPortalY, seq.FinalPosition().Y)

	world := s.host.World(testutils.TestWorld)
	s.Len(world.Lightning, 3)
	s.Equal(seq.FinalPosition(), world.Lightning[0])
	s.Len(world.Particles, 16)
	s.False(seq.Tick(s.ctx))
}

func (s *SequencerTestSuite) TestNoShapeFinishesImmediately() {
	seq := s.newSequencer(nil)
	s.killAndWait(5)

	s.True(seq.Tick(s.ctx))
	s.Len(s.host.World(testutils.TestWorld).Lightning, 3)
}

func (s *SequencerTestSuite) TestTickBudgetBoundsStuckDescent() {
	stuck, err := particles.Compile(&particles.CompileConfig{
		Parser:     s.parser,
		Conditions: particles.NewConditionRegistry(),
	}, particles.ShapeSpec{
		ID: "never",
		Entries: []particles.EntrySpec{{
			X: "0", Z: "0",
			Conditions: []particles.ConditionSpec{{Type: "number", Field: "t", Operator: "<", Value: "0"}},
		}},
	})
	s.Require().NoError(err)

	seq, err := death.New(&death.Config{
		World:          testutils.TestWorld,
		Host:           s.host,
		Announcer:      s.announcer,
		Parser:         s.parser,
		Shape:          stuck,
		Start:          testutils.TestPortal.Add(0, 8, 0),
		StopY:          testutils.TestPortalY,
		ThresholdTicks: 1,
		MaxTicks:       10,
	})
	s.Require().NoError(err)
	s.killAndWait(1)

	var ticks int
	for !seq.Tick(s.ctx) {
		ticks++
		s.Require().Less(ticks, 50)
	}
	s.Equal(10, ticks)
}

func (s *SequencerTestSuite) TestCancelIsIdempotent() {
	seq := s.newSequencer(s.shape)
	s.killAndWait(5)
	seq.Tick(s.ctx)

	seq.Cancel()
	seq.Cancel()

	s.True(seq.Done())
	s.True(seq.Cancelled())
	s.False(seq.Tick(s.ctx))
	s.Empty(s.host.World(testutils.TestWorld).Lightning)
}
