package announcer_test

import (
	"context"
	"testing"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/endguard/internal/engine/memory"
	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/services/announcer"
	"github.com/KirkDiggler/endguard/internal/testutils"
)

type AnnouncerTestSuite struct {
	suite.Suite
	ctx     context.Context
	bus     *events.Bus
	service announcer.Service
}

func TestAnnouncerSuite(t *testing.T) {
	suite.Run(t, new(AnnouncerTestSuite))
}

func (s *AnnouncerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.bus = events.NewBus()

	svc, err := announcer.New(&announcer.Config{EventBus: s.bus})
	s.Require().NoError(err)
	s.service = svc
}

func (s *AnnouncerTestSuite) TestNewRequiresBus() {
	_, err := announcer.New(&announcer.Config{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *AnnouncerTestSuite) TestTransitionPublishesChange() {
	type seen struct {
		world    string
		from, to entities.BattleState
		source   string
	}
	var got []seen
	s.bus.SubscribeFunc(announcer.EventTypeStateChanged, 0, func(_ context.Context, e events.Event) error {
		world, from, to, ok := announcer.Change(e)
		s.Require().True(ok)
		got = append(got, seen{world: world, from: from, to: to, source: e.Source().GetType()})
		return nil
	})

	out, err := s.service.Transition(s.ctx, &announcer.TransitionInput{
		World: testutils.TestWorld,
		From:  entities.BattleStateDragonDead,
		To:    entities.BattleStateCrystalsSpawning,
	})
	s.Require().NoError(err)
	s.False(out.Cancelled)

	_, err = s.service.Transition(s.ctx, &announcer.TransitionInput{
		World:  testutils.TestWorld,
		From:   entities.BattleStateBattleCommenced,
		To:     entities.BattleStateBattleEnd,
		Dragon: &entities.Dragon{ID: "d1", World: testutils.TestWorld},
	})
	s.Require().NoError(err)

	s.Equal([]seen{
		{world: testutils.TestWorld, from: entities.BattleStateDragonDead, to: entities.BattleStateCrystalsSpawning, source: entities.EntityTypeWorld},
		{world: testutils.TestWorld, from: entities.BattleStateBattleCommenced, to: entities.BattleStateBattleEnd, source: entities.EntityTypeDragon},
	}, got)
}

func (s *AnnouncerTestSuite) TestUnemittedTransitionRejected() {
	_, err := s.service.Transition(s.ctx, &announcer.TransitionInput{
		World: testutils.TestWorld,
		From:  entities.BattleStateLootSpawn,
		To:    entities.BattleStateDragonDead,
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *AnnouncerTestSuite) TestCancellationIsReported() {
	s.bus.SubscribeFunc(announcer.EventTypeStateChanged, 0, func(_ context.Context, e events.Event) error {
		announcer.Cancel(e)
		return nil
	})

	out, err := s.service.Transition(s.ctx, &announcer.TransitionInput{
		World: testutils.TestWorld,
		From:  entities.BattleStateParticlesStart,
		To:    entities.BattleStateLootSpawn,
	})
	s.Require().NoError(err)
	s.True(out.Cancelled)
}

func (s *AnnouncerTestSuite) TestAnnouncementsOnCommence() {
	host := memory.NewHost(nil)
	host.AddWorld(testutils.TestWorld, testutils.TestPortal)

	_, err := announcer.SubscribeAnnouncements(s.bus, host)
	s.Require().NoError(err)

	template := testutils.CreateTestTemplate()
	_, err = s.service.Transition(s.ctx, &announcer.TransitionInput{
		World:    testutils.TestWorld,
		From:     entities.BattleStateCrystalsSpawning,
		To:       entities.BattleStateDragonRespawning,
		Template: template,
	})
	s.Require().NoError(err)
	s.Empty(host.World(testutils.TestWorld).Messages)

	_, err = s.service.Transition(s.ctx, &announcer.TransitionInput{
		World:    testutils.TestWorld,
		From:     entities.BattleStateDragonRespawning,
		To:       entities.BattleStateBattleCommenced,
		Template: template,
	})
	s.Require().NoError(err)

	messages := host.World(testutils.TestWorld).Messages
	s.Require().Len(messages, 1)
	s.Equal("The Ancient Dragon awakens!", messages[0].Text)
}

func (s *AnnouncerTestSuite) TestSilentTemplateNotAnnounced() {
	host := memory.NewHost(nil)
	host.AddWorld(testutils.TestWorld, testutils.TestPortal)
	_, err := announcer.SubscribeAnnouncements(s.bus, host)
	s.Require().NoError(err)

	template := testutils.CreateTestTemplate()
	template.Announce = false
	_, err = s.service.Transition(s.ctx, &announcer.TransitionInput{
		World:    testutils.TestWorld,
		From:     entities.BattleStateDragonRespawning,
		To:       entities.BattleStateBattleCommenced,
		Template: template,
	})
	s.Require().NoError(err)
	s.Empty(host.World(testutils.TestWorld).Messages)
}
