package templates_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/pkg/weighted"
	"github.com/KirkDiggler/endguard/internal/repositories/templates"
)

type InMemoryTestSuite struct {
	suite.Suite
	ctx  context.Context
	repo *templates.InMemoryRepository
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemoryTestSuite))
}

func (s *InMemoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = templates.NewInMemory(weighted.NewSeededSource(17))

	out, err := s.repo.Replace(s.ctx, &templates.ReplaceInput{Templates: []*entities.Template{
		{ID: "common", SpawnWeight: 9},
		{ID: "rare", SpawnWeight: 1},
		{ID: "scripted", SpawnWeight: 0},
		{ID: "common", SpawnWeight: 100},
		{ID: ""},
	}})
	s.Require().NoError(err)
	s.Equal(3, out.Count)
	s.Len(out.Skipped, 2)
}

func (s *InMemoryTestSuite) TestGet() {
	out, err := s.repo.Get(s.ctx, &templates.GetInput{ID: "rare"})
	s.Require().NoError(err)
	s.Equal("rare", out.Template.ID)

	_, err = s.repo.Get(s.ctx, &templates.GetInput{ID: "missing"})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Get(s.ctx, &templates.GetInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *InMemoryTestSuite) TestListSorted() {
	out, err := s.repo.List(s.ctx, &templates.ListInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Templates, 3)
	s.Equal("common", out.Templates[0].ID)
	s.Equal(9.0, out.Templates[0].SpawnWeight)
	s.Equal("scripted", out.Templates[2].ID)
}

func (s *InMemoryTestSuite) TestChooseIsWeighted() {
	counts := map[string]int{}
	for i := 0; i < 10000; i++ {
		out, err := s.repo.Choose(s.ctx, &templates.ChooseInput{})
		s.Require().NoError(err)
		counts[out.Template.ID]++
	}

	s.Zero(counts["scripted"])
	s.InDelta(0.9, float64(counts["common"])/10000, 0.02)
}

func (s *InMemoryTestSuite) TestChooseEmpty() {
	repo := templates.NewInMemory(nil)
	_, err := repo.Choose(s.ctx, &templates.ChooseInput{})
	s.True(errors.IsNotFound(err))
}
