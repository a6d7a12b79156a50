package errors_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/endguard/internal/errors"
)

type ValidationTestSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

func (s *ValidationTestSuite) TestValidationBuilder() {
	vb := errors.NewValidationBuilder()
	vb.Field("world", "is required").
		Fieldf("delay", "must be positive, got %d", -1).
		RequiredField("template")

	err := vb.Build()
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Equal(
		"INVALID_ARGUMENT: validation failed: delay: must be positive, got -1; template: is required; world: is required",
		err.Error(),
	)
	s.NotNil(errors.GetMeta(err)["validation_errors"])
}

func (s *ValidationTestSuite) TestValidationBuilderNoErrors() {
	s.NoError(errors.NewValidationBuilder().Build())
}

func (s *ValidationTestSuite) TestValidatePercent() {
	testCases := []struct {
		name      string
		value     float64
		shouldErr bool
	}{
		{"zero", 0, false},
		{"hundred", 100, false},
		{"fraction", 12.5, false},
		{"negative", -1, true},
		{"above", 100.01, true},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			vb := errors.NewValidationBuilder()
			errors.ValidatePercent("chance", tc.value, vb)
			s.Equal(tc.shouldErr, vb.Build() != nil)
		})
	}
}

func (s *ValidationTestSuite) TestValidateEnum() {
	vb := errors.NewValidationBuilder()
	errors.ValidateEnum("driver", "postgres", []string{"file", "redis"}, vb)

	err := vb.Build()
	s.Require().Error(err)
	s.Contains(err.Error(), "must be one of: file, redis")
}

func (s *ValidationTestSuite) TestValidateRequiredAndPositive() {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("world", "  ", vb)
	errors.ValidatePositive("tick_rate", 0, vb)

	err := vb.Build()
	s.Require().Error(err)
	s.Contains(err.Error(), "world: is required")
	s.Contains(err.Error(), "tick_rate: must be positive, got 0")
}
