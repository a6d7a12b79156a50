package errors_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/KirkDiggler/endguard/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	testCases := []struct {
		name     string
		code     errors.Code
		message  string
		expected string
	}{
		{
			name:     "not found error",
			code:     errors.CodeNotFound,
			message:  "template not found",
			expected: "NOT_FOUND: template not found",
		},
		{
			name:     "invalid argument error",
			code:     errors.CodeInvalidArgument,
			message:  "invalid input",
			expected: "INVALID_ARGUMENT: invalid input",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := errors.New(tc.code, tc.message)
			s.Equal(tc.expected, err.Error())
			s.Equal(tc.code, err.Code)
			s.Equal(tc.message, err.Message)
		})
	}
}

func (s *ErrorsTestSuite) TestWrapPreservesCode() {
	baseErr := errors.NotFound("record not found")
	wrapped := errors.Wrap(baseErr, "template not found")

	s.Equal(errors.CodeNotFound, wrapped.Code)
	s.Equal("template not found", wrapped.Message)
	s.Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapPlainErrorIsInternal() {
	baseErr := fmt.Errorf("redis connection refused")
	wrapped := errors.Wrap(baseErr, "failed to save snapshot")

	s.Equal(errors.CodeInternal, wrapped.Code)
	s.Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapNil() {
	s.Nil(errors.Wrap(nil, "should be nil"))
	s.Nil(errors.WrapWithCode(nil, errors.CodeNotFound, "should be nil"))
}

func (s *ErrorsTestSuite) TestParseError() {
	cause := fmt.Errorf("unexpected character")
	err := errors.ParseError("shapes/spiral.yml", "sin(t", cause)

	s.True(errors.IsInvalidArgument(err))
	s.Equal("shapes/spiral.yml", err.Meta["file"])
	s.Equal("sin(t", err.Meta["fragment"])
	s.ErrorIs(err, cause)
	s.Contains(err.Error(), "failed to parse shapes/spiral.yml")
}

func (s *ErrorsTestSuite) TestParseErrorWithoutCause() {
	err := errors.ParseError("loot/basic.yml", "", nil)

	s.True(errors.IsInvalidArgument(err))
	s.NotContains(err.Meta, "fragment")
}

func (s *ErrorsTestSuite) TestHelperFunctions() {
	notFoundErr := errors.NotFound("test")
	wrappedErr := errors.Wrap(notFoundErr, "wrapped")

	s.True(errors.IsNotFound(wrappedErr))
	s.False(errors.IsNotFound(errors.InvalidArgument("test")))
	s.True(errors.IsAlreadyExists(errors.AlreadyExistsf("function %s", "sin")))
	s.True(errors.IsFailedPrecondition(errors.FailedPrecondition("dragon alive")))
	s.True(errors.IsUnavailable(errors.Unavailable("tick loop stopped")))
	s.True(errors.IsDeadlineExceeded(errors.DeadlineExceededf("request waited %s", "5s")))
	s.Equal(errors.CodeOK, errors.GetCode(nil))
	s.Equal(errors.CodeInternal, errors.GetCode(fmt.Errorf("standard error")))
}

func (s *ErrorsTestSuite) TestContextErrorsKeepTheirCodes() {
	s.Equal(errors.CodeDeadlineExceeded, errors.GetCode(context.DeadlineExceeded))
	s.Equal(errors.CodeCanceled, errors.GetCode(fmt.Errorf("step: %w", context.Canceled)))

	st, ok := status.FromError(errors.ToGRPCError(context.DeadlineExceeded))
	s.Require().True(ok)
	s.Equal(codes.DeadlineExceeded, st.Code())
}

func (s *ErrorsTestSuite) TestLocation() {
	err := errors.Wrap(errors.ParseError("loot/rare.yml", "rare", nil), "skipped")

	file, fragment := errors.Location(err)
	s.Equal("loot/rare.yml", file)
	s.Equal("rare", fragment)

	file, fragment = errors.Location(fmt.Errorf("plain"))
	s.Empty(file)
	s.Empty(fragment)
}

func (s *ErrorsTestSuite) TestGRPCConversionCarriesMeta() {
	err := errors.NotFound("template not found").
		WithMeta("template_id", "ender").
		WithMeta("candidates", []string{"a", "b"})

	grpcErr := errors.ToGRPCError(err)
	st, ok := status.FromError(grpcErr)
	s.Require().True(ok)
	s.Equal(codes.NotFound, st.Code())
	s.Equal("template not found", st.Message())

	back := errors.FromGRPCError(grpcErr)
	s.Equal(errors.CodeNotFound, errors.GetCode(back))
	s.Equal("ender", errors.GetMeta(back)["template_id"])
	s.Equal("[a b]", errors.GetMeta(back)["candidates"])
}

func (s *ErrorsTestSuite) TestGRPCCodeMapping() {
	testCases := []struct {
		code     errors.Code
		expected codes.Code
	}{
		{errors.CodeNotFound, codes.NotFound},
		{errors.CodeInvalidArgument, codes.InvalidArgument},
		{errors.CodeAlreadyExists, codes.AlreadyExists},
		{errors.CodeFailedPrecondition, codes.FailedPrecondition},
		{errors.CodeInternal, codes.Internal},
		{errors.CodeUnavailable, codes.Unavailable},
	}

	for _, tc := range testCases {
		s.Run(string(tc.code), func() {
			s.Equal(tc.expected, tc.code.GRPCCode())
		})
	}
}
