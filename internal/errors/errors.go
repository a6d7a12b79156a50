package errors

import (
	"fmt"
	"maps"
	"strings"
)

// Error is the structured error every layer returns. Meta travels to gRPC
// clients as a status detail.
type Error struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Error renders "CODE: message" followed by the cause when there is one
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code, so errors.Is(err, NotFound(""))
// works across wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMeta sets key and returns e for chaining
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	e.Meta[key] = value
	return e
}

// New creates an error without a cause
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap adds context to err. The code and metadata of err carry over; a
// foreign error is classified by GetCode.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    GetCode(err),
		Message: message,
		Cause:   err,
		Meta:    maps.Clone(GetMeta(err)),
	}
}

// Wrapf is Wrap with a formatted message
func Wrapf(err error, format string, args ...any) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps err and reclassifies it
func WrapWithCode(err error, code Code, message string) *Error {
	wrapped := Wrap(err, message)
	if wrapped != nil {
		wrapped.Code = code
	}
	return wrapped
}

// ParseError reports a malformed definition file. fragment is the offending
// piece of text, when the parser could isolate it.
func ParseError(file, fragment string, cause error) *Error {
	message := "failed to parse " + file
	err := WrapWithCode(cause, CodeInvalidArgument, message)
	if err == nil {
		err = New(CodeInvalidArgument, message)
	}
	err.WithMeta(MetaFile, file)
	if fragment != "" {
		err.WithMeta(MetaFragment, fragment)
	}
	return err
}

func NotFound(message string) *Error { return New(CodeNotFound, message) }

func NotFoundf(format string, args ...any) *Error {
	return New(CodeNotFound, fmt.Sprintf(format, args...))
}

func InvalidArgument(message string) *Error { return New(CodeInvalidArgument, message) }

func InvalidArgumentf(format string, args ...any) *Error {
	return New(CodeInvalidArgument, fmt.Sprintf(format, args...))
}

func AlreadyExistsf(format string, args ...any) *Error {
	return New(CodeAlreadyExists, fmt.Sprintf(format, args...))
}

func FailedPrecondition(message string) *Error { return New(CodeFailedPrecondition, message) }

func FailedPreconditionf(format string, args ...any) *Error {
	return New(CodeFailedPrecondition, fmt.Sprintf(format, args...))
}

func Internal(message string) *Error { return New(CodeInternal, message) }

func Unavailable(message string) *Error { return New(CodeUnavailable, message) }

func DeadlineExceededf(format string, args ...any) *Error {
	return New(CodeDeadlineExceeded, fmt.Sprintf(format, args...))
}
