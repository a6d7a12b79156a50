package errors

import (
	"context"
	"errors"
)

// Metadata keys set by ParseError
const (
	MetaFile     = "file"
	MetaFragment = "fragment"
)

// GetCode classifies err. The outermost *Error in the chain wins; bare
// context errors keep their own codes and anything else is internal.
func GetCode(err error) Code {
	if err == nil {
		return CodeOK
	}
	if e, ok := asError(err); ok {
		return e.Code
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	default:
		return CodeInternal
	}
}

// GetMeta returns the metadata of the outermost *Error in the chain
func GetMeta(err error) map[string]any {
	if e, ok := asError(err); ok {
		return e.Meta
	}
	return nil
}

// Location returns the file and fragment a parse error points at
func Location(err error) (file, fragment string) {
	meta := GetMeta(err)
	file, _ = meta[MetaFile].(string)
	fragment, _ = meta[MetaFragment].(string)
	return file, fragment
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func hasCode(code Code) func(error) bool {
	return func(err error) bool { return GetCode(err) == code }
}

// Code predicates
var (
	IsNotFound           = hasCode(CodeNotFound)
	IsInvalidArgument    = hasCode(CodeInvalidArgument)
	IsAlreadyExists      = hasCode(CodeAlreadyExists)
	IsFailedPrecondition = hasCode(CodeFailedPrecondition)
	IsUnavailable        = hasCode(CodeUnavailable)
	IsDeadlineExceeded   = hasCode(CodeDeadlineExceeded)
)
