package errors

// Code classifies an error. Every code has a gRPC status counterpart.
type Code string

const (
	CodeOK Code = "OK"

	// CodeCanceled is a caller giving up, usually the server shutting down
	CodeCanceled Code = "CANCELED"

	// CodeInvalidArgument covers bad requests and malformed definitions
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// CodeDeadlineExceeded is work queued on the tick loop outliving its caller
	CodeDeadlineExceeded Code = "DEADLINE_EXCEEDED"

	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"

	// CodeFailedPrecondition is a world that cannot take the request right
	// now: no portal, history disabled, service shut down
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"

	CodeInternal Code = "INTERNAL"

	// CodeUnavailable is the tick loop or redis refusing work
	CodeUnavailable Code = "UNAVAILABLE"
)

// String returns the string representation of the code
func (c Code) String() string {
	return string(c)
}
