package errors

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var toGRPC = map[Code]codes.Code{
	CodeOK:                 codes.OK,
	CodeCanceled:           codes.Canceled,
	CodeInvalidArgument:    codes.InvalidArgument,
	CodeDeadlineExceeded:   codes.DeadlineExceeded,
	CodeNotFound:           codes.NotFound,
	CodeAlreadyExists:      codes.AlreadyExists,
	CodeFailedPrecondition: codes.FailedPrecondition,
	CodeInternal:           codes.Internal,
	CodeUnavailable:        codes.Unavailable,
}

var fromGRPC = func() map[codes.Code]Code {
	m := make(map[codes.Code]Code, len(toGRPC))
	for code, grpcCode := range toGRPC {
		m[grpcCode] = code
	}
	return m
}()

// GRPCCode returns the status code c is sent as
func (c Code) GRPCCode() codes.Code {
	if grpcCode, ok := toGRPC[c]; ok {
		return grpcCode
	}
	return codes.Unknown
}

// ToGRPCError converts err into a status error for a handler to return.
// Metadata rides along as a structpb.Struct detail. Status errors pass through.
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	e, ok := asError(err)
	if !ok {
		return status.Error(GetCode(err).GRPCCode(), err.Error())
	}

	st := status.New(e.Code.GRPCCode(), e.Message)
	if len(e.Meta) > 0 {
		if detailed, detailErr := st.WithDetails(metaToStruct(e.Meta)); detailErr == nil {
			st = detailed
		}
	}
	return st.Err()
}

// FromGRPCError turns a status error received by a client back into an *Error.
// Codes without a counterpart become internal.
func FromGRPCError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	code, known := fromGRPC[st.Code()]
	if !known {
		code = CodeInternal
	}
	out := New(code, st.Message())
	for _, detail := range st.Details() {
		if meta, ok := detail.(*structpb.Struct); ok {
			out.Meta = meta.AsMap()
			break
		}
	}
	return out
}

// metaToStruct falls back to the printed form for values structpb rejects
func metaToStruct(meta map[string]any) *structpb.Struct {
	fields := make(map[string]*structpb.Value, len(meta))
	for k, v := range meta {
		value, err := structpb.NewValue(v)
		if err != nil {
			value = structpb.NewStringValue(fmt.Sprint(v))
		}
		fields[k] = value
	}
	return &structpb.Struct{Fields: fields}
}
