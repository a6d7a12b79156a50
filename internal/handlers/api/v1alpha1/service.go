// Package v1alpha1 serves the encounter status API over gRPC. Messages are
// google.protobuf.Struct values so the service needs no generated code.
package v1alpha1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// EncounterServiceName is the fully qualified gRPC service name
const EncounterServiceName = "endguard.api.v1alpha1.EncounterService"

// Method names
const (
	MethodGetWorldStatus  = "GetWorldStatus"
	MethodStartRespawn    = "StartRespawn"
	MethodListLootHistory = "ListLootHistory"
)

// EncounterServiceServer is the server side of the encounter service
type EncounterServiceServer interface {
	GetWorldStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	StartRespawn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListLootHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// EncounterServiceDesc describes the encounter service to grpc.Server
var EncounterServiceDesc = grpc.ServiceDesc{
	ServiceName: EncounterServiceName,
	HandlerType: (*EncounterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodGetWorldStatus, EncounterServiceServer.GetWorldStatus),
		unary(MethodStartRespawn, EncounterServiceServer.StartRespawn),
		unary(MethodListLootHistory, EncounterServiceServer.ListLootHistory),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "endguard/api/v1alpha1/encounter.proto",
}

// RegisterEncounterServiceServer registers srv with s
func RegisterEncounterServiceServer(s grpc.ServiceRegistrar, srv EncounterServiceServer) {
	s.RegisterService(&EncounterServiceDesc, srv)
}

type unaryCall func(EncounterServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryCall) grpc.MethodDesc {
	fullMethod := "/" + EncounterServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(EncounterServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(EncounterServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// EncounterClient calls the encounter service
type EncounterClient struct {
	conn grpc.ClientConnInterface
}

// NewEncounterClient creates a client over conn
func NewEncounterClient(conn grpc.ClientConnInterface) *EncounterClient {
	return &EncounterClient{conn: conn}
}

// GetWorldStatus calls EncounterService.GetWorldStatus
func (c *EncounterClient) GetWorldStatus(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetWorldStatus, req, opts...)
}

// StartRespawn calls EncounterService.StartRespawn
func (c *EncounterClient) StartRespawn(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodStartRespawn, req, opts...)
}

// ListLootHistory calls EncounterService.ListLootHistory
func (c *EncounterClient) ListLootHistory(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListLootHistory, req, opts...)
}

func (c *EncounterClient) invoke(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+EncounterServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
