package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "draftqueue.v1.DraftQueueService"

// DraftQueueServiceServer is the gRPC surface of the draft queue. Requests and
// responses are google.protobuf.Struct messages carrying JSON-shaped fields.
type DraftQueueServiceServer interface {
	RegisterPlayer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UnregisterPlayer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetQueueStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListQueues(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv DraftQueueServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + serviceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DraftQueueServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DraftQueueServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var DraftQueueServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*DraftQueueServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RegisterPlayer",
			Handler:    unaryHandler("RegisterPlayer", DraftQueueServiceServer.RegisterPlayer),
		},
		{
			MethodName: "UnregisterPlayer",
			Handler:    unaryHandler("UnregisterPlayer", DraftQueueServiceServer.UnregisterPlayer),
		},
		{
			MethodName: "GetQueueStatus",
			Handler:    unaryHandler("GetQueueStatus", DraftQueueServiceServer.GetQueueStatus),
		},
		{
			MethodName: "ListQueues",
			Handler:    unaryHandler("ListQueues", DraftQueueServiceServer.ListQueues),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "draftqueue/v1/draftqueue.proto",
}

func RegisterDraftQueueServiceServer(s grpc.ServiceRegistrar, srv DraftQueueServiceServer) {
	s.RegisterService(&DraftQueueServiceDesc, srv)
}

// DraftQueueClient calls a DraftQueueService over conn.
type DraftQueueClient struct {
	cc grpc.ClientConnInterface
}

func NewDraftQueueClient(cc grpc.ClientConnInterface) *DraftQueueClient {
	return &DraftQueueClient{cc: cc}
}

func (c *DraftQueueClient) RegisterPlayer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "RegisterPlayer", in, opts...)
}

func (c *DraftQueueClient) UnregisterPlayer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "UnregisterPlayer", in, opts...)
}

func (c *DraftQueueClient) GetQueueStatus(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetQueueStatus", in, opts...)
}

func (c *DraftQueueClient) ListQueues(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListQueues", in, opts...)
}

func (c *DraftQueueClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
