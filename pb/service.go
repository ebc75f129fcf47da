// Package pb holds the gRPC service the session server speaks.
//
// Messages are protobuf well-known types: session ids travel as
// StringValue and game states as Struct (see EncodeState).
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "stacker.v1.Stacker"

	CreateSessionMethod = "/" + ServiceName + "/CreateSession"
	CommandMethod       = "/" + ServiceName + "/Command"
	WatchMethod         = "/" + ServiceName + "/Watch"
	CloseSessionMethod  = "/" + ServiceName + "/CloseSession"
)

// StackerClient is the client API for the Stacker service.
type StackerClient interface {
	// CreateSession starts a new game and returns its id.
	CreateSession(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	// Command applies an action (see NewCommand) and returns the resulting state.
	Command(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	// Watch streams every state of the session until the game is over.
	Watch(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error)
	// CloseSession stops the game and forgets the session.
	CloseSession(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type stackerClient struct {
	cc grpc.ClientConnInterface
}

func NewStackerClient(cc grpc.ClientConnInterface) StackerClient {
	return &stackerClient{cc}
}

func (c *stackerClient) CreateSession(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, CreateSessionMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *stackerClient) Command(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CommandMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *stackerClient) Watch(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], WatchMethod, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[wrapperspb.StringValue, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *stackerClient) CloseSession(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, CloseSessionMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// StackerServer is the server API for the Stacker service.
// Implementations must embed UnimplementedStackerServer.
type StackerServer interface {
	CreateSession(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	Command(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Watch(*wrapperspb.StringValue, grpc.ServerStreamingServer[structpb.Struct]) error
	CloseSession(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	mustEmbedUnimplementedStackerServer()
}

type UnimplementedStackerServer struct{}

func (UnimplementedStackerServer) CreateSession(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateSession not implemented")
}

func (UnimplementedStackerServer) Command(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Command not implemented")
}

func (UnimplementedStackerServer) Watch(*wrapperspb.StringValue, grpc.ServerStreamingServer[structpb.Struct]) error {
	return status.Error(codes.Unimplemented, "method Watch not implemented")
}

func (UnimplementedStackerServer) CloseSession(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method CloseSession not implemented")
}

func (UnimplementedStackerServer) mustEmbedUnimplementedStackerServer() {}

func RegisterStackerServer(s grpc.ServiceRegistrar, srv StackerServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unaryHandler adapts a typed unary method to grpc.MethodDesc.
func unaryHandler[Req any, Res any](method string, call func(StackerServer, context.Context, *Req) (*Res, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StackerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(StackerServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	m := new(wrapperspb.StringValue)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(StackerServer).Watch(m, &grpc.GenericServerStream[wrapperspb.StringValue, structpb.Struct]{ServerStream: stream})
}

// ServiceDesc is the grpc.ServiceDesc for the Stacker service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StackerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateSession",
			Handler:    unaryHandler(CreateSessionMethod, StackerServer.CreateSession),
		},
		{
			MethodName: "Command",
			Handler:    unaryHandler(CommandMethod, StackerServer.Command),
		},
		{
			MethodName: "CloseSession",
			Handler:    unaryHandler(CloseSessionMethod, StackerServer.CloseSession),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "stacker/v1/stacker.proto",
}
