package envserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "labyrinth.v1.EnvService"

// Method names of the environment service. Requests and replies are
// google.protobuf.Struct messages; field names are listed in converters.go.
const (
	MethodCreateEnv = "CreateEnv"
	MethodReset     = "Reset"
	MethodStep      = "Step"
	MethodCloseEnv  = "CloseEnv"
	MethodGetEnv    = "GetEnv"
)

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// EnvServiceServer is the server API of the environment service.
type EnvServiceServer interface {
	CreateEnv(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Reset(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Step(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CloseEnv(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEnv(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structCall func(EnvServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call structCall) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EnvServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(EnvServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// EnvServiceDesc describes the environment service for grpc.Server.
var EnvServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EnvServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodCreateEnv, Handler: unaryHandler(MethodCreateEnv, EnvServiceServer.CreateEnv)},
		{MethodName: MethodReset, Handler: unaryHandler(MethodReset, EnvServiceServer.Reset)},
		{MethodName: MethodStep, Handler: unaryHandler(MethodStep, EnvServiceServer.Step)},
		{MethodName: MethodCloseEnv, Handler: unaryHandler(MethodCloseEnv, EnvServiceServer.CloseEnv)},
		{MethodName: MethodGetEnv, Handler: unaryHandler(MethodGetEnv, EnvServiceServer.GetEnv)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "labyrinth/v1/env.proto",
}

func RegisterEnvServiceServer(s grpc.ServiceRegistrar, srv EnvServiceServer) {
	s.RegisterService(&EnvServiceDesc, srv)
}

// EnvServiceClient is the raw client of the environment service.
type EnvServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewEnvServiceClient(cc grpc.ClientConnInterface) *EnvServiceClient {
	return &EnvServiceClient{cc: cc}
}

func (c *EnvServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EnvServiceClient) CreateEnv(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCreateEnv, in, opts...)
}

func (c *EnvServiceClient) Reset(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodReset, in, opts...)
}

func (c *EnvServiceClient) Step(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodStep, in, opts...)
}

func (c *EnvServiceClient) CloseEnv(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCloseEnv, in, opts...)
}

func (c *EnvServiceClient) GetEnv(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetEnv, in, opts...)
}
