package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "docshare.links.v1.LinkService"

const (
	MethodPing       = "/" + serviceName + "/Ping"
	MethodMintLink   = "/" + serviceName + "/MintLink"
	MethodRedeemLink = "/" + serviceName + "/RedeemLink"
	MethodDownload   = "/" + serviceName + "/Download"
)

// LinkServiceServer is implemented by GRPCServer.
type LinkServiceServer interface {
	Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	MintLink(context.Context, *wrapperspb.Int64Value) (*wrapperspb.StringValue, error)
	RedeemLink(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Download(*wrapperspb.StringValue, grpc.ServerStreamingServer[wrapperspb.BytesValue]) error
}

func pingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LinkServiceServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodPing}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(LinkServiceServer).Ping(ctx, req.(*emptypb.Empty))
	})
}

func mintLinkHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LinkServiceServer).MintLink(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodMintLink}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(LinkServiceServer).MintLink(ctx, req.(*wrapperspb.Int64Value))
	})
}

func redeemLinkHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LinkServiceServer).RedeemLink(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodRedeemLink}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(LinkServiceServer).RedeemLink(ctx, req.(*wrapperspb.StringValue))
	})
}

func downloadHandler(srv any, stream grpc.ServerStream) error {
	in := new(wrapperspb.StringValue)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(LinkServiceServer).Download(in, &grpc.GenericServerStream[wrapperspb.StringValue, wrapperspb.BytesValue]{ServerStream: stream})
}

// LinkServiceDesc describes the link service for grpc.Server.RegisterService.
var LinkServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*LinkServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: pingHandler},
		{MethodName: "MintLink", Handler: mintLinkHandler},
		{MethodName: "RedeemLink", Handler: redeemLinkHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Download", Handler: downloadHandler, ServerStreams: true},
	},
	Metadata: "docshare/links/v1/links.proto",
}

// LinkServiceClient calls the link service.
type LinkServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewLinkServiceClient(cc grpc.ClientConnInterface) *LinkServiceClient {
	return &LinkServiceClient{cc: cc}
}

func (c *LinkServiceClient) Ping(ctx context.Context, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, MethodPing, &emptypb.Empty{}, out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

func (c *LinkServiceClient) MintLink(ctx context.Context, fileID int64, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, MethodMintLink, wrapperspb.Int64(fileID), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

func (c *LinkServiceClient) RedeemLink(ctx context.Context, linkToken string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodRedeemLink, wrapperspb.String(linkToken), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Download opens a server stream of content chunks for a link.
func (c *LinkServiceClient) Download(ctx context.Context, linkToken string, opts ...grpc.CallOption) (grpc.ServerStreamingClient[wrapperspb.BytesValue], error) {
	stream, err := c.cc.NewStream(ctx, &LinkServiceDesc.Streams[0], MethodDownload, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[wrapperspb.StringValue, wrapperspb.BytesValue]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(wrapperspb.String(linkToken)); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
