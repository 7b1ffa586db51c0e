package metricsv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	MetricSets_Dir_FullMethodName    = "/metricls.v1.MetricSets/Dir"
	MetricSets_Lookup_FullMethodName = "/metricls.v1.MetricSets/Lookup"
	MetricSets_Update_FullMethodName = "/metricls.v1.MetricSets/Update"
	MetricSets_Ping_FullMethodName   = "/metricls.v1.MetricSets/Ping"
)

// MetricSetsClient is the client API for the MetricSets service.
type MetricSetsClient interface {
	Dir(ctx context.Context, in *DirRequest, opts ...grpc.CallOption) (MetricSets_DirClient, error)
	Lookup(ctx context.Context, in *LookupRequest, opts ...grpc.CallOption) (*LookupReply, error)
	Update(ctx context.Context, in *UpdateRequest, opts ...grpc.CallOption) (*UpdateReply, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingReply, error)
}

type metricSetsClient struct {
	cc grpc.ClientConnInterface
}

// NewMetricSetsClient wraps cc. Every call is sent with the metricwire
// content-subtype.
func NewMetricSetsClient(cc grpc.ClientConnInterface) MetricSetsClient {
	return &metricSetsClient{cc}
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *metricSetsClient) Dir(ctx context.Context, in *DirRequest, opts ...grpc.CallOption) (MetricSets_DirClient, error) {
	stream, err := c.cc.NewStream(ctx, &MetricSets_ServiceDesc.Streams[0], MetricSets_Dir_FullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	x := &metricSetsDirClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// MetricSets_DirClient receives directory pages.
type MetricSets_DirClient interface {
	Recv() (*DirPage, error)
	grpc.ClientStream
}

type metricSetsDirClient struct {
	grpc.ClientStream
}

func (x *metricSetsDirClient) Recv() (*DirPage, error) {
	m := new(DirPage)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *metricSetsClient) Lookup(ctx context.Context, in *LookupRequest, opts ...grpc.CallOption) (*LookupReply, error) {
	out := new(LookupReply)
	if err := c.cc.Invoke(ctx, MetricSets_Lookup_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *metricSetsClient) Update(ctx context.Context, in *UpdateRequest, opts ...grpc.CallOption) (*UpdateReply, error) {
	out := new(UpdateReply)
	if err := c.cc.Invoke(ctx, MetricSets_Update_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *metricSetsClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingReply, error) {
	out := new(PingReply)
	if err := c.cc.Invoke(ctx, MetricSets_Ping_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// MetricSetsServer is the server API for the MetricSets service.
type MetricSetsServer interface {
	Dir(*DirRequest, MetricSets_DirServer) error
	Lookup(context.Context, *LookupRequest) (*LookupReply, error)
	Update(context.Context, *UpdateRequest) (*UpdateReply, error)
	Ping(context.Context, *PingRequest) (*PingReply, error)
}

// UnimplementedMetricSetsServer can be embedded to have forward compatible implementations.
type UnimplementedMetricSetsServer struct{}

func (UnimplementedMetricSetsServer) Dir(*DirRequest, MetricSets_DirServer) error {
	return status.Error(codes.Unimplemented, "method Dir not implemented")
}

func (UnimplementedMetricSetsServer) Lookup(context.Context, *LookupRequest) (*LookupReply, error) {
	return nil, status.Error(codes.Unimplemented, "method Lookup not implemented")
}

func (UnimplementedMetricSetsServer) Update(context.Context, *UpdateRequest) (*UpdateReply, error) {
	return nil, status.Error(codes.Unimplemented, "method Update not implemented")
}

func (UnimplementedMetricSetsServer) Ping(context.Context, *PingRequest) (*PingReply, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

// MetricSets_DirServer sends directory pages.
type MetricSets_DirServer interface {
	Send(*DirPage) error
	grpc.ServerStream
}

type metricSetsDirServer struct {
	grpc.ServerStream
}

func (x *metricSetsDirServer) Send(m *DirPage) error {
	return x.ServerStream.SendMsg(m)
}

// RegisterMetricSetsServer attaches srv to s.
func RegisterMetricSetsServer(s grpc.ServiceRegistrar, srv MetricSetsServer) {
	s.RegisterService(&MetricSets_ServiceDesc, srv)
}

func _MetricSets_Dir_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(DirRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(MetricSetsServer).Dir(m, &metricSetsDirServer{stream})
}

func _MetricSets_Lookup_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(LookupRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MetricSetsServer).Lookup(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MetricSets_Lookup_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MetricSetsServer).Lookup(ctx, req.(*LookupRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MetricSets_Update_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(UpdateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MetricSetsServer).Update(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MetricSets_Update_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MetricSetsServer).Update(ctx, req.(*UpdateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MetricSets_Ping_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MetricSetsServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MetricSets_Ping_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MetricSetsServer).Ping(ctx, req.(*PingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// MetricSets_ServiceDesc is the grpc.ServiceDesc for the MetricSets service.
var MetricSets_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "metricls.v1.MetricSets",
	HandlerType: (*MetricSetsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Lookup", Handler: _MetricSets_Lookup_Handler},
		{MethodName: "Update", Handler: _MetricSets_Update_Handler},
		{MethodName: "Ping", Handler: _MetricSets_Ping_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Dir", Handler: _MetricSets_Dir_Handler, ServerStreams: true},
	},
	Metadata: "metricls/v1/metricsets.proto",
}
