package daemon

import (
	"context"

	metricsv1 "metricls/api/metricsv1"
	"metricls/internal/registry"
	"metricls/internal/xprt"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultPageSize = 16

// service implements the MetricSets gRPC service backed by the registry.
type service struct {
	metricsv1.UnimplementedMetricSetsServer

	reg      *registry.Registry
	pageSize int
	log      zerolog.Logger
}

func newService(reg *registry.Registry, pageSize int, log zerolog.Logger) *service {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &service{reg: reg, pageSize: pageSize, log: log}
}

func (s *service) Ping(ctx context.Context, _ *metricsv1.PingRequest) (*metricsv1.PingReply, error) {
	return &metricsv1.PingReply{Ok: "pong"}, nil
}

// Dir streams the catalog in pages of at most pageSize names. An empty
// catalog still gets one final page.
func (s *service) Dir(_ *metricsv1.DirRequest, stream metricsv1.MetricSets_DirServer) error {
	names := s.reg.Names()
	s.log.Debug().Int("sets", len(names)).Msg("dir")
	for {
		n := min(len(names), s.pageSize)
		page := &metricsv1.DirPage{Names: names[:n], More: n < len(names)}
		if err := stream.Send(page); err != nil {
			return err
		}
		names = names[n:]
		if !page.More {
			return nil
		}
	}
}

func (s *service) Lookup(ctx context.Context, req *metricsv1.LookupRequest) (*metricsv1.LookupReply, error) {
	if req.Name == "" {
		return nil, status.Error(codes.InvalidArgument, "set name is required")
	}
	set, ok := s.reg.Get(req.Name)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "set %q not found", req.Name)
	}
	layout := set.Layout()
	resp := &metricsv1.LookupReply{
		Name:      set.Name,
		MetaSize:  layout.MetaSize,
		MetaInuse: layout.MetaInuse,
		MetaGN:    set.MetaGN,
		DataSize:  layout.DataSize,
		Metrics:   make([]*metricsv1.MetricDesc, 0, len(set.Schema)),
	}
	for _, m := range set.Schema {
		t, err := xprt.ParseValueType(m.Type)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "set %q: %v", set.Name, err)
		}
		resp.Metrics = append(resp.Metrics, &metricsv1.MetricDesc{Name: m.Name, Type: uint32(t)})
	}
	return resp, nil
}

func (s *service) Update(ctx context.Context, req *metricsv1.UpdateRequest) (*metricsv1.UpdateReply, error) {
	if req.Name == "" {
		return nil, status.Error(codes.InvalidArgument, "set name is required")
	}
	set, ok := s.reg.Get(req.Name)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "set %q not found", req.Name)
	}
	return &metricsv1.UpdateReply{
		MetaGN:    set.MetaGN,
		DataGN:    set.DataGN,
		DataInuse: set.Layout().DataInuse,
		Values:    set.Values,
	}, nil
}
