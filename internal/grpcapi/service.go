// Package grpcapi serves the summon engine over gRPC. Messages are
// google.protobuf.Struct so no generated code is needed; the descriptor
// below plays the role of the generated registration code.
package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/summon-backend/internal/summon"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "summon.v1.SummonService"

const (
	summonMethod = "/" + ServiceName + "/Summon"
	oddsMethod   = "/" + ServiceName + "/Odds"
)

// SummonServiceServer is the server API of summon.v1.SummonService.
type SummonServiceServer interface {
	// Summon takes {playerId, level?} and returns the created soldier.
	Summon(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	// Odds takes {level?} and returns the adjusted draw probabilities.
	Odds(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc registers SummonServiceServer on a grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SummonServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Summon", Handler: unaryHandler(summonMethod, SummonServiceServer.Summon)},
		{MethodName: "Odds", Handler: unaryHandler(oddsMethod, SummonServiceServer.Odds)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "summon/v1/summon.proto",
}

func unaryHandler(fullMethod string, call func(SummonServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SummonServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SummonServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Engines yields the engine in service.
type Engines interface {
	Engine() *summon.Engine
}

// Levels resolves a player's character level when the request has none.
type Levels interface {
	CharacterLevel(ctx context.Context, playerID int64) (int, error)
}

// Service implements SummonServiceServer on top of the engine.
type Service struct {
	engines Engines
	levels  Levels
}

// NewService creates the gRPC service.
func NewService(engines Engines, levels Levels) *Service {
	return &Service{engines: engines, levels: levels}
}

// Summon creates one soldier for the player.
func (s *Service) Summon(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "summon request is required")
	}
	fields := in.GetFields()
	pid, ok := intField(fields, "playerId")
	if !ok || pid <= 0 {
		return nil, status.Error(codes.InvalidArgument, "playerId must be a positive integer")
	}

	level, ok := intField(fields, "level")
	if _, present := fields["level"]; present && !ok {
		return nil, status.Error(codes.InvalidArgument, "level must be an integer")
	}
	if !ok {
		lvl, err := s.levels.CharacterLevel(ctx, pid)
		if err != nil {
			return nil, toStatus(fmt.Errorf("%w: character level: %w", summon.ErrCollaboratorUnavailable, err))
		}
		level = int64(lvl)
	}

	sol, err := s.engines.Engine().Summon(ctx, pid, int(level))
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(sol)
}

// Odds reports the weights the draw uses at the given level (default 1).
func (s *Service) Odds(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	level, ok := intField(in.GetFields(), "level")
	if !ok {
		level = 1
	}
	return toStruct(summon.ComputeOdds(s.engines.Engine().Config(), int(level)))
}

// intField reads an integral number value.
func intField(fields map[string]*structpb.Value, key string) (int64, bool) {
	v, ok := fields[key]
	if !ok {
		return 0, false
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false
	}
	f := n.NumberValue
	if f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}

// toStruct converts a JSON-tagged value into a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// toStatus maps engine errors to gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, summon.ErrConfiguration):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, summon.ErrCollaboratorUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// Client is a thin client for summon.v1.SummonService.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

// Summon calls SummonService/Summon.
func (c *Client) Summon(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, summonMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Odds calls SummonService/Odds.
func (c *Client) Odds(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, oddsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
