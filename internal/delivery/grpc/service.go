package grpc

import (
	"context"
	"encoding/json"

	"github.com/vogiaan1904/draftqueue/internal/service"
	"github.com/vogiaan1904/draftqueue/pkg/logger"
	resp "github.com/vogiaan1904/draftqueue/pkg/response"
	"google.golang.org/protobuf/types/known/structpb"
)

type grpcService struct {
	svc service.DraftQueueService
	l   logger.Logger
}

func NewGrpcService(svc service.DraftQueueService, l logger.Logger) DraftQueueServiceServer {
	return &grpcService{
		svc: svc,
		l:   l,
	}
}

func (s *grpcService) RegisterPlayer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := service.RegisterPlayerInput{
		PlayerID: stringField(req, "player_id"),
		QueueID:  stringField(req, "queue_id"),
	}
	if in.QueueID == "" {
		return nil, resp.ParseGRPCError(errMissingField("queue_id"))
	}

	if err := s.svc.RegisterPlayer(ctx, in); err != nil {
		s.l.Warnf(ctx, "delivery.grpc.RegisterPlayer: %v", err)
		return nil, resp.ParseGRPCError(s.mapGRPCError(err))
	}

	return ack()
}

func (s *grpcService) UnregisterPlayer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := service.UnregisterPlayerInput{
		PlayerID: stringField(req, "player_id"),
		QueueID:  stringField(req, "queue_id"),
	}

	if err := s.svc.UnregisterPlayer(ctx, in); err != nil {
		s.l.Warnf(ctx, "delivery.grpc.UnregisterPlayer: %v", err)
		return nil, resp.ParseGRPCError(s.mapGRPCError(err))
	}

	return ack()
}

func (s *grpcService) GetQueueStatus(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	st, err := s.svc.GetQueueStatus(ctx)
	if err != nil {
		s.l.Errorf(ctx, "delivery.grpc.GetQueueStatus: %v", err)
		return nil, resp.ParseGRPCError(s.mapGRPCError(err))
	}

	return s.toStruct(ctx, st)
}

func (s *grpcService) ListQueues(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return s.toStruct(ctx, map[string]any{"queues": s.svc.ListQueues(ctx)})
}

// toStruct converts v through its JSON form so field names match the HTTP API.
func (s *grpcService) toStruct(ctx context.Context, v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		s.l.Errorf(ctx, "delivery.grpc.toStruct: %v", err)
		return nil, resp.ParseGRPCError(err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		s.l.Errorf(ctx, "delivery.grpc.toStruct: %v", err)
		return nil, resp.ParseGRPCError(err)
	}

	out, err := structpb.NewStruct(m)
	if err != nil {
		s.l.Errorf(ctx, "delivery.grpc.toStruct: %v", err)
		return nil, resp.ParseGRPCError(err)
	}
	return out, nil
}

func ack() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"message": "ok"})
}

func stringField(req *structpb.Struct, name string) string {
	if req == nil {
		return ""
	}
	v, ok := req.GetFields()[name]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}
