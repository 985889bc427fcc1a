package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/menu-pricer/internal/async"
	"github.com/joseph-ayodele/menu-pricer/internal/common"
)

// IngestPath queues a file on the daemon's filesystem: {path, force (bool)}.
func (s *InvoiceService) IngestPath(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.queue == nil {
		return nil, status.Error(codes.Unimplemented, "ingest queue is not configured")
	}
	f := req.GetFields()
	path := strings.TrimSpace(f["path"].GetStringValue())
	v := common.NewValidator().Field("path", path, common.Required)
	if err := common.ValidateAndReturnError(v); err != nil {
		s.logger.Error("ingest request missing path")
		return nil, err
	}

	traceID := common.RequestIDFromContext(ctx)
	if traceID == "" {
		traceID = uuid.NewString()
	}
	job := async.Job{
		Path:        path,
		Force:       f["force"].GetBoolValue(),
		SubmittedAt: time.Now(),
		TraceID:     traceID,
	}
	s.logger.Info("starting file ingest", "path", path, "force", job.Force, "trace_id", traceID)

	if err := s.queue.Enqueue(ctx, job); err != nil {
		if errors.Is(err, async.ErrQueueClosed) {
			return nil, status.Error(codes.Unavailable, err.Error())
		}
		return nil, status.FromContextError(err).Err()
	}
	return structpb.NewStruct(map[string]any{"queued": true, "trace_id": traceID})
}
