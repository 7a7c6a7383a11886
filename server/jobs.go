package server

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/theleeeo/pgjobq/gen/jobs/v1"
	"github.com/theleeeo/pgjobq/jobqueue"
	"github.com/theleeeo/pgjobq/model"
	"github.com/theleeeo/pgjobq/store"
)

// JobServer implements the gRPC JobService over a Queue.
type JobServer struct {
	jobs.UnimplementedJobServiceServer

	queue *jobqueue.Queue
}

func NewJobServer(q *jobqueue.Queue) *JobServer {
	return &JobServer{queue: q}
}

func (s *JobServer) Enqueue(ctx context.Context, req *jobs.EnqueueRequest) (*jobs.EnqueueResponse, error) {
	if req.GetName() == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}

	var args json.RawMessage
	if req.GetArgs() != nil {
		b, err := protojson.Marshal(req.GetArgs())
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "encode args: %v", err)
		}
		args = b
	}

	opts := &jobqueue.EnqueueOptions{}
	if req.GetRetries() != 0 {
		retries := int(req.GetRetries())
		opts.Retries = &retries
	}
	if ts := req.GetStartAfter(); ts != nil {
		if err := ts.CheckValid(); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "start_after: %v", err)
		}
		t := ts.AsTime()
		opts.StartAfter = &t
	}

	id, err := s.queue.Enqueue(ctx, req.GetName(), args, opts)
	if err != nil {
		return nil, grpcErr(err)
	}
	return &jobs.EnqueueResponse{Id: id}, nil
}

func (s *JobServer) GetJob(ctx context.Context, req *jobs.GetJobRequest) (*jobs.Job, error) {
	j, err := s.queue.Get(ctx, req.GetId())
	if err != nil {
		return nil, grpcErr(err)
	}
	return toJob(j)
}

func (s *JobServer) Stats(ctx context.Context, req *jobs.StatsRequest) (*jobs.Stats, error) {
	c, err := s.queue.Counts(ctx, req.GetName())
	if err != nil {
		return nil, grpcErr(err)
	}
	return &jobs.Stats{
		Name:      req.GetName(),
		Total:     c.Total,
		Pending:   c.ByState[model.StatePending],
		Running:   c.ByState[model.StateRunning],
		Completed: c.ByState[model.StateCompleted],
		Dead:      c.ByState[model.StateDead],
		Delayed:   c.Delayed,
	}, nil
}

func (s *JobServer) Requeue(ctx context.Context, req *jobs.RequeueRequest) (*jobs.RequeueResponse, error) {
	id, err := s.queue.Requeue(ctx, req.GetId())
	if err != nil {
		return nil, grpcErr(err)
	}
	return &jobs.RequeueResponse{Id: id}, nil
}

func (s *JobServer) Ping(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.queue.Ping(ctx); err != nil {
		return nil, grpcErr(err)
	}
	return &emptypb.Empty{}, nil
}

func toJob(j model.Job) (*jobs.Job, error) {
	out := &jobs.Job{
		Id:          j.ID,
		Name:        j.Name,
		State:       string(j.State()),
		CreatedAt:   timestamppb.New(j.CreatedAt),
		StartAfter:  timestamppb.New(j.StartAfter),
		Attempts:    int32(j.Attempts),
		Retries:     int32(j.Retries),
		StartedAt:   timestamp(j.StartedAt),
		CompletedAt: timestamp(j.CompletedAt),
		Error:       j.LastError(),
	}
	if len(j.Args) > 0 {
		out.Args = &structpb.Struct{}
		if err := protojson.Unmarshal(j.Args, out.Args); err != nil {
			return nil, status.Errorf(codes.Internal, "decode args of job %d: %v", j.ID, err)
		}
	}
	return out, nil
}

func timestamp(t *time.Time) *timestamppb.Timestamp {
	if t == nil {
		return nil
	}
	return timestamppb.New(*t)
}

func grpcErr(err error) error {
	switch {
	case errors.Is(err, jobqueue.ErrInvalidJob):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, jobqueue.ErrNotDead):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, jobqueue.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
