package job

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/profile-rag/internal/adapter/utils"
	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/domain/jobModel"
	"github.com/akolanti/profile-rag/internal/metrics"
	"github.com/akolanti/profile-rag/pkg/logger_i"
)

// ErrQueueFull is returned by Submit when BufferLimit runs are already waiting.
var ErrQueueFull = errors.New("ingestion queue is full")

// Service owns the queue between the HTTP handlers and the worker pool.
type Service struct {
	JobChannel chan jobModel.Job
	JobStore   jobModel.JobStore
	logger     *logger_i.Logger
}

func NewService(jobStore jobModel.JobStore, buffer int) *Service {
	return &Service{
		JobChannel: make(chan jobModel.Job, buffer),
		JobStore:   jobStore,
		logger:     logger_i.NewLogger("job_service"),
	}
}

// Submit records a queued job and hands it to the workers. It never blocks:
// a full queue is reported to the caller instead.
func (s *Service) Submit(ctx context.Context, payload jobModel.IngestPayload) (jobModel.Job, error) {
	traceId, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	job := jobModel.Job{
		Id:          utils.GetNewUUID(),
		TraceId:     traceId,
		JobType:     jobModel.JobTypeIngest,
		Payload:     payload,
		CreatedTime: time.Now().UTC(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: jobModel.IngestInit,
	}
	log := s.logger.FromContext(ctx, config.TRACE_ID_KEY).With("jobId", job.Id)

	if err := s.JobStore.SaveJob(ctx, job); err != nil {
		log.Error("Could not record job", "error", err)
		return jobModel.Job{}, err
	}

	select {
	case s.JobChannel <- job:
		metrics.IncrementJobsInQueue()
		log.Info("Queued ingestion job", "sources", payload.Sources, "parallel", payload.Parallel)
		return job, nil
	default:
		s.JobStore.DeleteJob(ctx, job.Id)
		log.Warn("Ingestion queue is full")
		return jobModel.Job{}, ErrQueueFull
	}
}

func (s *Service) Status(ctx context.Context, id string) (jobModel.Job, bool) {
	if id == "" {
		return jobModel.Job{}, false
	}
	return s.JobStore.GetJob(ctx, id)
}
