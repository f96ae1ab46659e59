package store

import (
	"context"
	"sync"

	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/domain/jobModel"
	"github.com/akolanti/profile-rag/pkg/logger_i"
)

// InMemoryJobStore is the fallback when Redis is not configured or offline.
// Jobs are lost on restart.
type InMemoryJobStore struct {
	jobMutex sync.RWMutex
	jobMap   map[string]jobModel.Job
	logger   *logger_i.Logger
}

func NewInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobMap: make(map[string]jobModel.Job),
		logger: logger_i.NewLogger("inmem_job_store"),
	}
}

func (s *InMemoryJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()
	s.jobMap[job.Id] = job
	s.logger.FromContext(ctx, config.TRACE_ID_KEY).Debug("Saved job", "jobId", job.Id, "status", job.Status)
	return nil
}

func (s *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	s.jobMutex.RLock()
	defer s.jobMutex.RUnlock()
	result, found := s.jobMap[jobId]
	s.logger.FromContext(ctx, config.TRACE_ID_KEY).Debug("Job lookup", "jobId", jobId, "found", found)
	return result, found
}

func (s *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()
	delete(s.jobMap, jobID)
}
