package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/akolanti/profile-rag/internal/domain/jobModel"
	"github.com/akolanti/profile-rag/internal/job"
	"github.com/akolanti/profile-rag/internal/metrics"
	"github.com/akolanti/profile-rag/internal/rag/ingest"
	"github.com/akolanti/profile-rag/pkg/logger_i"
)

// IngestFunc performs one ingestion run for a job's payload.
type IngestFunc func(ctx context.Context, payload jobModel.IngestPayload) (ingest.Report, error)

type Pool struct {
	jobService  *job.Service
	ingest      IngestFunc
	size        int
	wg          sync.WaitGroup
	activeCount int64
	logger      *logger_i.Logger
}

func NewPool(jobService *job.Service, fn IngestFunc, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		jobService: jobService,
		ingest:     fn,
		size:       size,
		logger:     logger_i.NewLogger("worker_pool"),
	}
}

// Start launches the workers. They exit when ctx is cancelled, after
// finishing the job they hold.
func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Initializing worker pool", "size", p.size)
	for range p.size {
		p.createWorker(ctx)
	}
}

// Wait blocks until every worker has exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) ActiveWorkers() int64 {
	return atomic.LoadInt64(&p.activeCount)
}

func (p *Pool) createWorker(ctx context.Context) {
	p.wg.Add(1)
	atomic.AddInt64(&p.activeCount, 1)
	metrics.IncrementActiveWorkerCount()
	go p.worker(ctx)
}

func (p *Pool) worker(ctx context.Context) {
	defer p.removeWorker()
	for {
		select {
		case currentJob := <-p.jobService.JobChannel:
			metrics.DecrementJobsInQueue()
			p.executeJob(ctx, currentJob)

		case <-ctx.Done():
			p.logger.Info("Stop signal received")
			return
		}
	}
}

func (p *Pool) removeWorker() {
	atomic.AddInt64(&p.activeCount, -1)
	metrics.DecrementActiveWorkerCount()
	p.logger.Info("Removed worker", "workerCount", p.ActiveWorkers())
	p.wg.Done()
}
