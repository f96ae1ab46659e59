package worker

import (
	"context"
	"net/http"
	"time"

	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/domain/jobModel"
)

// executeJob runs detached from the pool's context so a shutdown lets the
// current run finish and release its store session.
func (p *Pool) executeJob(parent context.Context, job jobModel.Job) {
	ctxTrace := context.WithValue(context.WithoutCancel(parent), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.IngestJobTimeout)
	defer cancel()

	log := p.logger.FromContext(ctx, config.TRACE_ID_KEY).With("jobId", job.Id)
	log.Info("Processing job", "sources", job.Payload.Sources)

	job.CurrentStep = jobModel.IngestProcessing
	job = p.saveJobState(ctx, job, jobModel.JobStatusRunning)

	report, err := p.ingest(ctx, job.Payload)
	job.Report = &report
	job.EndTime = time.Now().UTC()
	if err != nil {
		log.Error("Ingestion job failed", "error", err)
		job.CurrentStep = jobModel.Error
		job.Error = &jobModel.JobError{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
			Retry:   true,
		}
		p.saveJobState(ctx, job, jobModel.JobStatusError)
		return
	}

	log.Info("Ingestion job complete", "points", report.Points, "duration", report.Duration)
	job.CurrentStep = jobModel.Complete
	p.saveJobState(ctx, job, jobModel.JobStatusComplete)
}

func (p *Pool) saveJobState(ctx context.Context, job jobModel.Job, status jobModel.JobStatus) jobModel.Job {
	job.Status = status
	if err := p.jobService.JobStore.SaveJob(ctx, job); err != nil {
		p.logger.Error("Failed to update job status", "jobId", job.Id, "error", err)
	}
	return job
}
