package job

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/data/store"
	"github.com/akolanti/profile-rag/internal/domain/jobModel"
)

func TestSubmit(t *testing.T) {
	jobStore := store.NewInMemoryJobStore()
	svc := NewService(jobStore, 1)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "trace-1")

	job, err := svc.Submit(ctx, jobModel.IngestPayload{Sources: []string{"medium"}})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if job.Id == "" || job.TraceId != "trace-1" || job.Status != jobModel.JobStatusQueued {
		t.Errorf("unexpected job %+v", job)
	}

	queued := <-svc.JobChannel
	if queued.Id != job.Id {
		t.Errorf("queued job %s, want %s", queued.Id, job.Id)
	}
	if stored, ok := svc.Status(ctx, job.Id); !ok || stored.Status != jobModel.JobStatusQueued {
		t.Errorf("job not recorded as queued: %+v %v", stored, ok)
	}
}

func TestSubmit_QueueFull(t *testing.T) {
	jobStore := store.NewInMemoryJobStore()
	svc := NewService(jobStore, 1)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, jobModel.IngestPayload{}); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}
	_, err := svc.Submit(ctx, jobModel.IngestPayload{})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if len(svc.JobChannel) != 1 {
		t.Errorf("expected one queued job, got %d", len(svc.JobChannel))
	}
}

type failingStore struct{ jobModel.JobStore }

func (failingStore) SaveJob(context.Context, jobModel.Job) error { return errors.New("redis down") }

func TestSubmit_StoreFailure(t *testing.T) {
	svc := NewService(failingStore{}, 1)
	if _, err := svc.Submit(context.Background(), jobModel.IngestPayload{}); err == nil {
		t.Fatal("expected store failure to be returned")
	}
	if len(svc.JobChannel) != 0 {
		t.Error("job queued although it could not be recorded")
	}
}

func TestStatus_EmptyId(t *testing.T) {
	svc := NewService(store.NewInMemoryJobStore(), 1)
	if _, ok := svc.Status(context.Background(), ""); ok {
		t.Error("empty id must not be found")
	}
}
