package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/data/redisStore"
	"github.com/akolanti/profile-rag/internal/data/store"
	"github.com/akolanti/profile-rag/internal/domain/jobModel"
	"github.com/akolanti/profile-rag/internal/rag/ingest"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisJobStore(t *testing.T) (*store.RedisJobStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return store.NewRedisJobStore(redisStore.NewWithClient(client), time.Hour), mr
}

func sampleJob(id string) jobModel.Job {
	return jobModel.Job{
		Id:      id,
		JobType: jobModel.JobTypeIngest,
		Status:  jobModel.JobStatusComplete,
		Payload: jobModel.IngestPayload{Sources: []string{"medium", "github"}, Parallel: true},
		Report: &ingest.Report{
			Scraped:   map[string]int{"medium": 3},
			Documents: 3,
			Chunks:    7,
			Points:    7,
		},
	}
}

func TestJobStores_Lifecycle(t *testing.T) {
	redisJobs, mr := newRedisJobStore(t)
	stores := map[string]jobModel.JobStore{
		"redis":    redisJobs,
		"inmemory": store.NewInMemoryJobStore(),
	}

	for name, jobStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			job := sampleJob("job_abc_123")

			if err := jobStore.SaveJob(ctx, job); err != nil {
				t.Fatalf("SaveJob failed: %v", err)
			}

			got, found := jobStore.GetJob(ctx, job.Id)
			if !found {
				t.Fatal("job was saved but not found")
			}
			if got.Report == nil || got.Report.Points != 7 || got.Report.Scraped["medium"] != 3 {
				t.Errorf("report not kept, got %+v", got.Report)
			}
			if len(got.Payload.Sources) != 2 || !got.Payload.Parallel {
				t.Errorf("payload not kept, got %+v", got.Payload)
			}

			if _, found := jobStore.GetJob(ctx, "ghost-id"); found {
				t.Error("expected found=false for an unknown id")
			}

			jobStore.DeleteJob(ctx, job.Id)
			if _, found := jobStore.GetJob(ctx, job.Id); found {
				t.Error("job still present after DeleteJob")
			}
		})
	}

	if len(mr.Keys()) != 0 {
		t.Errorf("expected no keys left in Redis, got %v", mr.Keys())
	}
}

func TestRedisJobStore_Expiry(t *testing.T) {
	jobStore, mr := newRedisJobStore(t)
	ctx := context.Background()
	_ = jobStore.SaveJob(ctx, sampleJob("short-lived"))

	if !mr.Exists("job:short-lived") {
		t.Fatal("job not stored under the job: prefix")
	}
	mr.FastForward(2 * time.Hour)
	if _, found := jobStore.GetJob(ctx, "short-lived"); found {
		t.Error("job should have expired")
	}
}

func TestRedisJobStore_UnreadableEntry(t *testing.T) {
	jobStore, mr := newRedisJobStore(t)
	_ = mr.Set("job:broken", "{")
	if _, found := jobStore.GetJob(context.Background(), "broken"); found {
		t.Error("unreadable entry must read as not found")
	}
}

func TestInMemoryJobStore_Race(t *testing.T) {
	jobStore := store.NewInMemoryJobStore()
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = jobStore.SaveJob(ctx, jobModel.Job{Id: "race-job"})
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
	wg.Wait()

	if _, found := jobStore.GetJob(ctx, "race-job"); !found {
		t.Error("job lost under concurrent writes")
	}
}
