// Package app wires configuration, providers, stores and workers into the
// running API.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/akolanti/profile-rag/internal/cache"
	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/data/redisStore"
	"github.com/akolanti/profile-rag/internal/data/store"
	"github.com/akolanti/profile-rag/internal/domain/jobModel"
	"github.com/akolanti/profile-rag/internal/handlers"
	"github.com/akolanti/profile-rag/internal/job"
	"github.com/akolanti/profile-rag/internal/mcpserver"
	"github.com/akolanti/profile-rag/internal/middleware"
	"github.com/akolanti/profile-rag/internal/rag/retrieval"
	"github.com/akolanti/profile-rag/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/profile-rag/internal/server"
	"github.com/akolanti/profile-rag/internal/worker"
	"github.com/akolanti/profile-rag/pkg/logger_i"
)

type App struct {
	cfg      *config.Config
	ingestor *Ingestor
	store    *qdrantDB.Store
	rag      retrieval.Service
	jobs     *job.Service
	workers  *worker.Pool
	redis    []*redisStore.Store
	logger   *logger_i.Logger
}

// New builds every component and connects the query-side vector store.
// Redis is optional: without it answers are cached in memory only and jobs
// live in process memory.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg, logger: logger_i.NewLogger("app")}

	em, err := NewEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}
	provider, err := NewLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.ingestor, err = newIngestor(cfg, em, os.LookupEnv)
	if err != nil {
		return nil, err
	}

	a.store, err = qdrantDB.NewStore(qdrantOptions(cfg))
	if err != nil {
		return nil, err
	}
	if err := a.store.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connecting vector store: %w", err)
	}

	answerCache, err := a.answerCache(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.rag = retrieval.NewService(em, a.store, provider, retrieval.Options{
		Subject:     cfg.Subject,
		Temperature: cfg.ModelTemperature,
		Cache:       answerCache,
	})

	a.jobs = job.NewService(a.jobStore(ctx), config.BufferLimit)
	a.workers = worker.NewPool(a.jobs, a.ingestor.RunJob, config.WorkerCount)
	return a, nil
}

func (a *App) answerCache(ctx context.Context) (cache.Cache[retrieval.Answer], error) {
	lru, err := cache.NewLRU[retrieval.Answer](a.cfg.AnswerCacheSize)
	if err != nil {
		return nil, err
	}
	rs := a.connectRedis(ctx, config.RedisAnswerCacheDB)
	if rs == nil {
		return lru, nil
	}
	return cache.Chain[retrieval.Answer](lru, cache.NewRedis[retrieval.Answer](rs, a.cfg.AnswerCacheTTL)), nil
}

func (a *App) jobStore(ctx context.Context) jobModel.JobStore {
	rs := a.connectRedis(ctx, config.RedisJobStoreDB)
	if rs == nil {
		return store.NewInMemoryJobStore()
	}
	return store.NewRedisJobStore(rs, config.RedisJobStoreTTL)
}

func (a *App) connectRedis(ctx context.Context, db int) *redisStore.Store {
	if a.cfg.RedisAddr == "" {
		return nil
	}
	rs, err := redisStore.New(ctx, redisStore.Options{Addr: a.cfg.RedisAddr, Password: a.cfg.RedisPassword, DB: db})
	if err != nil {
		a.logger.Error("Redis is offline, falling back to memory", "db", db, "error", err)
		return nil
	}
	a.redis = append(a.redis, rs)
	return rs
}

// Handler is the full HTTP surface, including the MCP endpoint.
func (a *App) Handler() (http.Handler, error) {
	mcp, err := mcpserver.NewServer(a.rag)
	if err != nil {
		return nil, err
	}
	limiter := middleware.NewIPRateLimiter(config.RATE_LIMIT_PER_SECOND, config.BURST_RATE_LIMIT_PER_SECOND)
	return server.NewRouter(server.Routes{
		Handler:    handlers.New(a.rag, a.jobs, a.ingestor.Sources()),
		Middleware: middleware.New(a.cfg.AuthToken, limiter),
		MCP:        mcp.Handler(),
	}), nil
}

// StartWorkers runs queued ingestion jobs until ctx is cancelled.
func (a *App) StartWorkers(ctx context.Context) {
	a.workers.Start(ctx)
}

// Close waits for running jobs and releases external connections.
func (a *App) Close() {
	if a.workers != nil {
		a.workers.Wait()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("Error closing vector store", "error", err)
		}
	}
	for _, rs := range a.redis {
		if err := rs.Close(); err != nil {
			a.logger.Error("Error closing redis", "error", err)
		}
	}
}
