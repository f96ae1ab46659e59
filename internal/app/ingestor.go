package app

import (
	"context"

	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/domain/jobModel"
	"github.com/akolanti/profile-rag/internal/rag/chunker"
	"github.com/akolanti/profile-rag/internal/rag/embedding"
	"github.com/akolanti/profile-rag/internal/rag/ingest"
	"github.com/akolanti/profile-rag/internal/rag/sources"
	"github.com/akolanti/profile-rag/internal/rag/vectorDB"
	"github.com/akolanti/profile-rag/internal/rag/vectorDB/qdrantDB"
)

// Ingestor runs the ingestion pipeline. Every run gets its own store, since
// the pipeline closes the store it was given.
type Ingestor struct {
	embedder embedding.Embedder
	chunker  *chunker.Chunker
	registry *sources.Registry
	newStore func() (vectorDB.Store, error)
}

func NewIngestor(ctx context.Context, cfg *config.Config, lookup sources.LookupFunc) (*Ingestor, error) {
	em, err := NewEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newIngestor(cfg, em, lookup)
}

func newIngestor(cfg *config.Config, em embedding.Embedder, lookup sources.LookupFunc) (*Ingestor, error) {
	c, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	opts := qdrantOptions(cfg)
	return &Ingestor{
		embedder: em,
		chunker:  c,
		registry: NewRegistry(cfg, lookup),
		newStore: func() (vectorDB.Store, error) { return qdrantDB.NewStore(opts) },
	}, nil
}

func (i *Ingestor) Sources() []string {
	return i.registry.Sources()
}

func (i *Ingestor) Run(ctx context.Context, names []string, parallel bool) (ingest.Report, error) {
	store, err := i.newStore()
	if err != nil {
		return ingest.Report{}, err
	}
	p := ingest.NewPipeline(store, i.embedder, i.chunker, i.registry, ingest.Options{
		Sources:  names,
		Parallel: parallel,
	})
	return p.Run(ctx)
}

// RunJob adapts Run to the worker pool.
func (i *Ingestor) RunJob(ctx context.Context, payload jobModel.IngestPayload) (ingest.Report, error) {
	return i.Run(ctx, payload.Sources, payload.Parallel)
}
