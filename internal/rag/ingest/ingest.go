package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/metrics"
	"github.com/akolanti/profile-rag/internal/rag/chunker"
	"github.com/akolanti/profile-rag/internal/rag/embedding"
	"github.com/akolanti/profile-rag/internal/rag/sources"
	"github.com/akolanti/profile-rag/internal/rag/vectorDB"
	"github.com/akolanti/profile-rag/pkg/logger_i"
	"golang.org/x/sync/errgroup"
)

// Report summarises one run. Scraped counts documents per source after
// de-duplication.
type Report struct {
	Scraped   map[string]int `json:"scraped"`
	Skipped   []string       `json:"skipped,omitempty"`
	Failed    []string       `json:"failed,omitempty"`
	Documents int            `json:"documents"`
	Chunks    int            `json:"chunks"`
	Points    int            `json:"points"`
	Duration  time.Duration  `json:"duration"`
}

type Options struct {
	// Sources to activate, every registered source when empty.
	Sources []string
	// Parallel scrapes sources concurrently.
	Parallel bool
	// BatchSize is the number of chunks embedded and stored per call.
	BatchSize int
}

type Pipeline struct {
	store    vectorDB.Store
	embedder embedding.Embedder
	chunker  *chunker.Chunker
	registry *sources.Registry
	opts     Options
	logger   *logger_i.Logger
}

func NewPipeline(store vectorDB.Store, embedder embedding.Embedder, c *chunker.Chunker, registry *sources.Registry, opts Options) *Pipeline {
	if opts.BatchSize <= 0 {
		opts.BatchSize = config.EmbeddingBatchSize
	}
	return &Pipeline{
		store:    store,
		embedder: embedder,
		chunker:  c,
		registry: registry,
		opts:     opts,
		logger:   logger_i.NewLogger("ingestion"),
	}
}

// Run executes Connect, Scrape, Chunk, Embed+Store and Close. The store is
// closed on every return path. A run that scrapes nothing stops before the
// collection is touched.
func (p *Pipeline) Run(ctx context.Context) (report Report, err error) {
	log := p.logger.FromContext(ctx, config.TRACE_ID_KEY)
	start := time.Now()
	report.Scraped = map[string]int{}
	defer func() {
		report.Duration = time.Since(start)
		status := "complete"
		if err != nil {
			status = "error"
		}
		metrics.CaptureIngestMetrics(status, report.Duration)
	}()

	adapters, skipped, err := p.registry.Build(p.opts.Sources)
	if err != nil {
		return report, err
	}
	report.Skipped = skipped

	defer func() {
		log.Info("[5/5] Closing connection...")
		if cerr := p.store.Close(); cerr != nil {
			log.Error("Closing vector store failed", "error", cerr)
			if err == nil {
				err = cerr
			}
		}
	}()

	log.Info("[1/5] Connecting to vector store...")
	if err = p.store.Connect(ctx); err != nil {
		return report, fmt.Errorf("connecting to vector store: %w", err)
	}

	log.Info("[2/5] Scraping content...", "sources", len(adapters), "parallel", p.opts.Parallel)
	docs, err := p.scrape(ctx, adapters, &report)
	if err != nil {
		return report, err
	}
	report.Documents = len(docs)
	log.Info("Scraped documents", "count", len(docs))
	if len(docs) == 0 {
		log.Info("No documents found, nothing to ingest")
		return report, nil
	}

	log.Info("[3/5] Chunking documents...")
	chunks := p.chunker.ChunkDocuments(docs)
	report.Chunks = len(chunks)
	log.Info("Created chunks", "count", len(chunks))

	log.Info("[4/5] Generating embeddings and storing...")
	if err = p.store.SetupCollection(ctx, p.embedder.Dimension()); err != nil {
		return report, fmt.Errorf("setting up collection: %w", err)
	}
	if err = p.embedAndStore(ctx, chunks, &report); err != nil {
		return report, err
	}

	log.Info("Ingestion pipeline complete", "documents", report.Documents, "points", report.Points)
	return report, nil
}

type scrapeResult struct {
	docs   []document.Document
	failed bool
}

func (p *Pipeline) scrape(ctx context.Context, adapters []sources.Adapter, report *Report) ([]document.Document, error) {
	results := make([]scrapeResult, len(adapters))

	if p.opts.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, a := range adapters {
			g.Go(func() error {
				r, err := p.scrapeSource(gctx, a)
				results[i] = r
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, a := range adapters {
			r, err := p.scrapeSource(ctx, a)
			if err != nil {
				return nil, err
			}
			results[i] = r
		}
	}

	var docs []document.Document
	for i, r := range results {
		name := string(adapters[i].Name())
		if r.failed {
			report.Failed = append(report.Failed, name)
			continue
		}
		report.Scraped[name] = len(r.docs)
		docs = append(docs, r.docs...)
	}
	return docs, nil
}

// scrapeSource reads the source's watermark and then scrapes it. A store that
// is not connected aborts the run. Any other lookup failure only drops this
// source, scraping it blind would store its history twice.
func (p *Pipeline) scrapeSource(ctx context.Context, a sources.Adapter) (scrapeResult, error) {
	log := p.logger.With("source", a.Name())

	wm, err := sources.LookupWatermark(ctx, p.store, a)
	if err != nil {
		if errors.Is(err, document.ErrNotConnected) {
			return scrapeResult{}, err
		}
		log.Error("Watermark lookup failed, skipping source for this run", "error", err)
		return scrapeResult{failed: true}, nil
	}
	switch {
	case !wm.Since.IsZero():
		log.Info("Last scrape", "published_date", wm.Since.Format(time.RFC3339))
	case wm.StoredHash != "":
		log.Info("Stored content hash", "hash", wm.StoredHash)
	}

	start := time.Now()
	docs := a.Scrape(ctx, wm)
	metrics.CaptureExecutionMetrics("scrape_"+string(a.Name()), time.Since(start))
	log.Info("Source scraped", "documents", len(docs))
	return scrapeResult{docs: docs}, nil
}

func (p *Pipeline) embedAndStore(ctx context.Context, chunks []document.Chunk, report *Report) error {
	for i := 0; i < len(chunks); i += p.opts.BatchSize {
		end := min(i+p.opts.BatchSize, len(chunks))
		batch := chunks[i:end]

		texts := make([]string, len(batch))
		for j, c := range batch {
			texts[j] = c.Content
		}

		p.logger.Debug("Starting embedding call", "batch_start", i, "batch_len", len(batch))
		embedStart := time.Now()
		vectors, err := p.embedder.EmbedBatch(ctx, texts)
		metrics.CaptureExecutionMetrics("embedding", time.Since(embedStart))
		if err != nil {
			return fmt.Errorf("embedding batch %d-%d failed: %w", i, end, err)
		}
		if err := embedding.CheckBatch(vectors, len(batch), p.embedder.Dimension()); err != nil {
			return err
		}

		embedded := make([]document.EmbeddedChunk, len(batch))
		for j, c := range batch {
			embedded[j] = document.EmbeddedChunk{Chunk: c, Embedding: vectors[j]}
		}
		if err := p.store.Insert(ctx, embedded); err != nil {
			return fmt.Errorf("storing batch %d-%d failed: %w", i, end, err)
		}
		report.Points += len(embedded)
	}
	return nil
}
