package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/metrics"
	"github.com/akolanti/profile-rag/internal/rag/llm"
	"github.com/akolanti/profile-rag/pkg/logger_i"
)

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, question string) ([]float32, error) {
	log.Debug("Embedding question")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	vector, err := s.embedder.EmbedText(ctx, question)
	if err != nil {
		log.Error("Question embedding failed", "error", err)
		return nil, err
	}
	return vector, nil
}

func (s *service) executeVectorSearchStep(ctx context.Context, log *logger_i.Logger, vector []float32, topK int) ([]document.RetrievedDocument, error) {
	log.Debug("Searching vector store", "top_k", topK)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	docs, err := s.store.SearchSimilar(ctx, vector, topK)
	if err != nil {
		log.Error("Vector search failed", "error", err)
		return nil, fmt.Errorf("vector search: %w", err)
	}
	log.Debug("Retrieved documents", "count", len(docs))
	return docs, nil
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, key string) (Answer, bool) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	answer, ok := s.opts.Cache.Get(ctx, key)
	if ok {
		metrics.CacheHit()
		log.Debug("Answer served from cache")
		return answer, true
	}
	metrics.CacheMiss()
	return Answer{}, false
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, prompt llm.Prompt) (string, error) {
	log.Debug("Generating answer")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	answer, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		log.Error("Answer generation failed", "error", err)
		return "", answeringError(err)
	}
	return answer, nil
}
