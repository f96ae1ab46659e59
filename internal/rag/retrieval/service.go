package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akolanti/profile-rag/internal/cache"
	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/rag/embedding"
	"github.com/akolanti/profile-rag/internal/rag/llm"
	"github.com/akolanti/profile-rag/pkg/logger_i"
)

// Service is everything the query side of the API and the MCP tool call.
// Handlers never see the embedder, the store or the model directly.
type Service interface {
	Search(ctx context.Context, question string, topK int) ([]document.RetrievedDocument, error)
	AnswerQuestion(ctx context.Context, question string, docs []document.RetrievedDocument) (Answer, error)
	AnswerStream(ctx context.Context, question string, topK int) (*Stream, error)
	// Ask is Search followed by AnswerQuestion, served from the answer cache
	// when the same question was asked with the same topK before.
	Ask(ctx context.Context, question string, topK int) (Answer, error)
}

// Searcher is the read side of the vector store.
type Searcher interface {
	SearchSimilar(ctx context.Context, vector []float32, topK int) ([]document.RetrievedDocument, error)
}

type Answer struct {
	Answer  string                       `json:"answer"`
	Sources []document.RetrievedDocument `json:"sources"`
}

type Options struct {
	Subject         string
	Temperature     float32
	MaxOutputTokens int
	// Cache is optional, nil disables answer caching.
	Cache cache.Cache[Answer]
}

type service struct {
	embedder embedding.Embedder
	store    Searcher
	provider llm.Provider
	opts     Options
	logger   *logger_i.Logger
}

func NewService(em embedding.Embedder, store Searcher, provider llm.Provider, opts Options) Service {
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = config.MaxOutputTokens
	}
	return &service{
		embedder: em,
		store:    store,
		provider: provider,
		opts:     opts,
		logger:   logger_i.NewLogger("retrieval"),
	}
}

func (s *service) Search(ctx context.Context, question string, topK int) ([]document.RetrievedDocument, error) {
	log := s.logger.FromContext(ctx, config.TRACE_ID_KEY)
	topK = normalizeTopK(topK)

	vector, err := s.executeEmbeddingStep(ctx, log, question)
	if err != nil {
		return nil, err
	}
	return s.executeVectorSearchStep(ctx, log, vector, topK)
}

func (s *service) AnswerQuestion(ctx context.Context, question string, docs []document.RetrievedDocument) (Answer, error) {
	log := s.logger.FromContext(ctx, config.TRACE_ID_KEY)
	if docs == nil {
		docs = []document.RetrievedDocument{}
	}

	answer, err := s.executeLLMStep(ctx, log, s.prompt(question, BuildContext(docs)))
	if err != nil {
		return Answer{}, err
	}
	return Answer{Answer: answer, Sources: docs}, nil
}

func (s *service) Ask(ctx context.Context, question string, topK int) (Answer, error) {
	log := s.logger.FromContext(ctx, config.TRACE_ID_KEY)
	topK = normalizeTopK(topK)
	key := CacheKey(question, topK)

	if s.opts.Cache != nil {
		if cached, ok := s.executeCacheCheckStep(ctx, log, key); ok {
			return cached, nil
		}
	}

	docs, err := s.Search(ctx, question, topK)
	if err != nil {
		return Answer{}, err
	}
	answer, err := s.AnswerQuestion(ctx, question, docs)
	if err != nil {
		return Answer{}, err
	}

	if s.opts.Cache != nil {
		s.opts.Cache.Set(ctx, key, answer)
	}
	return answer, nil
}

// CacheKey identifies an answer by the question and the number of sources it
// was grounded on.
func CacheKey(question string, topK int) string {
	return fmt.Sprintf("%d|%s", topK, strings.TrimSpace(question))
}

func normalizeTopK(topK int) int {
	if topK <= 0 {
		return config.DefaultTopK
	}
	return topK
}

func answeringError(err error) error {
	if errors.Is(err, document.ErrAnsweringBackend) {
		return err
	}
	return fmt.Errorf("%w: %v", document.ErrAnsweringBackend, err)
}
