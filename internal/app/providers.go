package app

import (
	"context"
	"fmt"

	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/rag/embedding"
	"github.com/akolanti/profile-rag/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/profile-rag/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/profile-rag/internal/rag/llm"
	"github.com/akolanti/profile-rag/internal/rag/llm/gemini"
	"github.com/akolanti/profile-rag/internal/rag/llm/openaiLLM"
	"github.com/akolanti/profile-rag/internal/rag/sources"
	"github.com/akolanti/profile-rag/internal/rag/sources/github"
	"github.com/akolanti/profile-rag/internal/rag/sources/linkedin"
	"github.com/akolanti/profile-rag/internal/rag/sources/medium"
	"github.com/akolanti/profile-rag/internal/rag/sources/resume"
	"github.com/akolanti/profile-rag/internal/rag/vectorDB/qdrantDB"
)

const (
	MediumUsernameKey = "MEDIUM_USERNAME"
	GithubUsernameKey = "GITHUB_USERNAME"
	ResumeURLKey      = "RESUME_URL"
	LinkedInURLKey    = "LINKEDIN_URL"
)

func NewEmbedder(ctx context.Context, cfg *config.Config) (embedding.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case "gemini":
		return googleEmbedding.NewGoogleEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension)
	case "openai":
		return openaiEmbedding.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension)
	}
	return nil, fmt.Errorf("%w: unknown EMBEDDING_PROVIDER %q", document.ErrConfiguration, cfg.EmbeddingProvider)
}

func NewLLM(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	switch cfg.LLMProvider {
	case "gemini":
		return gemini.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	case "openai":
		return openaiLLM.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	}
	return nil, fmt.Errorf("%w: unknown LLM_PROVIDER %q", document.ErrConfiguration, cfg.LLMProvider)
}

// NewRegistry registers the four sources in scrape order. Each one is
// activated by its own key read through lookup.
func NewRegistry(cfg *config.Config, lookup sources.LookupFunc) *sources.Registry {
	r := sources.NewRegistry(lookup)
	r.Register(document.SourceMedium, MediumUsernameKey, func(username string) (sources.Adapter, error) {
		return medium.New(username)
	})
	r.Register(document.SourceGithub, GithubUsernameKey, func(username string) (sources.Adapter, error) {
		return github.New(username, github.WithToken(cfg.GithubToken))
	})
	r.Register(document.SourceResume, ResumeURLKey, func(url string) (sources.Adapter, error) {
		return resume.New(url, resume.WithGoogleAPIKey(cfg.GoogleAPIKey))
	})
	r.Register(document.SourceLinkedIn, LinkedInURLKey, func(url string) (sources.Adapter, error) {
		return linkedin.New(url)
	})
	return r
}

func qdrantOptions(cfg *config.Config) qdrantDB.Options {
	return qdrantDB.Options{
		Host:       cfg.QdrantHost,
		Port:       cfg.QdrantPort,
		APIKey:     cfg.QdrantAPIKey,
		UseTLS:     cfg.QdrantUseTLS,
		PoolSize:   cfg.QdrantPoolSize,
		Collection: cfg.QdrantCollection,
	}
}
