package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env       string `envconfig:"APP_ENV" default:"development"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"debug"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	ListenAddr string `envconfig:"LISTEN_ADDR" default:":3000"`

	QdrantHost       string `envconfig:"QDRANT_HOST" default:"localhost"`
	QdrantPort       int    `envconfig:"QDRANT_PORT" default:"6334"` //grpc
	QdrantAPIKey     string `envconfig:"QDRANT_API_KEY"`
	QdrantUseTLS     bool   `envconfig:"QDRANT_USE_TLS" default:"false"`
	QdrantPoolSize   uint   `envconfig:"QDRANT_POOL_SIZE" default:"1"`
	QdrantCollection string `envconfig:"QDRANT_COLLECTION_NAME" default:"profile_documents"`

	EmbeddingProvider  string `envconfig:"EMBEDDING_PROVIDER" default:"gemini"`
	EmbeddingModel     string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	EmbeddingDimension int    `envconfig:"EMBEDDING_DIMENSION" default:"1536"`

	LLMProvider      string  `envconfig:"LLM_PROVIDER" default:"gemini"`
	LLMModel         string  `envconfig:"LLM_MODEL" default:"gemini-2.5-flash-lite"`
	ModelTemperature float32 `envconfig:"MODEL_TEMPERATURE" default:"0.7"`
	Subject          string  `envconfig:"RAG_SUBJECT" default:"Jason"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	GoogleAPIKey string `envconfig:"GOOGLE_API_KEY"` //drive downloads of shared résumé links
	GithubToken  string `envconfig:"GITHUB_TOKEN"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"256"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"25"`

	AnswerCacheSize int           `envconfig:"ANSWER_CACHE_SIZE" default:"128"`
	AnswerCacheTTL  time.Duration `envconfig:"ANSWER_CACHE_TTL" default:"24h"`
	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`

	AuthToken string `envconfig:"API_AUTH_TOKEN"`
}

var (
	embeddingProviders = []string{"gemini", "openai"}
	llmProviders       = []string{"gemini", "openai"}
)

func Load() (*Config, error) {
	// .env is optional, the shell may already carry everything
	_ = godotenv.Load(".env")
	cwd, _ := os.Getwd()
	_ = godotenv.Load(filepath.Join(cwd, "../../.env"))

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", document.ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.QdrantCollection == "" {
		return fmt.Errorf("%w: QDRANT_COLLECTION_NAME is empty", document.ErrConfiguration)
	}
	if c.EmbeddingDimension <= 0 {
		return fmt.Errorf("%w: EMBEDDING_DIMENSION must be positive, got %d", document.ErrConfiguration, c.EmbeddingDimension)
	}
	if c.ChunkSize-c.ChunkOverlap < 1 || c.ChunkOverlap < 0 {
		return fmt.Errorf("%w: CHUNK_SIZE %d and CHUNK_OVERLAP %d give a non-positive step",
			document.ErrConfiguration, c.ChunkSize, c.ChunkOverlap)
	}
	if !slices.Contains(embeddingProviders, c.EmbeddingProvider) {
		return fmt.Errorf("%w: unknown EMBEDDING_PROVIDER %q", document.ErrConfiguration, c.EmbeddingProvider)
	}
	if !slices.Contains(llmProviders, c.LLMProvider) {
		return fmt.Errorf("%w: unknown LLM_PROVIDER %q", document.ErrConfiguration, c.LLMProvider)
	}
	if c.AnswerCacheSize <= 0 {
		return fmt.Errorf("%w: ANSWER_CACHE_SIZE must be positive", document.ErrConfiguration)
	}
	return nil
}

func (c *Config) IsProd() bool {
	return c.Env == "production"
}
