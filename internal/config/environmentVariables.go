package config

import (
	"time"
)

const (
	TRACE_ID_KEY                = "traceId"
	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//serverTimeouts
	ReadTimeout  = 5 * time.Second
	WriteTimeout = 60 * time.Second //streaming answers hold the connection open
	IdleTimeout  = 120 * time.Second

	ShutdownContextTimeout = 10 * time.Second
	MaxRequestBytes        = 1 << 20

	//ingestion job requests buffer limit
	BufferLimit = 16

	//ingestion runs are serialised on one worker
	WorkerCount      = 1
	IngestJobTimeout = 15 * time.Minute

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	PublishedDateField      = "published_date"

	//embeddings are sent to the provider in batches of this size
	EmbeddingBatchSize = 100

	//llm
	MaxOutputTokens = 500

	//retrieval
	DefaultTopK       = 5
	MaxTopK           = 50
	AnswerTimeout     = 30 * time.Second
	StreamEventBuffer = 16

	//answer cache
	RedisAnswerCacheDB = 0
	RedisJobStoreDB    = 1
	RedisJobStoreTTL   = 24 * time.Hour

	//sources
	SourceFetchTimeout = 30 * time.Second
	LinkedInTimeout    = 10 * time.Second
	GithubReposPerPage = 100
	BrowserUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	MaxDownloadBytes   = 20 << 20
	PDFPageTimeout     = 10 * time.Second

	//outbound http pooling
	MaxIdleConns        = 20
	MaxIdleConnsPerHost = 5
	IdleConnTimeout     = 90 * time.Second
)
