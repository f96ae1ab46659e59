package redisStore

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

const (
	pingTimeout   = 3 * time.Second
	clientTimeout = 30 * time.Second
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

// Store is one logical Redis database. The answer cache and the job store
// each own one, on different DB numbers.
type Store struct {
	client *redis.Client
	db     int
	logger *logger_i.Logger
}

// New dials and pings. An unreachable server is an error, callers fall back
// to in-process storage.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("%w: REDIS_ADDR is empty", document.ErrConfiguration)
	}
	client := redis.NewClient(&redis.Options{
		Addr:                  opts.Addr,
		Password:              opts.Password,
		DB:                    opts.DB,
		ContextTimeoutEnabled: true,
		ReadTimeout:           clientTimeout,
		WriteTimeout:          clientTimeout,
	})

	s := NewWithClient(client)
	s.db = opts.DB
	s.logger = s.logger.With("db", opts.DB)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		s.logger.Error("Redis is offline", "addr", opts.Addr, "error", err)
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	s.logger.Info("Redis store ready", "addr", opts.Addr)
	return s, nil
}

// NewWithClient wraps an existing client, tests pass one pointed at miniredis.
func NewWithClient(client *redis.Client) *Store {
	return &Store{
		client: client,
		logger: logger_i.NewLogger("redis_store"),
	}
}

func (s *Store) Close() error {
	s.logger.Info("Closing Redis store")
	return s.client.Close()
}
