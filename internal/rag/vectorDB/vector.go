package vectorDB

import (
	"context"
	"time"

	"github.com/akolanti/profile-rag/internal/domain/document"
)

// Store is the system of record for embedded chunks. Every method except
// Close returns document.ErrNotConnected until Connect succeeds.
type Store interface {
	Connect(ctx context.Context) error
	SetupCollection(ctx context.Context, dimension int) error
	Insert(ctx context.Context, chunks []document.EmbeddedChunk) error
	SearchSimilar(ctx context.Context, vector []float32, topK int) ([]document.RetrievedDocument, error)

	// GetLastScrapedDate reports the newest published_date stored for source.
	// ok is false when there is no watermark yet.
	GetLastScrapedDate(ctx context.Context, source document.Source) (last time.Time, ok bool, err error)
	// GetContentHash reports the content_hash of the newest point for source.
	GetContentHash(ctx context.Context, source document.Source) (hash string, ok bool, err error)

	Close() error
}
