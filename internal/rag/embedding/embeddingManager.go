package embedding

import (
	"context"
	"fmt"

	"github.com/akolanti/profile-rag/internal/domain/document"
)

// Embedder maps text to vectors of a fixed Dimension. EmbedBatch returns one
// vector per input, in input order, or an error and no vectors at all.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// CheckBatch rejects a backend response that does not line up with its input.
func CheckBatch(vectors [][]float32, inputs int, dimension int) error {
	if len(vectors) != inputs {
		return fmt.Errorf("%w: got %d vectors for %d inputs", document.ErrEmbeddingBackend, len(vectors), inputs)
	}
	for i, v := range vectors {
		if len(v) != dimension {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d", document.ErrEmbeddingBackend, i, len(v), dimension)
		}
	}
	return nil
}
