package chunker

import (
	"fmt"
	"strings"

	"github.com/akolanti/profile-rag/internal/domain/document"
)

// Chunker cuts text into windows of at most size words, consecutive windows
// sharing overlap words.
type Chunker struct {
	size    int
	overlap int
}

func New(size int, overlap int) (*Chunker, error) {
	if overlap < 0 || size-overlap < 1 {
		return nil, fmt.Errorf("%w: chunk size %d with overlap %d leaves no step", document.ErrConfiguration, size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }

// ChunkText splits on whitespace. The first window starts at word 0 and the
// last one always ends on the final word, however short it is.
func (c *Chunker) ChunkText(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.size - c.overlap
	var chunks []string
	for start := 0; start < len(words); start += step {
		end := min(start+c.size, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))

		// the window already reached the last word
		if end == len(words) {
			break
		}
	}
	return chunks
}

// ChunkDocuments emits one Chunk per window, in document order then window
// order. Each chunk owns its copy of the parent's metadata.
func (c *Chunker) ChunkDocuments(docs []document.Document) []document.Chunk {
	var chunks []document.Chunk
	for _, doc := range docs {
		for i, text := range c.ChunkText(doc.Content) {
			parent := doc.Clone()
			parent.Content = text
			chunks = append(chunks, document.Chunk{
				Document:   parent,
				ChunkIndex: i,
			})
		}
	}
	return chunks
}
