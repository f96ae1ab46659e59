package document

import "time"

type Source string

const (
	SourceMedium   Source = "medium"
	SourceGithub   Source = "github"
	SourceResume   Source = "resume"
	SourceLinkedIn Source = "linkedin"
)

// Document is what a source adapter produces. It is never mutated after the
// adapter returns it.
type Document struct {
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	URL           string         `json:"url"`
	Source        Source         `json:"source"`
	PublishedDate time.Time      `json:"published_date"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	ContentHash   string         `json:"content_hash,omitempty"`
}

// Clone returns a copy whose metadata map is not shared with d.
func (d Document) Clone() Document {
	c := d
	c.Metadata = cloneMetadata(d.Metadata)
	return c
}

// Chunk is a Document whose Content has been replaced by one window of the
// parent text.
type Chunk struct {
	Document
	ChunkIndex int `json:"chunk_index"`
}

type EmbeddedChunk struct {
	Chunk
	Embedding []float32 `json:"-"`
}

// RetrievedDocument is a stored point returned by a similarity search.
type RetrievedDocument struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	Source        Source  `json:"source"`
	URL           string  `json:"url"`
	PublishedDate string  `json:"published_date"`
	Similarity    float32 `json:"similarity"`
}

func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case map[string]any:
			out[k] = cloneMetadata(t)
		case []any:
			out[k] = append([]any(nil), t...)
		case []string:
			out[k] = append([]string(nil), t...)
		default:
			out[k] = v
		}
	}
	return out
}
