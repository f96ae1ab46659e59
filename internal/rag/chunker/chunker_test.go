package chunker

import (
	"strings"
	"testing"
	"time"

	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustChunker(t *testing.T, size, overlap int) *Chunker {
	t.Helper()
	c, err := New(size, overlap)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsNonPositiveStep(t *testing.T) {
	for _, tt := range []struct{ size, overlap int }{{5, 5}, {2, 5}, {0, 0}, {5, -1}} {
		_, err := New(tt.size, tt.overlap)
		assert.ErrorIs(t, err, document.ErrConfiguration, "size=%d overlap=%d", tt.size, tt.overlap)
	}
}

func TestChunkText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
		want    []string
	}{
		{"empty", "", 5, 2, nil},
		{"whitespace only", "  \n\t ", 5, 2, nil},
		{"single word", "hello", 5, 2, []string{"hello"}},
		{"shorter than window", "a b c", 5, 2, []string{"a b c"}},
		{"exact window", "a b c d e", 5, 2, []string{"a b c d e"}},
		{
			"ten words",
			"one two three four five six seven eight nine ten",
			5, 2,
			[]string{"one two three four five", "four five six seven eight", "seven eight nine ten"},
		},
		{"no overlap", "a b c d e f", 3, 0, []string{"a b c", "d e f"}},
		{"collapses whitespace", "a\n\nb   c\td", 2, 1, []string{"a b", "b c", "c d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustChunker(t, tt.size, tt.overlap).ChunkText(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChunkText_ReconstructsWords(t *testing.T) {
	var b strings.Builder
	for i := range 97 {
		b.WriteString("w")
		b.WriteString(strings.Repeat("x", i%7))
		b.WriteString(" ")
	}
	text := b.String()
	words := strings.Fields(text)

	for _, cfg := range []struct{ size, overlap int }{{5, 2}, {10, 0}, {7, 6}, {200, 25}, {1, 0}} {
		c := mustChunker(t, cfg.size, cfg.overlap)
		chunks := c.ChunkText(text)
		require.NotEmpty(t, chunks)

		step := cfg.size - cfg.overlap
		var rebuilt []string
		for i, chunk := range chunks {
			cw := strings.Fields(chunk)
			assert.LessOrEqual(t, len(cw), cfg.size)
			if i == len(chunks)-1 {
				rebuilt = append(rebuilt, cw...)
				continue
			}
			rebuilt = append(rebuilt, cw[:step]...)
		}
		assert.Equal(t, words, rebuilt, "size=%d overlap=%d", cfg.size, cfg.overlap)

		last := strings.Fields(chunks[len(chunks)-1])
		assert.Equal(t, words[len(words)-1], last[len(last)-1])
	}
}

func TestChunkDocuments(t *testing.T) {
	published := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	docs := []document.Document{
		{
			Title:         "Post A",
			Content:       "w1 w2 w3 w4 w5 w6 w7 w8",
			URL:           "https://medium.com/a",
			Source:        document.SourceMedium,
			PublishedDate: published,
			Metadata:      map[string]any{"tags": []string{"go"}},
		},
		{
			Title:         "Post B",
			Content:       "x1 x2 x3 x4",
			URL:           "https://medium.com/b",
			Source:        document.SourceMedium,
			PublishedDate: published,
			ContentHash:   "abc",
		},
		{Title: "Empty", Content: "   ", Source: document.SourceMedium},
	}

	chunks := mustChunker(t, 5, 2).ChunkDocuments(docs)
	require.Len(t, chunks, 3)

	assert.Equal(t, "w1 w2 w3 w4 w5", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, "w4 w5 w6 w7 w8", chunks[1].Content)
	assert.Equal(t, 1, chunks[1].ChunkIndex)
	assert.Equal(t, "x1 x2 x3 x4", chunks[2].Content)
	assert.Equal(t, 0, chunks[2].ChunkIndex)

	for i, parent := range []document.Document{docs[0], docs[0], docs[1]} {
		assert.Equal(t, parent.Title, chunks[i].Title)
		assert.Equal(t, parent.URL, chunks[i].URL)
		assert.Equal(t, parent.Source, chunks[i].Source)
		assert.Equal(t, parent.PublishedDate, chunks[i].PublishedDate)
		assert.Equal(t, parent.ContentHash, chunks[i].ContentHash)
		assert.Equal(t, parent.Metadata, chunks[i].Metadata)
	}

	// parents are untouched
	assert.Equal(t, "w1 w2 w3 w4 w5 w6 w7 w8", docs[0].Content)
}

func TestChunkDocuments_SiblingIsolation(t *testing.T) {
	docs := []document.Document{
		{Content: "a b c d e f g h", Source: document.SourceGithub, Metadata: map[string]any{"type": "repository"}},
		{Content: "i j", Source: document.SourceGithub},
	}
	chunks := mustChunker(t, 3, 1).ChunkDocuments(docs)
	require.Len(t, chunks, 5)

	chunks[0].Source = "mutated"
	chunks[0].Metadata["type"] = "mutated"
	chunks[0].Title = "mutated"

	for j := 1; j < len(chunks); j++ {
		assert.Equal(t, document.SourceGithub, chunks[j].Source)
		assert.NotEqual(t, "mutated", chunks[j].Title)
	}
	assert.Equal(t, "repository", chunks[1].Metadata["type"])
	assert.Equal(t, "repository", docs[0].Metadata["type"])
}

func TestChunkDocuments_IndexesAreDense(t *testing.T) {
	text := strings.Repeat("word ", 1000)
	chunks := mustChunker(t, 50, 10).ChunkDocuments([]document.Document{{Content: text}})
	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
	}
}
