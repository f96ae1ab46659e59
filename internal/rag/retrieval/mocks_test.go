package retrieval_test

import (
	"context"
	"iter"

	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/rag/llm"
)

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	Calls       int
	OnEmbedText func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.Calls++
	if m.OnEmbedText != nil {
		return m.OnEmbedText(ctx, text)
	}
	return []float32{0.1, 0.2}, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), nil
}

func (m *MockEmbedder) Dimension() int { return 2 }

// MockSearcher implements retrieval.Searcher
type MockSearcher struct {
	GotTopK  int
	OnSearch func(ctx context.Context, vector []float32, topK int) ([]document.RetrievedDocument, error)
}

func (m *MockSearcher) SearchSimilar(ctx context.Context, vector []float32, topK int) ([]document.RetrievedDocument, error) {
	m.GotTopK = topK
	if m.OnSearch != nil {
		return m.OnSearch(ctx, vector, topK)
	}
	return sampleDocs(), nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	Prompts    []llm.Prompt
	OnGenerate func(ctx context.Context, p llm.Prompt) (string, error)
	Fragments  []string
	StreamErr  error
}

func (m *MockLLM) Generate(ctx context.Context, p llm.Prompt) (string, error) {
	m.Prompts = append(m.Prompts, p)
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, p)
	}
	return "mocked llm response", nil
}

func (m *MockLLM) GenerateStream(ctx context.Context, p llm.Prompt) iter.Seq2[string, error] {
	m.Prompts = append(m.Prompts, p)
	return func(yield func(string, error) bool) {
		for _, f := range m.Fragments {
			if !yield(f, nil) {
				return
			}
		}
		if m.StreamErr != nil {
			yield("", m.StreamErr)
		}
	}
}

// MockCache implements cache.Cache for answers
type MockCache[V any] struct {
	Entries map[string]V
	Gets    int
}

func (m *MockCache[V]) Get(ctx context.Context, key string) (V, bool) {
	m.Gets++
	v, ok := m.Entries[key]
	return v, ok
}

func (m *MockCache[V]) Set(ctx context.Context, key string, value V) {
	if m.Entries == nil {
		m.Entries = map[string]V{}
	}
	m.Entries[key] = value
}

func sampleDocs() []document.RetrievedDocument {
	return []document.RetrievedDocument{
		{ID: "p1", Title: "Go at scale", Content: "Jason writes Go services.", Source: document.SourceMedium,
			URL: "https://medium.com/@jason/go", PublishedDate: "2024-01-02T00:00:00Z", Similarity: 0.92},
		{ID: "p2", Title: "jason/rag", Content: "A retrieval pipeline.", Source: document.SourceGithub,
			URL: "https://github.com/jason/rag", PublishedDate: "2024-02-01T00:00:00Z", Similarity: 0.81},
	}
}
