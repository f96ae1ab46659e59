package handlers

import (
	"context"
	"iter"

	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/rag/llm"
)

type stubEmbedder struct{}

func (stubEmbedder) EmbedText(context.Context, string) ([]float32, error) { return []float32{1}, nil }
func (stubEmbedder) EmbedBatch(_ context.Context, t []string) ([][]float32, error) {
	return make([][]float32, len(t)), nil
}
func (stubEmbedder) Dimension() int { return 1 }

type stubSearcher struct{}

func (stubSearcher) SearchSimilar(context.Context, []float32, int) ([]document.RetrievedDocument, error) {
	return sources(), nil
}

type stubLLM struct{ fragments []string }

func (s stubLLM) Generate(context.Context, llm.Prompt) (string, error) { return "", nil }
func (s stubLLM) GenerateStream(context.Context, llm.Prompt) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, f := range s.fragments {
			if !yield(f, nil) {
				return
			}
		}
	}
}
