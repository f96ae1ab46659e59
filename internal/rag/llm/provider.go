package llm

import (
	"context"
	"iter"
)

// Prompt is one fully assembled request to the answering model.
type Prompt struct {
	System          string
	User            string
	Temperature     float32
	MaxOutputTokens int
}

// Provider generates grounded answers. GenerateStream yields text fragments in
// arrival order; a non-nil error ends the sequence.
type Provider interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
	GenerateStream(ctx context.Context, prompt Prompt) iter.Seq2[string, error]
}
