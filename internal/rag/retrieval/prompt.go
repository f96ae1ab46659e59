package retrieval

import (
	"fmt"
	"strings"

	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/rag/llm"
)

const (
	systemTemplate = "You are a helpful assistant that answers questions based on what you know about %s."

	userTemplate = `You are an AI assistant answering questions based on %[1]s's writing and profile. The following is what you know about %[1]s, use it to answer the question.
If the answer is not in what you know about %[1]s, say that you do not know %[1]s well enough to answer the question.

What I know about %[1]s:
%[2]s

Question: %[3]s

Answer:`
)

// BuildContext labels each document "[Source i] title (source)" in the order
// given, numbering from 1. The same order is returned to the caller as sources.
func BuildContext(docs []document.RetrievedDocument) string {
	parts := make([]string, 0, len(docs))
	for i, d := range docs {
		parts = append(parts, fmt.Sprintf("[Source %d] %s (%s)\n%s\n", i+1, d.Title, d.Source, d.Content))
	}
	return strings.Join(parts, "\n")
}

func (s *service) prompt(question string, context string) llm.Prompt {
	return llm.Prompt{
		System:          fmt.Sprintf(systemTemplate, s.opts.Subject),
		User:            fmt.Sprintf(userTemplate, s.opts.Subject, context, question),
		Temperature:     s.opts.Temperature,
		MaxOutputTokens: s.opts.MaxOutputTokens,
	}
}
