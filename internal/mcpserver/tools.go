package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/rag/retrieval"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of chunks to retrieve (default 5)"`
}

type SearchInput struct {
	Query string `json:"query" jsonschema:"text to find similar chunks for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of chunks to return (default 5)"`
}

type SearchOutput struct {
	Results []document.RetrievedDocument `json:"results"`
	Count   int                          `json:"count"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed profile content and list the sources used",
	}, s.handleAsk)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Return the indexed chunks most similar to a query without generating an answer",
	}, s.handleSearch)
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, retrieval.Answer, error) {
	topK, err := checkInput(input.Question, input.TopK)
	if err != nil {
		return nil, retrieval.Answer{}, err
	}
	answer, err := s.rag.Ask(ctx, input.Question, topK)
	if err != nil {
		s.logger.Error("ask tool failed", "error", err)
		return nil, retrieval.Answer{}, err
	}
	return nil, answer, nil
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	topK, err := checkInput(input.Query, input.TopK)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	docs, err := s.rag.Search(ctx, input.Query, topK)
	if err != nil {
		s.logger.Error("search tool failed", "error", err)
		return nil, SearchOutput{}, err
	}
	if docs == nil {
		docs = []document.RetrievedDocument{}
	}
	return nil, SearchOutput{Results: docs, Count: len(docs)}, nil
}

func checkInput(text string, topK int) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("question must not be empty")
	}
	if topK <= 0 {
		return config.DefaultTopK, nil
	}
	if topK > config.MaxTopK {
		return 0, fmt.Errorf("top_k must be at most %d", config.MaxTopK)
	}
	return topK, nil
}
