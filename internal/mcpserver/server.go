// Package mcpserver exposes the retrieval service as Model Context Protocol
// tools so agents can ask questions over the same index as the HTTP API.
package mcpserver

import (
	"errors"
	"net/http"

	"github.com/akolanti/profile-rag/internal/rag/retrieval"
	"github.com/akolanti/profile-rag/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "1.0.0"

var ErrMissingRetrievalService = errors.New("retrieval service is required")

type Server struct {
	rag    retrieval.Service
	server *mcp.Server
	logger *logger_i.Logger
}

func NewServer(rag retrieval.Service) (*Server, error) {
	if rag == nil {
		return nil, ErrMissingRetrievalService
	}
	s := &Server{
		rag: rag,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "profile-rag",
			Version: Version,
		}, nil),
		logger: logger_i.NewLogger("mcp"),
	}
	s.registerTools()
	return s, nil
}

// Handler serves the streamable HTTP transport. Mount it behind the
// protected middleware.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}
