package handlers

import (
	"github.com/akolanti/profile-rag/internal/job"
	"github.com/akolanti/profile-rag/internal/rag/retrieval"
	"github.com/akolanti/profile-rag/pkg/logger_i"
)

// Handler serves the query and ingestion endpoints. Everything it needs is
// injected at construction, there is no package state.
type Handler struct {
	rag     retrieval.Service
	jobs    *job.Service
	sources []string
	logger  *logger_i.Logger
}

// New takes the names the source registry knows so ingestion requests can be
// validated before they are queued.
func New(rag retrieval.Service, jobs *job.Service, sources []string) *Handler {
	return &Handler{
		rag:     rag,
		jobs:    jobs,
		sources: sources,
		logger:  logger_i.NewLogger("handlers"),
	}
}
