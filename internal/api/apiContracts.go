package api

import (
	"time"

	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/rag/ingest"
)

// responses--------------------

type QueryResponse struct {
	Answer  string                       `json:"answer"`
	Sources []document.RetrievedDocument `json:"sources"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"vector store not connected"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type JobResponse struct {
	Id          string            `json:"id"`
	Status      string            `json:"status" example:"RUNNING"`
	CurrentStep string            `json:"current_step"`
	Sources     []string          `json:"sources,omitempty"`
	Parallel    bool              `json:"parallel"`
	Report      *ingest.Report    `json:"report,omitempty"`
	Error       *JobOutgoingError `json:"error,omitempty"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     *time.Time        `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"500"`
	Message string `json:"message"`
	Retry   bool   `json:"can_retry"`
}

// requests---------------------

type QueryRequest struct {
	Question string `json:"question" validate:"required"`
	TopK     int    `json:"top_k,omitempty" example:"5"`
}

type IngestRequest struct {
	Sources  []string `json:"sources,omitempty" example:"medium,github"`
	Parallel bool     `json:"parallel,omitempty"`
}
