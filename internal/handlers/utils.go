package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/akolanti/profile-rag/internal/adapter"
	"github.com/akolanti/profile-rag/internal/api"
	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/pkg/logger_i"
)

var logRH = logger_i.NewLogger("response_writer")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are gone, nothing left to tell the client
		logRH.Error("Error encoding response", "error", err)
	}
}

// WriteErrorResponse is the single failure shape of the API: {"error": "..."}.
func WriteErrorResponse(w http.ResponseWriter, httpCode int, message string) {
	writeJsonResponse(w, httpCode, adapter.ErrorResponse(message))
}

func validateQuery(req api.QueryRequest) string {
	if strings.TrimSpace(req.Question) == "" {
		return "question is required"
	}
	if req.TopK < 0 || req.TopK > config.MaxTopK {
		return fmt.Sprintf("top_k must be between 1 and %d", config.MaxTopK)
	}
	return ""
}

func validateSources(requested []string, known []string) ([]string, string) {
	out := make([]string, 0, len(requested))
	for _, raw := range requested {
		name := strings.ToLower(strings.TrimSpace(raw))
		if !slices.Contains(known, name) {
			return nil, fmt.Sprintf("unknown source %q, known sources: %s", raw, strings.Join(known, ", "))
		}
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out, ""
}
