package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/akolanti/profile-rag/internal/adapter"
	"github.com/akolanti/profile-rag/internal/api"
	"github.com/akolanti/profile-rag/internal/config"
)

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.MessageResponse{Message: "Profile RAG API is running"})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "healthy"})
}

// Query godoc
// @Summary      Answer a question
// @Description  Retrieves the top_k most similar chunks and answers from them. Repeated questions are served from the answer cache.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      api.QueryRequest   true  "Question and optional top_k (default 5)"
// @Success      200      {object}  api.QueryResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /query [post]
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	log := h.logger.FromContext(r.Context(), config.TRACE_ID_KEY)

	req, ok := decodeQuery(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.AnswerTimeout)
	defer cancel()

	answer, err := h.rag.Ask(ctx, req.Question, req.TopK)
	if err != nil {
		log.Error("Error in query endpoint", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(answer))
}

// QueryStream godoc
// @Summary      Answer a question as a server-sent event stream
// @Description  Emits one {"type":"sources"} event, then {"type":"text"} fragments as the model produces them.
// @Tags         Query
// @Accept       json
// @Produce      text/event-stream
// @Param        request  body      api.QueryRequest   true  "Question and optional top_k (default 5)"
// @Success      200      {string}  string             "data: {json}"
// @Failure      400      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /query/stream [post]
func (h *Handler) QueryStream(w http.ResponseWriter, r *http.Request) {
	log := h.logger.FromContext(r.Context(), config.TRACE_ID_KEY)

	req, ok := decodeQuery(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteErrorResponse(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	stream, err := h.rag.AnswerStream(r.Context(), req.Question, req.TopK)
	if err != nil {
		log.Error("Error in stream endpoint", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	for event := range stream.Events() {
		data, err := json.Marshal(event)
		if err != nil {
			log.Error("Error encoding stream event", "error", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			log.Warn("Client went away mid-stream", "error", err)
			continue
		}
		flusher.Flush()
	}

	if err := stream.Err(); err != nil {
		log.Warn("Answer stream ended early", "error", err)
	}
}

func decodeQuery(w http.ResponseWriter, r *http.Request) (api.QueryRequest, bool) {
	var req api.QueryRequest
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if msg := validateQuery(req); msg != "" {
		WriteErrorResponse(w, http.StatusBadRequest, msg)
		return req, false
	}
	if req.TopK == 0 {
		req.TopK = config.DefaultTopK
	}
	return req, true
}
