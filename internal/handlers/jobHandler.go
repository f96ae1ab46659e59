package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/akolanti/profile-rag/internal/adapter"
	"github.com/akolanti/profile-rag/internal/adapter/utils"
	"github.com/akolanti/profile-rag/internal/api"
	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/domain/jobModel"
	"github.com/akolanti/profile-rag/internal/job"
)

// Ingest godoc
// @Summary      Start an ingestion run
// @Description  Queues a scrape, chunk, embed and store run over the given sources, or all of them when none are named.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      api.IngestRequest    false  "Sources to activate and parallel scraping"
// @Success      202      {object}  api.InitJobResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      503      {object}  api.ErrorResponse
// @Router       /ingest [post]
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req api.IngestRequest
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sources, msg := validateSources(req.Sources, h.sources)
	if msg != "" {
		WriteErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	created, err := h.jobs.Submit(r.Context(), jobModel.IngestPayload{Sources: sources, Parallel: req.Parallel})
	if errors.Is(err, job.ErrQueueFull) {
		WriteErrorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	} else if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "could not queue ingestion job")
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(created.Id))
}

// Status godoc
// @Summary      Get ingestion job status
// @Tags         Ingestion
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /status/{id} [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	result, found := h.jobs.Status(r.Context(), id)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, "job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}
