package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/intentlab/intentd/internal/service"
)

type IngestHandler struct {
	svc *service.IngestService
}

func NewIngestHandler(svc *service.IngestService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

type ingestRequest struct {
	Text string `json:"text"`
}

func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Ingest(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, service.ErrEmptyInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to ingest input")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
