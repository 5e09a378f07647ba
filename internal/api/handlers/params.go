package handlers

import (
	"net/http"

	"github.com/intentlab/intentd/internal/service"
)

type ParamsHandler struct {
	learner *service.LearnerService
}

func NewParamsHandler(learner *service.LearnerService) *ParamsHandler {
	return &ParamsHandler{learner: learner}
}

func (h *ParamsHandler) Get(w http.ResponseWriter, r *http.Request) {
	params, err := h.learner.GetSystemParameters(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get system parameters")
		return
	}
	writeJSON(w, http.StatusOK, params)
}
