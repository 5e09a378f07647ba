package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/intentlab/intentd/internal/domain"
)

type TrajectoryHandler struct {
	store domain.TrajectoryStore
}

func NewTrajectoryHandler(store domain.TrajectoryStore) *TrajectoryHandler {
	return &TrajectoryHandler{store: store}
}

type createTrajectoryRequest struct {
	Title      string             `json:"title"`
	Milestones []domain.Milestone `json:"milestones"`
}

func (h *TrajectoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTrajectoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	trajectory := &domain.Trajectory{
		Title:      req.Title,
		Milestones: req.Milestones,
	}
	if err := h.store.Create(r.Context(), trajectory); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create trajectory")
		return
	}
	writeJSON(w, http.StatusCreated, trajectory)
}

func (h *TrajectoryHandler) List(w http.ResponseWriter, r *http.Request) {
	trajectories, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list trajectories")
		return
	}
	if trajectories == nil {
		trajectories = []domain.Trajectory{}
	}
	writeJSON(w, http.StatusOK, trajectories)
}
