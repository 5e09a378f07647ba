package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/intentlab/intentd/internal/domain"
	"github.com/intentlab/intentd/internal/service"
)

type ExecutionHandler struct {
	queue   *service.ExecutionQueue
	learner *service.LearnerService
}

func NewExecutionHandler(queue *service.ExecutionQueue, learner *service.LearnerService) *ExecutionHandler {
	return &ExecutionHandler{queue: queue, learner: learner}
}

func (h *ExecutionHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	items := h.queue.List()
	if items == nil {
		items = []domain.ExecutionPayload{}
	}
	writeJSON(w, http.StatusOK, items)
}

type feedbackRequest struct {
	Reward int `json:"reward"`
}

type feedbackResponse struct {
	TaskID     string                   `json:"task_id"`
	Removed    bool                     `json:"removed"`
	Parameters *domain.SystemParameters `json:"parameters"`
}

// Feedback applies an accept/reject reward to a staged payload: the learner
// adjusts the execution threshold, then the payload is removed from the
// queue.
func (h *ExecutionHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params, err := h.learner.ProcessReward(r.Context(), taskID, req.Reward)
	if err != nil {
		if errors.Is(err, service.ErrUnknownReward) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to process reward")
		return
	}

	removed := h.queue.Remove(taskID)

	writeJSON(w, http.StatusOK, feedbackResponse{
		TaskID:     taskID.String(),
		Removed:    removed,
		Parameters: params,
	})
}
