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

type IntentHandler struct {
	stage *service.StageService
	prop  *service.PropagationService
}

func NewIntentHandler(stage *service.StageService, prop *service.PropagationService) *IntentHandler {
	return &IntentHandler{stage: stage, prop: prop}
}

type createIntentRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Stage       string   `json:"stage,omitempty"`
	Precision   *float64 `json:"precision,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	ParentID    string   `json:"parent_id,omitempty"`
}

func (h *IntentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := service.CreateIntentInput{
		Title:       req.Title,
		Description: req.Description,
		Stage:       req.Stage,
		Precision:   req.Precision,
		Priority:    req.Priority,
		Tags:        req.Tags,
	}
	if req.ParentID != "" {
		parentID, err := uuid.Parse(req.ParentID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid parent_id")
			return
		}
		in.ParentID = &parentID
	}

	intent, err := h.stage.CreateIntent(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIntentTitleEmpty), errors.Is(err, service.ErrInvalidStage):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create intent")
		}
		return
	}

	writeJSON(w, http.StatusCreated, intent)
}

func (h *IntentHandler) List(w http.ResponseWriter, r *http.Request) {
	intents, err := h.stage.ListIntents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list intents")
		return
	}
	if intents == nil {
		intents = []domain.Intent{}
	}
	writeJSON(w, http.StatusOK, intents)
}

func (h *IntentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIntentID(w, r)
	if !ok {
		return
	}

	intent, err := h.stage.GetIntent(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrIntentNotFound) {
			writeError(w, http.StatusNotFound, "intent not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get intent")
		return
	}
	writeJSON(w, http.StatusOK, intent)
}

type transitionRequest struct {
	Stage  string `json:"stage"`
	Reason string `json:"reason,omitempty"`
}

func (h *IntentHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIntentID(w, r)
	if !ok {
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !domain.ValidStage(req.Stage) {
		writeError(w, http.StatusBadRequest, "invalid stage")
		return
	}

	intent, err := h.stage.TransitionState(r.Context(), id, domain.Stage(req.Stage), req.Reason)
	if err != nil {
		var invalid *service.InvalidTransitionError
		switch {
		case errors.Is(err, service.ErrIntentNotFound):
			writeError(w, http.StatusNotFound, "intent not found")
		case errors.As(err, &invalid):
			writeError(w, http.StatusConflict, invalid.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to transition intent")
		}
		return
	}
	writeJSON(w, http.StatusOK, intent)
}

type evidenceRequest struct {
	Weight float64 `json:"weight"`
}

func (h *IntentHandler) AddEvidence(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIntentID(w, r)
	if !ok {
		return
	}

	var req evidenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	intent, err := h.prop.AddEvidence(r.Context(), id, req.Weight)
	if err != nil {
		if errors.Is(err, service.ErrIntentNotFound) {
			writeError(w, http.StatusNotFound, "intent not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to add evidence")
		return
	}
	writeJSON(w, http.StatusOK, intent)
}

func (h *IntentHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIntentID(w, r)
	if !ok {
		return
	}

	intent, err := h.prop.EvaluateConfidence(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrIntentNotFound) {
			writeError(w, http.StatusNotFound, "intent not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to evaluate intent")
		return
	}
	writeJSON(w, http.StatusOK, intent)
}

func parseIntentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid intent id")
		return uuid.Nil, false
	}
	return id, true
}
