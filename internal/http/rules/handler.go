package rules

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/rules"
)

type Handler struct {
	svc *rules.Service
}

func NewHandler(svc *rules.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/order", h.reorder)
	r.Put("/{ruleID}", h.update)
	r.Delete("/{ruleID}", h.delete)
}

type ruleRequest struct {
	MatchField   string `json:"match_field"`
	MatchPattern string `json:"match_pattern"`
	ActionField  string `json:"action_field"`
	ActionValue  string `json:"action_value"`
}

func (req ruleRequest) params() rules.Params {
	return rules.Params{
		MatchField:   req.MatchField,
		MatchPattern: req.MatchPattern,
		ActionField:  req.ActionField,
		ActionValue:  req.ActionValue,
	}
}

type ruleResponse struct {
	ID           int64  `json:"id"`
	Priority     int    `json:"priority"`
	MatchField   string `json:"match_field"`
	MatchPattern string `json:"match_pattern"`
	ActionField  string `json:"action_field"`
	ActionValue  string `json:"action_value"`
}

func toResponse(rule *rules.Rule) ruleResponse {
	return ruleResponse{
		ID:           rule.ID,
		Priority:     rule.Priority,
		MatchField:   rule.MatchField,
		MatchPattern: rule.MatchPattern,
		ActionField:  rule.ActionField,
		ActionValue:  rule.ActionValue,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ruleList, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]ruleResponse, len(ruleList))
	for i, rule := range ruleList {
		resp[i] = toResponse(rule)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rule, err := h.svc.Create(r.Context(), req.params())
	if err != nil {
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(rule)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "ruleID"), 10, 64)
	if err != nil {
		writeError(w, "invalid rule id", http.StatusBadRequest)
		return
	}

	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rule, err := h.svc.Update(r.Context(), id, req.params())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(rule)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "ruleID"), 10, 64)
	if err != nil {
		writeError(w, "invalid rule id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	IDs []int64 `json:"ids"`
}

func (h *Handler) reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Reorder(r.Context(), req.IDs); err != nil {
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, rules.ErrNotFound) {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}

	writeError(w, "internal error", http.StatusInternalServerError)
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
