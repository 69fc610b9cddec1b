package rates

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/rates"
)

type Handler struct {
	svc *rates.Service
}

func NewHandler(svc *rates.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Put("/{currency}", h.set)
	r.Get("/{currency}", h.get)
}

type setRateRequest struct {
	Rate float64 `json:"rate"`
}

func (h *Handler) set(w http.ResponseWriter, r *http.Request) {
	currency := chi.URLParam(r, "currency")

	var req setRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Set(r.Context(), currency, req.Rate); err != nil {
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type rateResponse struct {
	Currency string  `json:"currency"`
	Rate     float64 `json:"rate"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	currency := chi.URLParam(r, "currency")

	rate, err := h.svc.Get(r.Context(), currency)
	if err != nil {
		if errors.Is(err, rates.ErrNotFound) {
			writeError(w, err.Error(), http.StatusNotFound)
			return
		}

		writeError(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(rateResponse{Currency: currency, Rate: rate}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
