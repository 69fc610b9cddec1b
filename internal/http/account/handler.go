package account

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/account"
)

type Handler struct {
	svc *account.Service
}

func NewHandler(svc *account.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.summary)
	r.Patch("/{accountID}", h.update)
	r.Delete("/{accountID}", h.delete)
}

type createAccountRequest struct {
	Name     string  `json:"name"`
	Balance  float64 `json:"balance"`
	Currency *string `json:"currency,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	a, err := h.svc.Create(r.Context(), account.CreateParams{
		Name:     req.Name,
		Balance:  req.Balance,
		Currency: req.Currency,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(a)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// summary lists accounts with balances converted toward the requested target
// currency (the configured default when the query is empty).
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.Summary(r.Context(), r.URL.Query().Get("target"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(accounts)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateAccountRequest struct {
	Name     *string `json:"name,omitempty"`
	Currency *string `json:"currency,omitempty"`
}

// update renames the account, and changes its currency when the request
// carries one. An empty currency string clears the assignment.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, "invalid account id", http.StatusBadRequest)
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var name string
	if req.Name != nil {
		name = *req.Name
	}

	var a *account.Account

	if req.Currency != nil {
		currency := req.Currency
		if *currency == "" {
			currency = nil
		}

		a, err = h.svc.Update(r.Context(), id, name, currency)
	} else {
		a, err = h.svc.Rename(r.Context(), id, name)
	}

	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(a)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, "invalid account id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, account.ErrNameEmpty), errors.Is(err, account.ErrNameTaken):
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, account.ErrNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	default:
		writeError(w, "internal error", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
