package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes registers the transaction resource itself.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/trades", h.createTrade)
	r.Put("/trades/{transactionID}", h.updateTrade)
	r.Put("/{transactionID}", h.update)
	r.Delete("/{transactionID}", h.delete)
}

// AccountRoutes registers the per-account listing, mounted under the
// accounts resource.
func (h *Handler) AccountRoutes(r chi.Router) {
	r.Get("/{accountID}/transactions", h.byAccount)
}

// LookupRoutes registers the autocomplete projections at the API root.
func (h *Handler) LookupRoutes(r chi.Router) {
	r.Get("/payees", h.payees)
	r.Get("/categories", h.categories)
}

type transactionRequest struct {
	AccountID int64   `json:"account_id"`
	Date      string  `json:"date"`
	Payee     string  `json:"payee"`
	Notes     *string `json:"notes,omitempty"`
	Category  *string `json:"category,omitempty"`
	Amount    float64 `json:"amount"`
	Currency  *string `json:"currency,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Create(r.Context(), transaction.CreateParams{
		AccountID: req.AccountID,
		Date:      req.Date,
		Payee:     req.Payee,
		Notes:     req.Notes,
		Category:  req.Category,
		Amount:    req.Amount,
		Currency:  req.Currency,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type tradeRequest struct {
	AccountID     int64   `json:"account_id"`
	Date          string  `json:"date"`
	Ticker        string  `json:"ticker"`
	Shares        float64 `json:"shares"`
	PricePerShare float64 `json:"price_per_share"`
	Fee           float64 `json:"fee"`
	Buy           bool    `json:"buy"`
	Notes         *string `json:"notes,omitempty"`
	Currency      *string `json:"currency,omitempty"`
}

func (req tradeRequest) params() transaction.TradeParams {
	return transaction.TradeParams{
		AccountID:     req.AccountID,
		Date:          req.Date,
		Ticker:        req.Ticker,
		Shares:        req.Shares,
		PricePerShare: req.PricePerShare,
		Fee:           req.Fee,
		Buy:           req.Buy,
		Notes:         req.Notes,
		Currency:      req.Currency,
	}
}

func (h *Handler) createTrade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.CreateTrade(r.Context(), req.params())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "transactionID"))
	if err != nil {
		writeError(w, "invalid transaction id", http.StatusBadRequest)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Update(r.Context(), id, transaction.UpdateParams{
		AccountID: req.AccountID,
		Date:      req.Date,
		Payee:     req.Payee,
		Notes:     req.Notes,
		Category:  req.Category,
		Amount:    req.Amount,
		Currency:  req.Currency,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) updateTrade(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "transactionID"))
	if err != nil {
		writeError(w, "invalid transaction id", http.StatusBadRequest)
		return
	}

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.UpdateTrade(r.Context(), id, req.params())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "transactionID"))
	if err != nil {
		writeError(w, "invalid transaction id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.All(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(txs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) byAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, "invalid account id", http.StatusBadRequest)
		return
	}

	txs, err := h.svc.ByAccount(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(txs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) payees(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, h.svc.Payees)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, h.svc.Categories)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request, fetch func(context.Context) ([]string, error)) {
	values, err := fetch(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if values == nil {
		values = []string{}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(values); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transaction.ErrNotFound), errors.Is(err, transaction.ErrAccountNotFound):
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
