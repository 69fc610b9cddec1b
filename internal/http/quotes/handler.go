package quotes

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/ratefeed"
)

type Handler struct {
	svc *ratefeed.Service
}

func NewHandler(svc *ratefeed.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.quotes)
	r.Get("/{symbol}/history", h.history)
}

type quoteResponse struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
	Currency      *string `json:"currency,omitempty"`
}

func (h *Handler) quotes(w http.ResponseWriter, r *http.Request) {
	symbols := splitSymbols(r.URL.Query().Get("symbols"))
	if len(symbols) == 0 {
		writeError(w, "missing symbols parameter", http.StatusBadRequest)
		return
	}

	fetched, err := h.svc.Quotes(r.Context(), symbols)
	if err != nil {
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]quoteResponse, len(fetched))
	for i, quote := range fetched {
		resp[i] = quoteResponse{
			Symbol:        quote.Symbol,
			Price:         quote.Price,
			ChangePercent: quote.ChangePercent,
			Currency:      quote.Currency,
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type dailyQuoteResponse struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	prices, err := h.svc.History(r.Context(), symbol)
	if err != nil {
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]dailyQuoteResponse, len(prices))
	for i, price := range prices {
		resp[i] = dailyQuoteResponse{Date: price.Date, Price: price.Price}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func splitSymbols(raw string) []string {
	var symbols []string

	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			symbols = append(symbols, trimmed)
		}
	}

	return symbols
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
