package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/http/account"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/http/quotes"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/http/rates"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/http/rules"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/http/transaction"
)

func New(
	accountsV1 *account.Handler,
	transactionsV1 *transaction.Handler,
	ratesV1 *rates.Handler,
	rulesV1 *rules.Handler,
	quotesV1 *quotes.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(requestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			accountsV1.Routes(r)
			transactionsV1.AccountRoutes(r)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			transactionsV1.Routes(r)
		})

		transactionsV1.LookupRoutes(r)

		r.Route("/rates", ratesV1.Routes)

		r.Route("/rules", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			rulesV1.Routes(r)
		})

		r.Route("/quotes", quotesV1.Routes)
	})

	return router
}
