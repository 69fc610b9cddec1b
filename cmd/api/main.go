package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/account"
	accountStore "github.com/FumingPower3925/HoneyBear-Folio/internal/account/store"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/config"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/database"
	folioHttp "github.com/FumingPower3925/HoneyBear-Folio/internal/http"
	accountHandler "github.com/FumingPower3925/HoneyBear-Folio/internal/http/account"
	quotesHandler "github.com/FumingPower3925/HoneyBear-Folio/internal/http/quotes"
	ratesHandler "github.com/FumingPower3925/HoneyBear-Folio/internal/http/rates"
	rulesHandler "github.com/FumingPower3925/HoneyBear-Folio/internal/http/rules"
	txHandler "github.com/FumingPower3925/HoneyBear-Folio/internal/http/transaction"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/ratefeed"
	ratefeedStore "github.com/FumingPower3925/HoneyBear-Folio/internal/ratefeed/store"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/rates"
	ratesStore "github.com/FumingPower3925/HoneyBear-Folio/internal/rates/store"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/rules"
	rulesStore "github.com/FumingPower3925/HoneyBear-Folio/internal/rules/store"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/transaction"
	txStore "github.com/FumingPower3925/HoneyBear-Folio/internal/transaction/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DB.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	var (
		ratesService    = rates.NewService(ratesStore.New(db))
		ratefeedService = ratefeed.NewService(ratefeedStore.New(db), cfg.Feed.BaseURL, cfg.Feed.Timeout)
		accountService  = account.NewService(accountStore.New(db), ratefeedService, ratesService, cfg.Currency.Target)
		txService       = transaction.NewService(txStore.New(db))
		rulesService    = rules.NewService(rulesStore.New(db))
	)

	var (
		accountH = accountHandler.NewHandler(accountService)
		txH      = txHandler.NewHandler(txService)
		ratesH   = ratesHandler.NewHandler(ratesService)
		rulesH   = rulesHandler.NewHandler(rulesService)
		quotesH  = quotesHandler.NewHandler(ratefeedService)
	)

	router := folioHttp.New(accountH, txH, ratesH, rulesH, quotesH)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	slog.Info("starting server", "addr", server.Addr, "db", cfg.DB.Path)

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
