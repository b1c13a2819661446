package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/fintrackhq/ledger-backend/internal/bootstrap"
	"github.com/fintrackhq/ledger-backend/internal/config"
	"github.com/fintrackhq/ledger-backend/internal/handlers"
	"github.com/fintrackhq/ledger-backend/internal/response"
	"github.com/fintrackhq/ledger-backend/internal/router"
	"github.com/fintrackhq/ledger-backend/internal/services"
	"github.com/fintrackhq/ledger-backend/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// stores
	ustore := store.NewUserStore(bs.Firestore)
	astore := store.NewAccountStore(bs.Firestore)
	tstore := store.NewTransactionStore(bs.Firestore)

	// services
	userv := services.NewUserService(ustore)
	mutator := services.NewBalanceMutator(astore)
	tserv := services.NewTransactionService(tstore, astore, mutator)
	aserv := services.NewAccountService(astore, tstore)
	rserv := services.NewReportService(tstore, astore)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Firebase = bs.Firebase
	deps.UserSvc = userv
	deps.AccountSvc = aserv
	deps.TransactionSvc = tserv
	deps.ReportSvc = rserv

	// router
	r := router.NewRouter(deps, bs.Log)
	err = http.ListenAndServe(":"+cfg.Port, r)
	exitOnError("server start failed", err, bs.Log)
}
