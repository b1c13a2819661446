package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/fintrackhq/ledger-backend/internal/handlers"
	"github.com/fintrackhq/ledger-backend/internal/middleware"
)

func NewRouter(deps *handlers.Deps, log *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggerMiddleware(log).LoggerMiddleware)
	r.Use(middleware.NewMiddleware(deps.Firebase).FirebaseAuth)

	ush := handlers.NewUserHandlers(deps)
	ash := handlers.NewAccountHandlers(deps)
	tsh := handlers.NewTransactionHandlers(deps)
	rsh := handlers.NewReportHandlers(deps)

	r.Mount("/users", ush.UserRoutes())
	r.Mount("/accounts", ash.AccountRoutes())
	r.Mount("/transactions", tsh.TransactionRoutes())
	r.Mount("/reports", rsh.ReportRoutes())
	return r
}
