package handlers

import (
	"log/slog"

	"firebase.google.com/go/v4/auth"

	"github.com/fintrackhq/ledger-backend/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	Firebase        *auth.Client
	UserSvc         UserService
	AccountSvc      AccountService
	TransactionSvc  TransactionService
	ReportSvc       ReportService
}
