package dto

import (
	"github.com/fintrackhq/ledger-backend/internal/models"
)

type CreateAccountRequest struct {
	Name           string             `json:"name"`
	Type           models.AccountType `json:"type"`
	Currency       string             `json:"currency"`
	OpeningBalance float64            `json:"openingBalance"`
}
