package dto

import (
	"github.com/fintrackhq/ledger-backend/internal/models"
)

type CreateTransactionRequest struct {
	AccountID   string                 `json:"accountId"`
	ToAccountID string                 `json:"toAccountId,omitempty"`
	Type        models.TransactionType `json:"type"`
	Amount      float64                `json:"amount"`
	Category    string                 `json:"category,omitempty"`
	Division    models.Division        `json:"division"`
	Description string                 `json:"description,omitempty"`
	Date        string                 `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
}

// UpdateTransactionRequest carries partial fields; nil means "leave as is".
type UpdateTransactionRequest struct {
	Type        *models.TransactionType `json:"type,omitempty"`
	Amount      *float64                `json:"amount,omitempty"`
	Category    *string                 `json:"category,omitempty"`
	Division    *models.Division        `json:"division,omitempty"`
	Description *string                 `json:"description,omitempty"`
	Date        *string                 `json:"date,omitempty"`
	ToAccountID *string                 `json:"toAccountId,omitempty"`
}

// TransactionQuery is the store-level filter set. Date bounds are
// inclusive YYYY-MM-DD strings, compared lexicographically.
type TransactionQuery struct {
	AccountID   *string
	ToAccountID *string
	TransferID  *string
	Type        *models.TransactionType
	Category    *string
	Division    *models.Division
	DateFrom    *string
	DateTo      *string
	OrderBy     string
	Desc        bool
	Limit       int
}

type TransactionListQuery struct {
	Type     *models.TransactionType
	Category *string
	Division *models.Division
	DateFrom *string
	DateTo   *string
	Page     int
	Limit    int
}

type TransactionSummary struct {
	Income      float64 `json:"income"`
	Expense     float64 `json:"expense"`
	TransferIn  float64 `json:"transferIn"`
	TransferOut float64 `json:"transferOut"`
	Net         float64 `json:"net"`
	Count       int     `json:"count"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type TransactionListResult struct {
	Transactions []models.Transaction `json:"transactions"`
	Summary      TransactionSummary   `json:"summary"`
	Pagination   Pagination           `json:"pagination"`
}
