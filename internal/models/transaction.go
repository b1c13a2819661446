package models

import (
	"time"
)

type TransactionType string

const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransfer:
		return true
	}
	return false
}

type TransferType string

const (
	TransferOut TransferType = "transfer_out"
	TransferIn  TransferType = "transfer_in"
)

type Division string

const (
	DivisionOffice   Division = "office"
	DivisionPersonal Division = "personal"
)

func (d Division) Valid() bool {
	return d == DivisionOffice || d == DivisionPersonal
}

const (
	// CategoryTransfer is forced onto transfer records created without a category.
	CategoryTransfer = "Transfer"
	// CategoryOpeningBalance marks the ledger record seeded at account
	// creation. It carries no balance effect and cannot be edited or deleted.
	CategoryOpeningBalance = "Opening Balance"
)

// EditWindow is how long after creation a transaction stays mutable.
const EditWindow = 12 * time.Hour

// Transaction is a single dated financial event touching one account, or
// two for transfers. A transfer persists as a linked pair: a transfer_out
// record owned by the source account and a transfer_in mirror owned by the
// destination, sharing a TransferID.
type Transaction struct {
	ID           string          `firestore:"id" json:"id"`
	UserID       string          `firestore:"userId" json:"userId"`
	AccountID    string          `firestore:"accountId" json:"accountId"`
	ToAccountID  string          `firestore:"toAccountId" json:"toAccountId,omitempty"`
	Type         TransactionType `firestore:"type" json:"type"`
	Amount       float64         `firestore:"amount" json:"amount"`
	Category     string          `firestore:"category" json:"category"`
	Division     Division        `firestore:"division" json:"division"`
	Description  string          `firestore:"description" json:"description,omitempty"`
	Date         string          `firestore:"date" json:"date"` // YYYY-MM-DD
	TransferType TransferType    `firestore:"transferType" json:"transferType,omitempty"`
	TransferID   string          `firestore:"transferId" json:"transferId,omitempty"`
	CreatedAt    time.Time       `firestore:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time       `firestore:"updatedAt" json:"updatedAt"`
}

// IsEditable reports whether the transaction is still inside the edit
// window at the given instant. Computed, never persisted.
func (t *Transaction) IsEditable(now time.Time) bool {
	return now.Sub(t.CreatedAt) < EditWindow
}

// EffectOn returns the signed balance effect of the transaction on the
// given account. Transfer weight is carried entirely by the transfer_out
// record (source side negative, destination side positive); transfer_in
// mirrors and the opening-balance seed are read-model records with no
// weight of their own.
func (t *Transaction) EffectOn(accountID string) float64 {
	if t.Category == CategoryOpeningBalance {
		return 0
	}
	switch t.Type {
	case TypeIncome:
		if t.AccountID == accountID {
			return t.Amount
		}
	case TypeExpense:
		if t.AccountID == accountID {
			return -t.Amount
		}
	case TypeTransfer:
		if t.TransferType == TransferIn {
			return 0
		}
		if t.AccountID == accountID {
			return -t.Amount
		}
		if t.ToAccountID == accountID {
			return t.Amount
		}
	}
	return 0
}
