package models

import (
	"time"
)

type AccountType string

const (
	AccountTypeCash       AccountType = "cash"
	AccountTypeBank       AccountType = "bank"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeSavings    AccountType = "savings"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeCash, AccountTypeBank, AccountTypeCreditCard, AccountTypeSavings:
		return true
	}
	return false
}

// Account is a balance-holding entity owned by a single user.
// Balance is derived state: only the balance mutator and the recalibration
// path may change it. OpeningBalance is set once at creation.
type Account struct {
	ID             string      `firestore:"id" json:"id"`
	UserID         string      `firestore:"userId" json:"userId"`
	Name           string      `firestore:"name" json:"name"`
	Type           AccountType `firestore:"type" json:"type"`
	Currency       string      `firestore:"currency" json:"currency"`
	OpeningBalance float64     `firestore:"openingBalance" json:"openingBalance"`
	Balance        float64     `firestore:"balance" json:"balance"`
	CreatedAt      time.Time   `firestore:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time   `firestore:"updatedAt" json:"updatedAt"`
}
