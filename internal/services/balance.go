package services

import (
	"context"

	"github.com/fintrackhq/ledger-backend/internal/errs"
	"github.com/fintrackhq/ledger-backend/internal/models"
	"github.com/fintrackhq/ledger-backend/pkg/logger"
)

// Signs for ApplyEffect.
const (
	Apply   = 1
	Reverse = -1
)

type balanceAccountStore interface {
	IncrementBalance(ctx context.Context, uid, accountID string, delta float64) error
}

// balanceMutator applies or reverses the monetary effect of a single
// transaction. Every per-account adjustment goes through the store's
// atomic increment; the mutator never reads a balance.
type balanceMutator struct {
	accounts balanceAccountStore
}

func NewBalanceMutator(accounts balanceAccountStore) *balanceMutator {
	return &balanceMutator{accounts: accounts}
}

// ApplyEffect adjusts the affected account balances by sign (Apply or
// Reverse) times the transaction's effect. Income adds to the primary
// account, expense subtracts, a transfer moves the amount from the primary
// to the destination account. Transfer weight lives on the transfer_out
// record; transfer_in mirrors are inert.
//
// For transfers the two increments form a best-effort unit: if the
// destination side fails, the source side is compensated, and a failed
// compensation surfaces as a PartialFailureError so the caller can
// recommend recalibration.
func (m *balanceMutator) ApplyEffect(ctx context.Context, uid string, tx *models.Transaction, sign int) error {
	amount := float64(sign) * tx.Amount

	switch tx.Type {
	case models.TypeIncome:
		return m.accounts.IncrementBalance(ctx, uid, tx.AccountID, amount)

	case models.TypeExpense:
		return m.accounts.IncrementBalance(ctx, uid, tx.AccountID, -amount)

	case models.TypeTransfer:
		if tx.TransferType == models.TransferIn {
			// Mirror record; the paired transfer_out carries the effect.
			return nil
		}
		if err := m.accounts.IncrementBalance(ctx, uid, tx.AccountID, -amount); err != nil {
			return err
		}
		if tx.ToAccountID == "" {
			// No destination side to adjust.
			return nil
		}
		if err := m.accounts.IncrementBalance(ctx, uid, tx.ToAccountID, amount); err != nil {
			if undoErr := m.accounts.IncrementBalance(ctx, uid, tx.AccountID, amount); undoErr != nil {
				log := logger.FromContext(ctx)
				log.Error("transfer compensation failed",
					"transaction_id", tx.ID,
					"account_id", tx.AccountID,
					"error", undoErr)
				return errs.NewPartialFailureError(
					"transfer balance update failed partway; recalibration recommended", err)
			}
			return err
		}
		return nil
	}

	return errs.NewValidationError("unknown transaction type: " + string(tx.Type))
}
