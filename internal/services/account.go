package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fintrackhq/ledger-backend/internal/dto"
	"github.com/fintrackhq/ledger-backend/internal/errs"
	"github.com/fintrackhq/ledger-backend/internal/models"
	"github.com/fintrackhq/ledger-backend/pkg/logger"
)

type accountASStore interface {
	Create(ctx context.Context, uid string, a *models.Account) error
	Get(ctx context.Context, uid, accountID string) (*models.Account, error)
	List(ctx context.Context, uid string) ([]*models.Account, error)
	Delete(ctx context.Context, uid, accountID string) error
	SetBalance(ctx context.Context, uid, accountID string, balance float64) error
}

type accountTxStore interface {
	Create(ctx context.Context, uid string, t *models.Transaction) error
	Delete(ctx context.Context, uid, transactionID string) error
	Query(ctx context.Context, uid string, q dto.TransactionQuery, handle func(*models.Transaction) error) error
}

type accountService struct {
	accounts accountASStore
	txs      accountTxStore
	now      func() time.Time
}

func NewAccountService(accounts accountASStore, txs accountTxStore) *accountService {
	return &accountService{
		accounts: accounts,
		txs:      txs,
		now:      time.Now,
	}
}

// CreateAccount stores a new account with balance primed to the opening
// balance. A nonzero opening balance also seeds an "Opening Balance"
// ledger record for history; the seed carries no balance effect and the
// lifecycle manager refuses to touch it.
func (s *accountService) CreateAccount(ctx context.Context, uid string, req dto.CreateAccountRequest) (*models.Account, error) {
	if req.Name == "" {
		return nil, errs.NewValidationError("name is required")
	}
	if !req.Type.Valid() {
		return nil, errs.NewValidationError("invalid account type: " + string(req.Type))
	}
	if req.Currency == "" {
		return nil, errs.NewValidationError("currency is required")
	}

	now := s.now()
	a := &models.Account{
		ID:             uuid.New().String(),
		UserID:         uid,
		Name:           req.Name,
		Type:           req.Type,
		Currency:       req.Currency,
		OpeningBalance: req.OpeningBalance,
		Balance:        req.OpeningBalance,
		CreatedAt:      now,
	}
	if err := s.accounts.Create(ctx, uid, a); err != nil {
		return nil, err
	}

	if req.OpeningBalance != 0 {
		seed := openingSeed(uid, a, now)
		if err := s.txs.Create(ctx, uid, seed); err != nil {
			if delErr := s.accounts.Delete(ctx, uid, a.ID); delErr != nil {
				return nil, errs.NewPartialFailureError(
					"account created but opening balance record could not be seeded; recalibration recommended", err)
			}
			return nil, err
		}
	}

	log := logger.FromContext(ctx)
	log.Info("account created", "account_id", a.ID, "type", a.Type)
	return a, nil
}

func (s *accountService) GetAccount(ctx context.Context, uid, accountID string) (*models.Account, error) {
	return s.accounts.Get(ctx, uid, accountID)
}

func (s *accountService) ListAccounts(ctx context.Context, uid string) ([]*models.Account, error) {
	return s.accounts.List(ctx, uid)
}

// DeleteAccount removes the account record only; its transaction history
// stays behind and is not cascaded.
func (s *accountService) DeleteAccount(ctx context.Context, uid, accountID string) error {
	if err := s.accounts.Delete(ctx, uid, accountID); err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	log.Info("account deleted", "account_id", accountID)
	return nil
}

// Recalibrate recomputes the balance from the full ledger, opening
// balance plus the effect of every transaction where the account is the
// primary owner or a transfer destination, and overwrites the stored
// value. Running it twice in a row yields the same result.
func (s *accountService) Recalibrate(ctx context.Context, uid, accountID string) (*models.Account, error) {
	a, err := s.accounts.Get(ctx, uid, accountID)
	if err != nil {
		return nil, err
	}

	balance := a.OpeningBalance
	accumulate := func(t *models.Transaction) error {
		balance += t.EffectOn(accountID)
		return nil
	}

	if err := s.txs.Query(ctx, uid, dto.TransactionQuery{AccountID: &accountID}, accumulate); err != nil {
		return nil, err
	}
	// Destination side of transfers whose source lives on another account.
	if err := s.txs.Query(ctx, uid, dto.TransactionQuery{ToAccountID: &accountID}, accumulate); err != nil {
		return nil, err
	}

	if err := s.accounts.SetBalance(ctx, uid, accountID, balance); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Info("account recalibrated", "account_id", accountID, "previous_balance", a.Balance, "balance", balance)

	a.Balance = balance
	return a, nil
}

func openingSeed(uid string, a *models.Account, now time.Time) *models.Transaction {
	seedType := models.TypeIncome
	amount := a.OpeningBalance
	if amount < 0 {
		seedType = models.TypeExpense
		amount = -amount
	}
	return &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      uid,
		AccountID:   a.ID,
		Type:        seedType,
		Amount:      amount,
		Category:    models.CategoryOpeningBalance,
		Division:    models.DivisionPersonal,
		Description: "Opening balance",
		Date:        now.Format(dateLayout),
		CreatedAt:   now,
	}
}
