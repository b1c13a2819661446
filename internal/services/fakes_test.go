package services

import (
	"context"
	"sort"
	"time"

	"github.com/fintrackhq/ledger-backend/internal/dto"
	"github.com/fintrackhq/ledger-backend/internal/errs"
	"github.com/fintrackhq/ledger-backend/internal/models"
)

// In-memory stand-ins for the Firestore stores, shared across the service
// tests in this package.

type memAccountStore struct {
	accounts map[string]*models.Account

	failIncrementFor map[string]bool
	failDelete       bool
}

func newMemAccountStore(accounts ...*models.Account) *memAccountStore {
	s := &memAccountStore{
		accounts:         map[string]*models.Account{},
		failIncrementFor: map[string]bool{},
	}
	for _, a := range accounts {
		s.accounts[a.ID] = a
	}
	return s
}

func (s *memAccountStore) Create(ctx context.Context, uid string, a *models.Account) error {
	if _, ok := s.accounts[a.ID]; ok {
		return errs.NewAlreadyExistsError("account already exists")
	}
	s.accounts[a.ID] = a
	return nil
}

func (s *memAccountStore) Get(ctx context.Context, uid, accountID string) (*models.Account, error) {
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, errs.NewNotFoundError("account not found")
	}
	return a, nil
}

func (s *memAccountStore) List(ctx context.Context, uid string) ([]*models.Account, error) {
	out := make([]*models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memAccountStore) Delete(ctx context.Context, uid, accountID string) error {
	if s.failDelete {
		return errs.NewDatabaseError("delete", "forced failure", nil)
	}
	if _, ok := s.accounts[accountID]; !ok {
		return errs.NewNotFoundError("account not found")
	}
	delete(s.accounts, accountID)
	return nil
}

func (s *memAccountStore) IncrementBalance(ctx context.Context, uid, accountID string, delta float64) error {
	if s.failIncrementFor[accountID] {
		return errs.NewDatabaseError("update", "forced failure", nil)
	}
	a, ok := s.accounts[accountID]
	if !ok {
		return errs.NewNotFoundError("account not found")
	}
	a.Balance += delta
	return nil
}

func (s *memAccountStore) SetBalance(ctx context.Context, uid, accountID string, balance float64) error {
	a, ok := s.accounts[accountID]
	if !ok {
		return errs.NewNotFoundError("account not found")
	}
	a.Balance = balance
	return nil
}

func (s *memAccountStore) balance(accountID string) float64 {
	return s.accounts[accountID].Balance
}

type memTransactionStore struct {
	txs map[string]*models.Transaction

	failCreateAfter int // fail the nth Create onward, 0 disables
	creates         int
	failSet         bool
	failDelete      bool
}

func newMemTransactionStore(txs ...*models.Transaction) *memTransactionStore {
	s := &memTransactionStore{txs: map[string]*models.Transaction{}}
	for _, t := range txs {
		s.txs[t.ID] = t
	}
	return s
}

func (s *memTransactionStore) Create(ctx context.Context, uid string, t *models.Transaction) error {
	s.creates++
	if s.failCreateAfter > 0 && s.creates >= s.failCreateAfter {
		return errs.NewDatabaseError("create", "forced failure", nil)
	}
	if _, ok := s.txs[t.ID]; ok {
		return errs.NewAlreadyExistsError("transaction already exists")
	}
	cp := *t
	s.txs[t.ID] = &cp
	return nil
}

func (s *memTransactionStore) Get(ctx context.Context, uid, transactionID string) (*models.Transaction, error) {
	t, ok := s.txs[transactionID]
	if !ok {
		return nil, errs.NewNotFoundError("transaction not found")
	}
	cp := *t
	return &cp, nil
}

func (s *memTransactionStore) Set(ctx context.Context, uid string, t *models.Transaction) error {
	if s.failSet {
		return errs.NewDatabaseError("update", "forced failure", nil)
	}
	cp := *t
	s.txs[t.ID] = &cp
	return nil
}

func (s *memTransactionStore) Delete(ctx context.Context, uid, transactionID string) error {
	if s.failDelete {
		return errs.NewDatabaseError("delete", "forced failure", nil)
	}
	delete(s.txs, transactionID)
	return nil
}

func (s *memTransactionStore) GetByTransferID(ctx context.Context, uid, transferID string) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, t := range s.txs {
		if t.TransferID == transferID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memTransactionStore) Query(ctx context.Context, uid string, q dto.TransactionQuery, handle func(*models.Transaction) error) error {
	var matched []*models.Transaction
	for _, t := range s.txs {
		if q.AccountID != nil && t.AccountID != *q.AccountID {
			continue
		}
		if q.ToAccountID != nil && t.ToAccountID != *q.ToAccountID {
			continue
		}
		if q.TransferID != nil && t.TransferID != *q.TransferID {
			continue
		}
		if q.Type != nil && t.Type != *q.Type {
			continue
		}
		if q.Category != nil && t.Category != *q.Category {
			continue
		}
		if q.Division != nil && t.Division != *q.Division {
			continue
		}
		if q.DateFrom != nil && t.Date < *q.DateFrom {
			continue
		}
		if q.DateTo != nil && t.Date > *q.DateTo {
			continue
		}
		cp := *t
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		if q.Desc {
			return matched[i].Date > matched[j].Date
		}
		return matched[i].Date < matched[j].Date
	})
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	for _, t := range matched {
		if err := handle(t); err != nil {
			return err
		}
	}
	return nil
}

func (s *memTransactionStore) byTransferType(transferID string, tt models.TransferType) *models.Transaction {
	for _, t := range s.txs {
		if t.TransferID == transferID && t.TransferType == tt {
			return t
		}
	}
	return nil
}

func fixedNow() time.Time {
	return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
}
