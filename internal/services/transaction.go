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

const dateLayout = "2006-01-02"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type txTransactionStore interface {
	Create(ctx context.Context, uid string, t *models.Transaction) error
	Get(ctx context.Context, uid, transactionID string) (*models.Transaction, error)
	Set(ctx context.Context, uid string, t *models.Transaction) error
	Delete(ctx context.Context, uid, transactionID string) error
	GetByTransferID(ctx context.Context, uid, transferID string) ([]*models.Transaction, error)
	Query(ctx context.Context, uid string, q dto.TransactionQuery, handle func(*models.Transaction) error) error
}

type txAccountStore interface {
	Get(ctx context.Context, uid, accountID string) (*models.Account, error)
}

type effectApplier interface {
	ApplyEffect(ctx context.Context, uid string, tx *models.Transaction, sign int) error
}

// transactionService orchestrates the transaction lifecycle: ownership
// checks, the edit window, balance effects via the mutator, and keeping
// transfer pairs in step.
type transactionService struct {
	txs      txTransactionStore
	accounts txAccountStore
	balances effectApplier
	now      func() time.Time
}

func NewTransactionService(txs txTransactionStore, accounts txAccountStore, balances effectApplier) *transactionService {
	return &transactionService{
		txs:      txs,
		accounts: accounts,
		balances: balances,
		now:      time.Now,
	}
}

func (s *transactionService) CreateTransaction(ctx context.Context, uid string, req dto.CreateTransactionRequest) (*models.Transaction, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.accounts.Get(ctx, uid, req.AccountID); err != nil {
		return nil, err
	}

	isTransfer := req.Type == models.TypeTransfer
	if isTransfer {
		// A transfer without a resolvable destination is rejected outright;
		// one-sided transfers are never persisted.
		if req.ToAccountID == "" {
			return nil, errs.NewValidationError("transfer requires toAccountId")
		}
		if req.ToAccountID == req.AccountID {
			return nil, errs.NewValidationError("transfer source and destination must differ")
		}
		if _, err := s.accounts.Get(ctx, uid, req.ToAccountID); err != nil {
			if _, ok := err.(*errs.NotFoundError); ok {
				return nil, errs.NewNotFoundError("destination account not found")
			}
			return nil, err
		}
	}

	now := s.now()
	tx := &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      uid,
		AccountID:   req.AccountID,
		Type:        req.Type,
		Amount:      req.Amount,
		Category:    req.Category,
		Division:    req.Division,
		Description: req.Description,
		Date:        req.Date,
		CreatedAt:   now,
	}
	if tx.Date == "" {
		tx.Date = now.Format(dateLayout)
	}
	if isTransfer {
		tx.ToAccountID = req.ToAccountID
		tx.TransferType = models.TransferOut
		tx.TransferID = uuid.New().String()
		if tx.Category == "" {
			tx.Category = models.CategoryTransfer
		}
	}

	if err := s.txs.Create(ctx, uid, tx); err != nil {
		return nil, err
	}
	if err := s.balances.ApplyEffect(ctx, uid, tx, Apply); err != nil {
		if delErr := s.txs.Delete(ctx, uid, tx.ID); delErr != nil {
			return nil, errs.NewPartialFailureError(
				"transaction persisted but balance update could not be completed or undone; recalibration recommended", err)
		}
		return nil, err
	}
	if isTransfer {
		if err := s.txs.Create(ctx, uid, mirrorOf(tx)); err != nil {
			if failErr := s.undoCreate(ctx, uid, tx); failErr != nil {
				return nil, failErr
			}
			return nil, err
		}
	}

	log := logger.FromContext(ctx)
	log.Info("transaction created", "transaction_id", tx.ID, "type", tx.Type, "account_id", tx.AccountID)
	return tx, nil
}

// undoCreate rolls back a created-and-applied primary record after a later
// step failed.
func (s *transactionService) undoCreate(ctx context.Context, uid string, tx *models.Transaction) error {
	if err := s.balances.ApplyEffect(ctx, uid, tx, Reverse); err != nil {
		return errs.NewPartialFailureError(
			"transfer creation failed partway; recalibration recommended", err)
	}
	if err := s.txs.Delete(ctx, uid, tx.ID); err != nil {
		return errs.NewPartialFailureError(
			"transfer creation failed partway; recalibration recommended", err)
	}
	return nil
}

func (s *transactionService) GetTransaction(ctx context.Context, uid, transactionID string) (*models.Transaction, error) {
	return s.txs.Get(ctx, uid, transactionID)
}

func (s *transactionService) UpdateTransaction(ctx context.Context, uid, transactionID string, req dto.UpdateTransactionRequest) (*models.Transaction, error) {
	existing, err := s.txs.Get(ctx, uid, transactionID)
	if err != nil {
		return nil, err
	}
	if existing.Category == models.CategoryOpeningBalance {
		return nil, errs.NewValidationError("the opening balance record cannot be modified")
	}
	if !existing.IsEditable(s.now()) {
		return nil, errs.NewForbiddenError("transaction is outside the edit window")
	}

	primary, oldMirror, err := s.resolvePair(ctx, uid, existing)
	if err != nil {
		return nil, err
	}

	merged, err := s.mergeUpdate(ctx, uid, primary, req)
	if err != nil {
		return nil, err
	}

	// Reverse the old effect in full, then reapply the new one; a diff of
	// the two would break down when the type itself changes.
	if err := s.balances.ApplyEffect(ctx, uid, primary, Reverse); err != nil {
		return nil, err
	}
	if err := s.txs.Set(ctx, uid, merged); err != nil {
		if undoErr := s.balances.ApplyEffect(ctx, uid, primary, Apply); undoErr != nil {
			return nil, errs.NewPartialFailureError(
				"transaction update failed partway; recalibration recommended", err)
		}
		return nil, err
	}
	if err := s.syncMirror(ctx, uid, merged, oldMirror); err != nil {
		return nil, err
	}
	if err := s.balances.ApplyEffect(ctx, uid, merged, Apply); err != nil {
		if _, ok := err.(*errs.PartialFailureError); ok {
			return nil, err
		}
		return nil, errs.NewPartialFailureError(
			"transaction update failed partway; recalibration recommended", err)
	}

	log := logger.FromContext(ctx)
	log.Info("transaction updated", "transaction_id", merged.ID, "type", merged.Type)
	return merged, nil
}

func (s *transactionService) DeleteTransaction(ctx context.Context, uid, transactionID string) error {
	existing, err := s.txs.Get(ctx, uid, transactionID)
	if err != nil {
		return err
	}
	if existing.Category == models.CategoryOpeningBalance {
		return errs.NewValidationError("the opening balance record cannot be deleted")
	}
	if !existing.IsEditable(s.now()) {
		return errs.NewForbiddenError("transaction is outside the edit window")
	}

	primary, mirror, err := s.resolvePair(ctx, uid, existing)
	if err != nil {
		return err
	}

	if err := s.balances.ApplyEffect(ctx, uid, primary, Reverse); err != nil {
		return err
	}
	if err := s.txs.Delete(ctx, uid, primary.ID); err != nil {
		if undoErr := s.balances.ApplyEffect(ctx, uid, primary, Apply); undoErr != nil {
			return errs.NewPartialFailureError(
				"transaction deletion failed partway; recalibration recommended", err)
		}
		return err
	}
	if mirror != nil {
		if err := s.txs.Delete(ctx, uid, mirror.ID); err != nil {
			return errs.NewPartialFailureError(
				"transfer mirror record could not be removed; recalibration recommended", err)
		}
	}

	log := logger.FromContext(ctx)
	log.Info("transaction deleted", "transaction_id", primary.ID, "type", primary.Type)
	return nil
}

func (s *transactionService) GetAccountTransactions(ctx context.Context, uid, accountID string, q dto.TransactionListQuery) (dto.TransactionListResult, error) {
	result := dto.TransactionListResult{}
	if _, err := s.accounts.Get(ctx, uid, accountID); err != nil {
		return result, err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := (page - 1) * limit

	var txs []models.Transaction
	summary := dto.TransactionSummary{}
	seen := 0
	err := s.txs.Query(ctx, uid, dto.TransactionQuery{
		AccountID: &accountID,
		Type:      q.Type,
		Category:  q.Category,
		Division:  q.Division,
		DateFrom:  q.DateFrom,
		DateTo:    q.DateTo,
		Desc:      true,
	}, func(t *models.Transaction) error {
		summarizeTransaction(&summary, t)
		if seen >= offset && len(txs) < limit {
			txs = append(txs, *t)
		}
		seen++
		return nil
	})
	if err != nil {
		return result, err
	}
	summary.Net = summary.Income - summary.Expense + summary.TransferIn - summary.TransferOut

	result.Transactions = txs
	result.Summary = summary
	result.Pagination = dto.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      summary.Count,
		TotalPages: (summary.Count + limit - 1) / limit,
	}
	return result, nil
}

// resolvePair maps whichever half of a transfer the caller addressed to
// the transfer_out record plus its mirror. Non-transfers pass through.
func (s *transactionService) resolvePair(ctx context.Context, uid string, tx *models.Transaction) (primary, mirror *models.Transaction, err error) {
	if tx.Type != models.TypeTransfer || tx.TransferID == "" {
		return tx, nil, nil
	}
	pair, err := s.txs.GetByTransferID(ctx, uid, tx.TransferID)
	if err != nil {
		return nil, nil, err
	}
	primary = tx
	for _, p := range pair {
		switch p.TransferType {
		case models.TransferOut:
			primary = p
		case models.TransferIn:
			mirror = p
		}
	}
	return primary, mirror, nil
}

// mergeUpdate folds the partial request onto the primary record and
// normalizes the result: non-transfers shed destination fields, transfers
// regain transfer_out tagging and a default category. A transfer whose
// destination was cleared keeps its type but has no destination-side
// effect.
func (s *transactionService) mergeUpdate(ctx context.Context, uid string, primary *models.Transaction, req dto.UpdateTransactionRequest) (*models.Transaction, error) {
	merged := *primary
	if req.Type != nil {
		merged.Type = *req.Type
	}
	if req.Amount != nil {
		merged.Amount = *req.Amount
	}
	if req.Category != nil {
		merged.Category = *req.Category
	}
	if req.Division != nil {
		merged.Division = *req.Division
	}
	if req.Description != nil {
		merged.Description = *req.Description
	}
	if req.Date != nil {
		merged.Date = *req.Date
	}
	if req.ToAccountID != nil {
		merged.ToAccountID = *req.ToAccountID
	}

	if !merged.Type.Valid() {
		return nil, errs.NewValidationError("invalid transaction type: " + string(merged.Type))
	}
	if merged.Amount <= 0 {
		return nil, errs.NewValidationError("amount must be positive")
	}
	if !merged.Division.Valid() {
		return nil, errs.NewValidationError("invalid division: " + string(merged.Division))
	}
	if merged.Category == models.CategoryOpeningBalance {
		return nil, errs.NewValidationError("category is reserved")
	}
	if _, err := time.Parse(dateLayout, merged.Date); err != nil {
		return nil, errs.NewValidationError("date must be formatted YYYY-MM-DD")
	}

	if merged.Type != models.TypeTransfer {
		merged.ToAccountID = ""
		merged.TransferType = ""
		merged.TransferID = ""
		if merged.Category == "" {
			return nil, errs.NewValidationError("category is required")
		}
		return &merged, nil
	}

	merged.TransferType = models.TransferOut
	if merged.Category == "" {
		merged.Category = models.CategoryTransfer
	}
	if merged.ToAccountID == "" {
		merged.TransferID = ""
		return &merged, nil
	}
	if merged.ToAccountID == merged.AccountID {
		return nil, errs.NewValidationError("transfer source and destination must differ")
	}
	if merged.ToAccountID != primary.ToAccountID {
		if _, err := s.accounts.Get(ctx, uid, merged.ToAccountID); err != nil {
			if _, ok := err.(*errs.NotFoundError); ok {
				return nil, errs.NewNotFoundError("destination account not found")
			}
			return nil, err
		}
	}
	if merged.TransferID == "" {
		merged.TransferID = uuid.New().String()
	}
	return &merged, nil
}

// syncMirror brings the transfer_in mirror in line with the persisted
// primary: rewritten, created, or removed as the update demands.
func (s *transactionService) syncMirror(ctx context.Context, uid string, merged, oldMirror *models.Transaction) error {
	wantMirror := merged.Type == models.TypeTransfer && merged.ToAccountID != ""

	switch {
	case oldMirror != nil && wantMirror:
		m := mirrorOf(merged)
		m.ID = oldMirror.ID
		if err := s.txs.Set(ctx, uid, m); err != nil {
			return errs.NewPartialFailureError(
				"transfer mirror record could not be updated; recalibration recommended", err)
		}
	case oldMirror != nil && !wantMirror:
		if err := s.txs.Delete(ctx, uid, oldMirror.ID); err != nil {
			return errs.NewPartialFailureError(
				"transfer mirror record could not be removed; recalibration recommended", err)
		}
	case oldMirror == nil && wantMirror:
		if err := s.txs.Create(ctx, uid, mirrorOf(merged)); err != nil {
			return errs.NewPartialFailureError(
				"transfer mirror record could not be created; recalibration recommended", err)
		}
	}
	return nil
}

// mirrorOf builds the transfer_in half of a pair. The mirror points back
// at the source account and shares the pair's TransferID; it carries no
// balance weight of its own.
func mirrorOf(t *models.Transaction) *models.Transaction {
	return &models.Transaction{
		ID:           uuid.New().String(),
		UserID:       t.UserID,
		AccountID:    t.ToAccountID,
		ToAccountID:  t.AccountID,
		Type:         models.TypeTransfer,
		Amount:       t.Amount,
		Category:     t.Category,
		Division:     t.Division,
		Description:  t.Description,
		Date:         t.Date,
		TransferType: models.TransferIn,
		TransferID:   t.TransferID,
		CreatedAt:    t.CreatedAt,
	}
}

func validateCreateRequest(req dto.CreateTransactionRequest) error {
	if req.AccountID == "" {
		return errs.NewValidationError("accountId is required")
	}
	if !req.Type.Valid() {
		return errs.NewValidationError("invalid transaction type: " + string(req.Type))
	}
	if req.Amount <= 0 {
		return errs.NewValidationError("amount must be positive")
	}
	if !req.Division.Valid() {
		return errs.NewValidationError("invalid division: " + string(req.Division))
	}
	if req.Type != models.TypeTransfer && req.Category == "" {
		return errs.NewValidationError("category is required")
	}
	if req.Category == models.CategoryOpeningBalance {
		return errs.NewValidationError("category is reserved")
	}
	if req.Date != "" {
		if _, err := time.Parse(dateLayout, req.Date); err != nil {
			return errs.NewValidationError("date must be formatted YYYY-MM-DD")
		}
	}
	return nil
}

func summarizeTransaction(sum *dto.TransactionSummary, t *models.Transaction) {
	if t.Category != models.CategoryOpeningBalance {
		switch t.Type {
		case models.TypeIncome:
			sum.Income += t.Amount
		case models.TypeExpense:
			sum.Expense += t.Amount
		case models.TypeTransfer:
			if t.TransferType == models.TransferIn {
				sum.TransferIn += t.Amount
			} else {
				sum.TransferOut += t.Amount
			}
		}
	}
	sum.Count++
}
