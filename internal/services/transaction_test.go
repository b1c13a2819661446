package services

import (
	"errors"
	"testing"
	"time"

	"github.com/fintrackhq/ledger-backend/internal/dto"
	"github.com/fintrackhq/ledger-backend/internal/errs"
	"github.com/fintrackhq/ledger-backend/internal/models"
	"github.com/fintrackhq/ledger-backend/pkg/helpers"
)

func newTxHarness(accounts *memAccountStore, txs *memTransactionStore) *transactionService {
	svc := NewTransactionService(txs, accounts, NewBalanceMutator(accounts))
	svc.now = fixedNow
	return svc
}

func TestCreateIncomeIncreasesBalance(t *testing.T) {
	accounts := newMemAccountStore(&models.Account{ID: "a1", Balance: 100})
	txs := newMemTransactionStore()
	svc := newTxHarness(accounts, txs)

	tx, err := svc.CreateTransaction(helpers.TestCtx(), "user", dto.CreateTransactionRequest{
		AccountID: "a1",
		Type:      models.TypeIncome,
		Amount:    50,
		Category:  "Salary",
		Division:  models.DivisionPersonal,
	})
	if err != nil {
		t.Fatalf("CreateTransaction error: %v", err)
	}
	if accounts.balance("a1") != 150 {
		t.Fatalf("balance mismatch: got %v", accounts.balance("a1"))
	}
	if tx.Date != fixedNow().Format(dateLayout) {
		t.Fatalf("date should default to today: got %q", tx.Date)
	}
}

func TestCreateTransferAdjustsBothAccounts(t *testing.T) {
	accounts := newMemAccountStore(
		&models.Account{ID: "src", Balance: 500},
		&models.Account{ID: "dst", Balance: 200},
	)
	txs := newMemTransactionStore()
	svc := newTxHarness(accounts, txs)

	tx, err := svc.CreateTransaction(helpers.TestCtx(), "user", dto.CreateTransactionRequest{
		AccountID:   "src",
		ToAccountID: "dst",
		Type:        models.TypeTransfer,
		Amount:      100,
		Division:    models.DivisionPersonal,
	})
	if err != nil {
		t.Fatalf("CreateTransaction error: %v", err)
	}
	if accounts.balance("src") != 400 || accounts.balance("dst") != 300 {
		t.Fatalf("balances mismatch: src=%v dst=%v", accounts.balance("src"), accounts.balance("dst"))
	}

	if tx.TransferType != models.TransferOut || tx.TransferID == "" {
		t.Fatalf("primary should be transfer_out with a transfer id: %+v", tx)
	}
	if tx.Category != models.CategoryTransfer {
		t.Fatalf("category should default to %q: got %q", models.CategoryTransfer, tx.Category)
	}

	mirror := txs.byTransferType(tx.TransferID, models.TransferIn)
	if mirror == nil {
		t.Fatal("expected a transfer_in mirror record")
	}
	if mirror.AccountID != "dst" || mirror.ToAccountID != "src" {
		t.Fatalf("mirror accounts mismatch: %+v", mirror)
	}
	if len(txs.txs) != 2 {
		t.Fatalf("expected exactly two records, got %d", len(txs.txs))
	}
}

func TestCreateTransferDestinationMissing(t *testing.T) {
	accounts := newMemAccountStore(&models.Account{ID: "src", Balance: 500})
	txs := newMemTransactionStore()
	svc := newTxHarness(accounts, txs)

	_, err := svc.CreateTransaction(helpers.TestCtx(), "user", dto.CreateTransactionRequest{
		AccountID:   "src",
		ToAccountID: "ghost",
		Type:        models.TypeTransfer,
		Amount:      100,
		Division:    models.DivisionPersonal,
	})
	var notFound *errs.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %T", err)
	}
	if accounts.balance("src") != 500 {
		t.Fatalf("balance should be untouched: got %v", accounts.balance("src"))
	}
	if len(txs.txs) != 0 {
		t.Fatalf("no records should persist, got %d", len(txs.txs))
	}
}

func TestCreateTransferSameAccountRejected(t *testing.T) {
	accounts := newMemAccountStore(&models.Account{ID: "src", Balance: 500})
	svc := newTxHarness(accounts, newMemTransactionStore())

	_, err := svc.CreateTransaction(helpers.TestCtx(), "user", dto.CreateTransactionRequest{
		AccountID:   "src",
		ToAccountID: "src",
		Type:        models.TypeTransfer,
		Amount:      100,
		Division:    models.DivisionPersonal,
	})
	var validation *errs.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestCreateRollsBackOnMirrorFailure(t *testing.T) {
	accounts := newMemAccountStore(
		&models.Account{ID: "src", Balance: 500},
		&models.Account{ID: "dst", Balance: 200},
	)
	txs := newMemTransactionStore()
	txs.failCreateAfter = 2 // primary succeeds, mirror create fails
	svc := newTxHarness(accounts, txs)

	_, err := svc.CreateTransaction(helpers.TestCtx(), "user", dto.CreateTransactionRequest{
		AccountID:   "src",
		ToAccountID: "dst",
		Type:        models.TypeTransfer,
		Amount:      100,
		Division:    models.DivisionPersonal,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if accounts.balance("src") != 500 || accounts.balance("dst") != 200 {
		t.Fatalf("balances should be rolled back: src=%v dst=%v", accounts.balance("src"), accounts.balance("dst"))
	}
	if len(txs.txs) != 0 {
		t.Fatalf("primary record should be rolled back, got %d records", len(txs.txs))
	}
}

func TestUpdateExpenseToIncome(t *testing.T) {
	accounts := newMemAccountStore(&models.Account{ID: "a1", Balance: 500})
	txs := newMemTransactionStore()
	svc := newTxHarness(accounts, txs)

	tx, err := svc.CreateTransaction(helpers.TestCtx(), "user", dto.CreateTransactionRequest{
		AccountID: "a1",
		Type:      models.TypeExpense,
		Amount:    100,
		Category:  "Food",
		Division:  models.DivisionPersonal,
	})
	if err != nil {
		t.Fatalf("CreateTransaction error: %v", err)
	}
	if accounts.balance("a1") != 400 {
		t.Fatalf("balance after expense mismatch: got %v", accounts.balance("a1"))
	}

	updated, err := svc.UpdateTransaction(helpers.TestCtx(), "user", tx.ID, dto.UpdateTransactionRequest{
		Type: helpers.Ptr(models.TypeIncome),
	})
	if err != nil {
		t.Fatalf("UpdateTransaction error: %v", err)
	}
	if updated.Type != models.TypeIncome {
		t.Fatalf("type mismatch: got %q", updated.Type)
	}
	// Reverse the -100 expense, then apply +100 income.
	if accounts.balance("a1") != 600 {
		t.Fatalf("balance after update mismatch: got %v", accounts.balance("a1"))
	}
}

func TestUpdateAmountReappliesEffect(t *testing.T) {
	accounts := newMemAccountStore(&models.Account{ID: "a1", Balance: 500})
	svc := newTxHarness(accounts, newMemTransactionStore())

	tx, err := svc.CreateTransaction(helpers.TestCtx(), "user", dto.CreateTransactionRequest{
		AccountID: "a1",
		Type:      models.TypeExpense,
		Amount:    100,
		Category:  "Food",
		Division:  models.DivisionPersonal,
	})
	if err != nil {
		t.Fatalf("CreateTransaction error: %v", err)
	}

	if _, err := svc.UpdateTransaction(helpers.TestCtx(), "user", tx.ID, dto.UpdateTransactionRequest{
		Amount: helpers.Ptr(40.0),
	}); err != nil {
		t.Fatalf("UpdateTransaction error: %v", err)
	}
	if accounts.balance("a1") != 460 {
		t.Fatalf("balance mismatch: got %v", accounts.balance("a1"))
	}
}

func TestEditWindow(t *testing.T) {
	accounts := newMemAccountStore(&models.Account{ID: "a1", Balance: 500})
	txs := newMemTransactionStore(&models.Transaction{
		ID:        "old",
		AccountID: "a1",
		Type:      models.TypeExpense,
		Amount:    50,
		Category:  "Food",
		Division:  models.DivisionPersonal,
		Date:      "2025-06-14",
		CreatedAt: fixedNow().Add(-13 * time.Hour),
	}, &models.Transaction{
		ID:        "recent",
		AccountID: "a1",
		Type:      models.TypeExpense,
		Amount:    50,
		Category:  "Food",
		Division:  models.DivisionPersonal,
		Date:      "2025-06-15",
		CreatedAt: fixedNow().Add(-11 * time.Hour),
	})
	svc := newTxHarness(accounts, txs)

	_, err := svc.UpdateTransaction(helpers.TestCtx(), "user", "old", dto.UpdateTransactionRequest{
		Amount: helpers.Ptr(60.0),
	})
	var forbidden *errs.ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ForbiddenError for a 13h old transaction, got %T", err)
	}
	if err := svc.DeleteTransaction(helpers.TestCtx(), "user", "old"); !errors.As(err, &forbidden) {
		t.Fatalf("expected ForbiddenError on delete, got %T", err)
	}

	if _, err := svc.UpdateTransaction(helpers.TestCtx(), "user", "recent", dto.UpdateTransactionRequest{
		Amount: helpers.Ptr(60.0),
	}); err != nil {
		t.Fatalf("11h old transaction should be editable: %v", err)
	}
}

func TestDeleteIncomeReversesBalance(t *testing.T) {
	accounts := newMemAccountStore(&models.Account{ID: "a1", Balance: 100})
	svc := newTxHarness(accounts, newMemTransactionStore())

	tx, err := svc.CreateTransaction(helpers.TestCtx(), "user", dto.CreateTransactionRequest{
		AccountID: "a1",
		Type:      models.TypeIncome,
		Amount:    75,
		Category:  "Salary",
		Division:  models.DivisionOffice,
	})
	if err != nil {
		t.Fatalf("CreateTransaction error: %v", err)
	}
	if err := svc.DeleteTransaction(helpers.TestCtx(), "user", tx.ID); err != nil {
		t.Fatalf("DeleteTransaction error: %v", err)
	}
	if accounts.balance("a1") != 100 {
		t.Fatalf("balance should return to 100: got %v", accounts.balance("a1"))
	}
}

func TestDeleteTransferRemovesBothHalves(t *testing.T) {
	accounts := newMemAccountStore(
		&models.Account{ID: "src", Balance: 500},
		&models.Account{ID: "dst", Balance: 200},
	)
	txs := newMemTransactionStore()
	svc := newTxHarness(accounts, txs)

	tx, err := svc.CreateTransaction(helpers.TestCtx(), "user", dto.CreateTransactionRequest{
		AccountID:   "src",
		ToAccountID: "dst",
		Type:        models.TypeTransfer,
		Amount:      100,
		Division:    models.DivisionPersonal,
	})
	if err != nil {
		t.Fatalf("CreateTransaction error: %v", err)
	}

	// Deleting via the mirror must cascade to the whole pair.
	mirror := txs.byTransferType(tx.TransferID, models.TransferIn)
	if err := svc.DeleteTransaction(helpers.TestCtx(), "user", mirror.ID); err != nil {
		t.Fatalf("DeleteTransaction error: %v", err)
	}
	if len(txs.txs) != 0 {
		t.Fatalf("both halves should be gone, got %d records", len(txs.txs))
	}
	if accounts.balance("src") != 500 || accounts.balance("dst") != 200 {
		t.Fatalf("balances should be restored: src=%v dst=%v", accounts.balance("src"), accounts.balance("dst"))
	}
}

func TestUpdateTransferViaMirrorCascades(t *testing.T) {
	accounts := newMemAccountStore(
		&models.Account{ID: "src", Balance: 500},
		&models.Account{ID: "dst", Balance: 200},
	)
	txs := newMemTransactionStore()
	svc := newTxHarness(accounts, txs)

	tx, err := svc.CreateTransaction(helpers.TestCtx(), "user", dto.CreateTransactionRequest{
		AccountID:   "src",
		ToAccountID: "dst",
		Type:        models.TypeTransfer,
		Amount:      100,
		Division:    models.DivisionPersonal,
	})
	if err != nil {
		t.Fatalf("CreateTransaction error: %v", err)
	}

	mirror := txs.byTransferType(tx.TransferID, models.TransferIn)
	updated, err := svc.UpdateTransaction(helpers.TestCtx(), "user", mirror.ID, dto.UpdateTransactionRequest{
		Amount: helpers.Ptr(250.0),
	})
	if err != nil {
		t.Fatalf("UpdateTransaction error: %v", err)
	}
	if updated.TransferType != models.TransferOut || updated.Amount != 250 {
		t.Fatalf("update should land on the transfer_out half: %+v", updated)
	}
	if accounts.balance("src") != 250 || accounts.balance("dst") != 450 {
		t.Fatalf("balances mismatch: src=%v dst=%v", accounts.balance("src"), accounts.balance("dst"))
	}

	newMirror := txs.byTransferType(updated.TransferID, models.TransferIn)
	if newMirror == nil || newMirror.Amount != 250 {
		t.Fatalf("mirror should track the update: %+v", newMirror)
	}
}

func TestUpdateTransferToExpenseDropsMirror(t *testing.T) {
	accounts := newMemAccountStore(
		&models.Account{ID: "src", Balance: 500},
		&models.Account{ID: "dst", Balance: 200},
	)
	txs := newMemTransactionStore()
	svc := newTxHarness(accounts, txs)

	tx, err := svc.CreateTransaction(helpers.TestCtx(), "user", dto.CreateTransactionRequest{
		AccountID:   "src",
		ToAccountID: "dst",
		Type:        models.TypeTransfer,
		Amount:      100,
		Division:    models.DivisionPersonal,
	})
	if err != nil {
		t.Fatalf("CreateTransaction error: %v", err)
	}

	updated, err := svc.UpdateTransaction(helpers.TestCtx(), "user", tx.ID, dto.UpdateTransactionRequest{
		Type:     helpers.Ptr(models.TypeExpense),
		Category: helpers.Ptr("Fees"),
	})
	if err != nil {
		t.Fatalf("UpdateTransaction error: %v", err)
	}
	if updated.ToAccountID != "" || updated.TransferID != "" || updated.TransferType != "" {
		t.Fatalf("transfer fields should be cleared: %+v", updated)
	}
	if len(txs.txs) != 1 {
		t.Fatalf("mirror should be removed, got %d records", len(txs.txs))
	}
	// 500 - 100 (transfer) + 100 (reverse) - 100 (expense); dst back to 200.
	if accounts.balance("src") != 400 || accounts.balance("dst") != 200 {
		t.Fatalf("balances mismatch: src=%v dst=%v", accounts.balance("src"), accounts.balance("dst"))
	}
}

func TestOpeningBalanceRecordGuarded(t *testing.T) {
	accounts := newMemAccountStore(&models.Account{ID: "a1", Balance: 250})
	txs := newMemTransactionStore(&models.Transaction{
		ID:        "seed",
		AccountID: "a1",
		Type:      models.TypeIncome,
		Amount:    250,
		Category:  models.CategoryOpeningBalance,
		Division:  models.DivisionPersonal,
		Date:      "2025-06-15",
		CreatedAt: fixedNow(),
	})
	svc := newTxHarness(accounts, txs)

	var validation *errs.ValidationError
	_, err := svc.UpdateTransaction(helpers.TestCtx(), "user", "seed", dto.UpdateTransactionRequest{
		Amount: helpers.Ptr(10.0),
	})
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError on update, got %T", err)
	}
	if err := svc.DeleteTransaction(helpers.TestCtx(), "user", "seed"); !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError on delete, got %T", err)
	}
}

func TestGetAccountTransactionsPaginationAndSummary(t *testing.T) {
	accounts := newMemAccountStore(&models.Account{ID: "a1", Balance: 0})
	txs := newMemTransactionStore(
		&models.Transaction{ID: "t1", AccountID: "a1", Type: models.TypeIncome, Amount: 100, Category: "Salary", Division: models.DivisionPersonal, Date: "2025-06-01"},
		&models.Transaction{ID: "t2", AccountID: "a1", Type: models.TypeExpense, Amount: 40, Category: "Food", Division: models.DivisionPersonal, Date: "2025-06-02"},
		&models.Transaction{ID: "t3", AccountID: "a1", Type: models.TypeTransfer, TransferType: models.TransferOut, ToAccountID: "b1", TransferID: "p1", Amount: 25, Category: models.CategoryTransfer, Division: models.DivisionPersonal, Date: "2025-06-03"},
		&models.Transaction{ID: "t4", AccountID: "a1", Type: models.TypeTransfer, TransferType: models.TransferIn, ToAccountID: "b1", TransferID: "p2", Amount: 10, Category: models.CategoryTransfer, Division: models.DivisionPersonal, Date: "2025-06-04"},
		&models.Transaction{ID: "t5", AccountID: "a1", Type: models.TypeIncome, Amount: 250, Category: models.CategoryOpeningBalance, Division: models.DivisionPersonal, Date: "2025-05-30"},
	)
	svc := newTxHarness(accounts, txs)

	result, err := svc.GetAccountTransactions(helpers.TestCtx(), "user", "a1", dto.TransactionListQuery{
		Page:  1,
		Limit: 2,
	})
	if err != nil {
		t.Fatalf("GetAccountTransactions error: %v", err)
	}

	if len(result.Transactions) != 2 {
		t.Fatalf("page size mismatch: got %d", len(result.Transactions))
	}
	// Newest first.
	if result.Transactions[0].ID != "t4" || result.Transactions[1].ID != "t3" {
		t.Fatalf("ordering mismatch: %s, %s", result.Transactions[0].ID, result.Transactions[1].ID)
	}

	sum := result.Summary
	if sum.Income != 100 || sum.Expense != 40 || sum.TransferOut != 25 || sum.TransferIn != 10 {
		t.Fatalf("summary mismatch: %+v", sum)
	}
	if sum.Net != 100-40+10-25 {
		t.Fatalf("net mismatch: got %v", sum.Net)
	}
	// The opening seed is listed but excluded from the monetary sums.
	if sum.Count != 5 {
		t.Fatalf("count mismatch: got %d", sum.Count)
	}

	p := result.Pagination
	if p.Page != 1 || p.Limit != 2 || p.Total != 5 || p.TotalPages != 3 {
		t.Fatalf("pagination mismatch: %+v", p)
	}

	page3, err := svc.GetAccountTransactions(helpers.TestCtx(), "user", "a1", dto.TransactionListQuery{
		Page:  3,
		Limit: 2,
	})
	if err != nil {
		t.Fatalf("GetAccountTransactions page 3 error: %v", err)
	}
	if len(page3.Transactions) != 1 {
		t.Fatalf("last page should hold the remainder: got %d", len(page3.Transactions))
	}
}

func TestGetAccountTransactionsUnknownAccount(t *testing.T) {
	svc := newTxHarness(newMemAccountStore(), newMemTransactionStore())

	_, err := svc.GetAccountTransactions(helpers.TestCtx(), "user", "ghost", dto.TransactionListQuery{})
	var notFound *errs.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %T", err)
	}
}
