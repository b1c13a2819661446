package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fintrackhq/ledger-backend/internal/dto"
	"github.com/fintrackhq/ledger-backend/internal/errs"
	"github.com/fintrackhq/ledger-backend/internal/models"
	"github.com/fintrackhq/ledger-backend/pkg/helpers"
)

type reportTxStore interface {
	Query(ctx context.Context, uid string, q dto.TransactionQuery, handle func(*models.Transaction) error) error
}

type reportAccountStore interface {
	List(ctx context.Context, uid string) ([]*models.Account, error)
}

// reportService is the read-side aggregator. It never mutates balances;
// it shares the effect classification of the core (income adds, expense
// subtracts, transfer direction depends on which half of the pair is in
// view).
type reportService struct {
	txs      reportTxStore
	accounts reportAccountStore
}

func NewReportService(txs reportTxStore, accounts reportAccountStore) *reportService {
	return &reportService{txs: txs, accounts: accounts}
}

func (s *reportService) GetDashboardSummary(ctx context.Context, uid string, q dto.ReportQuery) (dto.DashboardSummary, error) {
	result := dto.DashboardSummary{}

	accounts, err := s.accounts.List(ctx, uid)
	if err != nil {
		return result, err
	}
	for _, a := range accounts {
		result.TotalBalance += a.Balance
	}
	result.AccountCount = len(accounts)

	err = s.txs.Query(ctx, uid, reportFilter(q), func(t *models.Transaction) error {
		if t.Category == models.CategoryOpeningBalance {
			return nil
		}
		switch t.Type {
		case models.TypeIncome:
			result.Income += t.Amount
		case models.TypeExpense:
			result.Expense += t.Amount
		case models.TypeTransfer:
			if t.TransferType == models.TransferOut {
				result.TransferVolume += t.Amount
			}
		}
		result.TransactionCount++
		return nil
	})
	if err != nil {
		return result, err
	}

	result.Net = result.Income - result.Expense
	return result, nil
}

func (s *reportService) GetTrend(ctx context.Context, uid string, q dto.TrendQuery) (dto.TrendResult, error) {
	result := dto.TrendResult{
		Interval: q.Interval,
		From:     helpers.Value(q.DateFrom),
		To:       helpers.Value(q.DateTo),
	}
	if err := validateInterval(q.Interval); err != nil {
		return result, err
	}

	buckets := map[string]*dto.TrendBucket{}
	err := s.txs.Query(ctx, uid, reportFilter(q.ReportQuery), func(t *models.Transaction) error {
		if t.Category == models.CategoryOpeningBalance {
			return nil
		}
		key, err := bucketKey(t.Date, q.Interval)
		if err != nil {
			// Skip records with unparseable dates rather than failing the report.
			return nil
		}
		b, ok := buckets[key]
		if !ok {
			b = &dto.TrendBucket{Bucket: key}
			buckets[key] = b
		}
		switch t.Type {
		case models.TypeIncome:
			b.Income += t.Amount
		case models.TypeExpense:
			b.Expense += t.Amount
		}
		b.Count++
		return nil
	})
	if err != nil {
		return result, err
	}

	out := make([]dto.TrendBucket, 0, len(buckets))
	for _, b := range buckets {
		b.Balance = b.Income - b.Expense
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket < out[j].Bucket })
	result.Buckets = out
	return result, nil
}

func (s *reportService) GetCategoryBreakdown(ctx context.Context, uid string, q dto.CategoryBreakdownQuery) (dto.CategoryBreakdownResult, error) {
	result := dto.CategoryBreakdownResult{
		From: helpers.Value(q.DateFrom),
		To:   helpers.Value(q.DateTo),
	}

	filter := reportFilter(q.ReportQuery)
	filter.Type = q.Type

	items := map[string]*dto.CategoryBreakdownItem{}
	var grand float64
	err := s.txs.Query(ctx, uid, filter, func(t *models.Transaction) error {
		if t.Category == models.CategoryOpeningBalance {
			return nil
		}
		item, ok := items[t.Category]
		if !ok {
			item = &dto.CategoryBreakdownItem{Category: t.Category}
			items[t.Category] = item
		}
		item.Total += t.Amount
		item.Count++
		grand += t.Amount
		return nil
	})
	if err != nil {
		return result, err
	}

	out := make([]dto.CategoryBreakdownItem, 0, len(items))
	for _, item := range items {
		if grand != 0 {
			item.Percentage = round2(item.Total / grand * 100)
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	result.Items = out
	return result, nil
}

func (s *reportService) GetDivisionBreakdown(ctx context.Context, uid string, q dto.ReportQuery) (dto.DivisionBreakdownResult, error) {
	result := dto.DivisionBreakdownResult{
		From: helpers.Value(q.DateFrom),
		To:   helpers.Value(q.DateTo),
	}

	items := map[models.Division]*dto.DivisionBreakdownItem{}
	var grand float64
	err := s.txs.Query(ctx, uid, reportFilter(q), func(t *models.Transaction) error {
		if t.Category == models.CategoryOpeningBalance {
			return nil
		}
		item, ok := items[t.Division]
		if !ok {
			item = &dto.DivisionBreakdownItem{Division: t.Division}
			items[t.Division] = item
		}
		switch t.Type {
		case models.TypeIncome:
			item.Income += t.Amount
			grand += t.Amount
		case models.TypeExpense:
			item.Expense += t.Amount
			grand += t.Amount
		}
		item.Count++
		return nil
	})
	if err != nil {
		return result, err
	}

	out := make([]dto.DivisionBreakdownItem, 0, len(items))
	for _, item := range items {
		item.Balance = item.Income - item.Expense
		if grand != 0 {
			item.Percentage = round2((item.Income + item.Expense) / grand * 100)
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Division < out[j].Division })
	result.Items = out
	return result, nil
}

func reportFilter(q dto.ReportQuery) dto.TransactionQuery {
	return dto.TransactionQuery{
		AccountID: q.AccountID,
		Division:  q.Division,
		DateFrom:  q.DateFrom,
		DateTo:    q.DateTo,
	}
}

func validateInterval(interval string) error {
	switch interval {
	case dto.IntervalDay, dto.IntervalWeek, dto.IntervalMonth, dto.IntervalYear:
		return nil
	}
	return errs.NewValidationError("interval must be one of: day, week, month, year")
}

// bucketKey folds a YYYY-MM-DD date into its reporting bucket. Keys sort
// chronologically as plain strings.
func bucketKey(date, interval string) (string, error) {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", err
	}
	switch interval {
	case dto.IntervalDay:
		return date, nil
	case dto.IntervalWeek:
		year, week := d.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week), nil
	case dto.IntervalMonth:
		return d.Format("2006-01"), nil
	case dto.IntervalYear:
		return d.Format("2006"), nil
	}
	return "", errs.NewValidationError("unknown interval: " + interval)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
