package dto

import (
	"github.com/fintrackhq/ledger-backend/internal/models"
)

// ReportQuery is the shared read-side filter set.
type ReportQuery struct {
	AccountID *string
	Division  *models.Division
	DateFrom  *string
	DateTo    *string
}

type DashboardSummary struct {
	TotalBalance     float64 `json:"totalBalance"`
	AccountCount     int     `json:"accountCount"`
	Income           float64 `json:"income"`
	Expense          float64 `json:"expense"`
	Net              float64 `json:"net"`
	TransferVolume   float64 `json:"transferVolume"`
	TransactionCount int     `json:"transactionCount"`
}

const (
	IntervalDay   = "day"
	IntervalWeek  = "week"
	IntervalMonth = "month"
	IntervalYear  = "year"
)

type TrendQuery struct {
	ReportQuery
	Interval string
}

type TrendBucket struct {
	Bucket  string  `json:"bucket"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"` // income - expense
	Count   int     `json:"count"`
}

type TrendResult struct {
	Interval string        `json:"interval"`
	From     string        `json:"from,omitempty"`
	To       string        `json:"to,omitempty"`
	Buckets  []TrendBucket `json:"buckets"`
}

type CategoryBreakdownQuery struct {
	ReportQuery
	Type *models.TransactionType
}

type CategoryBreakdownItem struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type CategoryBreakdownResult struct {
	From  string                  `json:"from,omitempty"`
	To    string                  `json:"to,omitempty"`
	Items []CategoryBreakdownItem `json:"items"`
}

type DivisionBreakdownItem struct {
	Division   models.Division `json:"division"`
	Income     float64         `json:"income"`
	Expense    float64         `json:"expense"`
	Balance    float64         `json:"balance"` // income - expense
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
}

type DivisionBreakdownResult struct {
	From  string                  `json:"from,omitempty"`
	To    string                  `json:"to,omitempty"`
	Items []DivisionBreakdownItem `json:"items"`
}
