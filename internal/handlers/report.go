package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fintrackhq/ledger-backend/internal/dto"
	"github.com/fintrackhq/ledger-backend/internal/middleware"
	"github.com/fintrackhq/ledger-backend/internal/response"
)

type ReportService interface {
	GetDashboardSummary(ctx context.Context, uid string, q dto.ReportQuery) (dto.DashboardSummary, error)
	GetTrend(ctx context.Context, uid string, q dto.TrendQuery) (dto.TrendResult, error)
	GetCategoryBreakdown(ctx context.Context, uid string, q dto.CategoryBreakdownQuery) (dto.CategoryBreakdownResult, error)
	GetDivisionBreakdown(ctx context.Context, uid string, q dto.ReportQuery) (dto.DivisionBreakdownResult, error)
}

type reportHandlers struct {
	ResponseHandler response.ResponseHandler
	ReportSvc       ReportService
}

func NewReportHandlers(deps *Deps) *reportHandlers {
	return &reportHandlers{
		ResponseHandler: deps.ResponseHandler,
		ReportSvc:       deps.ReportSvc,
	}
}

func (h *reportHandlers) ReportRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/dashboard", h.GetDashboardSummary)
	r.Get("/trend", h.GetTrend)
	r.Get("/categories", h.GetCategoryBreakdown)
	r.Get("/divisions", h.GetDivisionBreakdown)
	return r
}

func reportQuery(r *http.Request) dto.ReportQuery {
	return dto.ReportQuery{
		AccountID: queryString(r, "accountId"),
		Division:  queryDivision(r, "division"),
		DateFrom:  queryString(r, "dateFrom"),
		DateTo:    queryString(r, "dateTo"),
	}
}

func (h *reportHandlers) GetDashboardSummary(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	summary, err := h.ReportSvc.GetDashboardSummary(r.Context(), uid, reportQuery(r))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, summary)
}

func (h *reportHandlers) GetTrend(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	q := dto.TrendQuery{
		ReportQuery: reportQuery(r),
		Interval:    r.URL.Query().Get("interval"),
	}
	trend, err := h.ReportSvc.GetTrend(r.Context(), uid, q)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, trend)
}

func (h *reportHandlers) GetCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	q := dto.CategoryBreakdownQuery{
		ReportQuery: reportQuery(r),
		Type:        queryTransactionType(r, "type"),
	}
	breakdown, err := h.ReportSvc.GetCategoryBreakdown(r.Context(), uid, q)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, breakdown)
}

func (h *reportHandlers) GetDivisionBreakdown(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	breakdown, err := h.ReportSvc.GetDivisionBreakdown(r.Context(), uid, reportQuery(r))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, breakdown)
}
