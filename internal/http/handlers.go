package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"tally/internal/core"
	"tally/internal/services"
)

const dateFormat = "2006-01-02"

type transactionRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Kind        string `json:"kind"`
	Date        string `json:"date"`
}

type transactionResponse struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	AmountCents int64   `json:"amount_cents"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Kind        string  `json:"kind"`
	Date        string  `json:"date,omitempty"`
}

type transactionListResponse struct {
	Items       []transactionResponse `json:"items"`
	Total       int                   `json:"total"`
	PageCount   int                   `json:"page_count"`
	CurrentPage int                   `json:"current_page"`
}

type summaryResponse struct {
	TotalIncomeCents  int64   `json:"total_income_cents"`
	TotalExpenseCents int64   `json:"total_expense_cents"`
	TotalBalanceCents int64   `json:"total_balance_cents"`
	TotalIncome       float64 `json:"total_income"`
	TotalExpense      float64 `json:"total_expense"`
	TotalBalance      float64 `json:"total_balance"`
	TransactionCount  int     `json:"transaction_count"`
}

type breakdownResponse struct {
	ByCategoryCents   map[string]int64 `json:"by_category_cents"`
	TotalExpenseCents int64            `json:"total_expense_cents"`
}

type trendBucketResponse struct {
	Date     string `json:"date"`
	NetCents int64  `json:"net_cents"`
}

type allocateRequest struct {
	Income             string `json:"income"`
	SavingsRatePercent int    `json:"savings_rate_percent"`
}

type allocateResponse struct {
	SavingsCents       int64 `json:"savings_cents"`
	NeedsCents         int64 `json:"needs_cents"`
	WantsCents         int64 `json:"wants_cents"`
	TotalAssignedCents int64 `json:"total_assigned_cents"`
	CategoriesUpdated  int   `json:"categories_updated"`
}

type categoryStatusResponse struct {
	Name       string  `json:"name"`
	LimitCents int64   `json:"limit_cents"`
	SpentCents int64   `json:"spent_cents"`
	Percentage float64 `json:"percentage"`
	Level      string  `json:"level"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          t.ID,
		Description: t.Description,
		AmountCents: t.Amount.Cents,
		Amount:      t.Amount.Amount(),
		Category:    t.Category,
		Kind:        string(t.Kind),
	}
	if t.HasDate() {
		resp.Date = t.OccurredAt.Format(dateFormat)
	}
	return resp
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	case http.MethodGet:
		s.handleListTransactions(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.CentsFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	t := core.Transaction{
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: cents},
		Category:    sanitizeInput(req.Category),
		Kind:        core.Kind(req.Kind),
	}
	if req.Date != "" {
		when, err := time.Parse(dateFormat, req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date, want YYYY-MM-DD")
			return
		}
		t.OccurredAt = when
	}

	stored, err := s.txns.Record(r.Context(), t)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to record transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record transaction")
		return
	}

	s.invalidateReadModels()
	writeJSON(w, http.StatusCreated, toTransactionResponse(stored))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	page := parseIntQuery(r, "page", 0)
	pageSize := parseIntQuery(r, "page_size", 0)

	result, err := s.txns.ListPage(r.Context(), page, pageSize)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	resp := transactionListResponse{
		Items:       make([]transactionResponse, len(result.Items)),
		Total:       result.Total,
		PageCount:   result.PageCount,
		CurrentPage: result.CurrentPage,
	}
	for i, t := range result.Items {
		resp.Items[i] = toTransactionResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	summary, found := s.summaryCache.Get(readModelKey)
	if !found {
		var err error
		summary, err = s.txns.Summary(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to compute summary", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to compute summary")
			return
		}
		s.summaryCache.Set(readModelKey, summary)
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		TotalIncomeCents:  summary.TotalIncome.Cents,
		TotalExpenseCents: summary.TotalExpense.Cents,
		TotalBalanceCents: summary.TotalBalance.Cents,
		TotalIncome:       summary.TotalIncome.Amount(),
		TotalExpense:      summary.TotalExpense.Amount(),
		TotalBalance:      summary.TotalBalance.Amount(),
		TransactionCount:  summary.TransactionCount,
	})
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	breakdown, found := s.breakdownCache.Get(readModelKey)
	if !found {
		var err error
		breakdown, err = s.txns.Breakdown(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to compute breakdown", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to compute breakdown")
			return
		}
		s.breakdownCache.Set(readModelKey, breakdown)
	}

	resp := breakdownResponse{
		ByCategoryCents:   make(map[string]int64, len(breakdown.ByCategory)),
		TotalExpenseCents: breakdown.TotalExpense.Cents,
	}
	for name, spend := range breakdown.ByCategory {
		resp.ByCategoryCents[name] = spend.Cents
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	buckets, found := s.trendCache.Get(readModelKey)
	if !found {
		var err error
		buckets, err = s.txns.Trend(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to compute trend", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to compute trend")
			return
		}
		s.trendCache.Set(readModelKey, buckets)
	}

	resp := make([]trendBucketResponse, len(buckets))
	for i, b := range buckets {
		resp[i] = trendBucketResponse{Date: b.Label, NetCents: b.Net.Cents}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req allocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	incomeCents, err := core.CentsFromString(req.Income)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid income")
		return
	}

	plan, err := s.budgets.AutoAllocate(r.Context(), core.Money{Cents: incomeCents}, req.SavingsRatePercent)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to apply allocation plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to apply allocation plan")
		return
	}

	s.invalidateReadModels()
	writeJSON(w, http.StatusOK, allocateResponse{
		SavingsCents:       plan.Savings.Cents,
		NeedsCents:         plan.Needs.Cents,
		WantsCents:         plan.Wants.Cents,
		TotalAssignedCents: plan.TotalAssigned().Cents,
		CategoriesUpdated:  len(plan.PerCategory),
	})
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	statuses, err := s.budgets.Status(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute budget status", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute budget status")
		return
	}

	resp := make([]categoryStatusResponse, len(statuses))
	for i, st := range statuses {
		resp[i] = toCategoryStatusResponse(st)
	}
	writeJSON(w, http.StatusOK, resp)
}

func toCategoryStatusResponse(st services.CategoryStatus) categoryStatusResponse {
	return categoryStatusResponse{
		Name:       st.Name,
		LimitCents: st.Limit.Cents,
		SpentCents: st.Spent.Cents,
		Percentage: st.Percentage,
		Level:      string(st.Level),
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidIncome) ||
		errors.Is(err, core.ErrInvalidSavingsRate) ||
		errors.Is(err, core.ErrAmbiguousKind) ||
		errors.Is(err, core.ErrEmptyDescription) ||
		errors.Is(err, core.ErrDescriptionTooLong)
}
