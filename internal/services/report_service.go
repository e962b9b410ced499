package services

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "saldo/internal/errors"
	"saldo/internal/models"
)

// reportService aggregates a user's transactions into grouped totals.
type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db}
}

// IsValid reports whether t is a known report type.
func (t ReportType) IsValid() bool {
	return t == ReportTypeIncome || t == ReportTypeExpense || t == ReportTypeAll
}

// IsValid reports whether g is a known grouping.
func (g ReportGroupBy) IsValid() bool {
	return g == GroupByCategory || g == GroupByDate || g == GroupByAccount
}

// GenerateReport selects the user's transactions dated within the request
// window, filtered by type, and groups them by the requested key. The group
// totals always add up to the report total.
func (s *reportService) GenerateReport(ctx context.Context, userID string, req ReportRequest) (*ReportResult, error) {
	if !req.Type.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be income, expense or all")
	}
	if !req.GroupBy.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "group_by must be category, date or account")
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date and end_date are required")
	}
	start := models.DateOnly(req.StartDate)
	end := models.DateOnly(req.EndDate)
	if start.After(end) {
		return nil, apperrors.ErrInvalidDateRange
	}

	q := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end.AddDate(0, 0, 1))
	switch req.Type {
	case ReportTypeIncome:
		q = q.Where("type = ?", models.TransactionTypeIncome)
	case ReportTypeExpense:
		q = q.Where("type = ?", models.TransactionTypeExpense)
	}

	var rows []models.Transaction
	if err := q.Order("date ASC, created_at ASC").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &ReportResult{
		Type:         req.Type,
		StartDate:    start,
		EndDate:      end,
		GroupBy:      req.GroupBy,
		Groups:       GroupTransactions(rows, req.GroupBy),
		Total:        sumAmounts(rows),
		Transactions: rows,
	}, nil
}

// sumAmounts adds the amounts of ts.
func sumAmounts(ts []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for i := range ts {
		total = total.Add(ts[i].Amount)
	}
	return total
}

// GroupTransactions buckets rows by key. Category and account groups keep
// first-appearance order; date groups are sorted ascending.
func GroupTransactions(rows []models.Transaction, groupBy ReportGroupBy) []ReportGroup {
	index := make(map[string]int)
	groups := []ReportGroup{}
	for i := range rows {
		key := groupKey(&rows[i], groupBy)
		idx, ok := index[key]
		if !ok {
			idx = len(groups)
			index[key] = idx
			groups = append(groups, ReportGroup{Key: key, TotalAmount: decimal.Zero})
		}
		groups[idx].TotalAmount = groups[idx].TotalAmount.Add(rows[i].Amount)
		groups[idx].Count++
	}
	if groupBy == GroupByDate {
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	}
	return groups
}

func groupKey(t *models.Transaction, groupBy ReportGroupBy) string {
	switch groupBy {
	case GroupByDate:
		return t.Date.UTC().Format("2006-01-02")
	case GroupByAccount:
		if t.AccountID == nil || *t.AccountID == "" {
			return NoAccountKey
		}
		return *t.AccountID
	default:
		if t.Category == nil || *t.Category == "" {
			return UncategorizedKey
		}
		return *t.Category
	}
}
