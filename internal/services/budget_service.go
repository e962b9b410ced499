package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "saldo/internal/errors"
	"saldo/internal/models"
	"saldo/internal/money"
	"saldo/internal/pagination"
)

// Budget progress levels.
const (
	BudgetLevelOK       = "ok"
	BudgetLevelWarning  = "warning"
	BudgetLevelCritical = "critical"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db, now: time.Now}
}

// CreateBudget creates a new active budget for a category label.
func (s *budgetService) CreateBudget(ctx context.Context, userID string, in BudgetInput) (*models.Budget, error) {
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if !in.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.Period == "" {
		in.Period = models.BudgetPeriodMonthly
	}
	if !in.Period.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be monthly or yearly")
	}
	start := in.StartDate
	if start.IsZero() {
		start = s.now()
	}

	budget := &models.Budget{
		UserID:    userID,
		Category:  category,
		Amount:    money.Round(in.Amount),
		Period:    in.Period,
		StartDate: models.DateOnly(start),
		IsActive:  true,
	}

	if err := s.db.WithContext(ctx).Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// GetUserBudgets returns a paginated list of budgets for the user with optional filters.
func (s *budgetService) GetUserBudgets(
	ctx context.Context,
	userID string,
	page pagination.PageRequest,
	isActive *bool,
	period *models.BudgetPeriod,
) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	scope := func(db *gorm.DB) *gorm.DB {
		q := db.Model(&models.Budget{}).Where("user_id = ?", userID)
		if isActive != nil {
			q = q.Where("is_active = ?", *isActive)
		}
		if period != nil {
			q = q.Where("period = ?", *period)
		}
		return q
	}

	db := s.db.WithContext(ctx)
	var totalItems int64
	if err := db.Scopes(scope).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := db.Scopes(scope, pagination.Paginate(page)).
		Order("category ASC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(ctx context.Context, userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates an existing budget's fields.
func (s *budgetService) UpdateBudget(ctx context.Context, userID, budgetID string, fields BudgetUpdateFields) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Category != nil {
		category := strings.TrimSpace(*fields.Category)
		if category == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
		}
		updates["category"] = category
	}
	if fields.Amount != nil {
		if !fields.Amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = money.Round(*fields.Amount)
	}
	if fields.Period != nil {
		if !fields.Period.IsValid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be monthly or yearly")
		}
		updates["period"] = *fields.Period
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}

	if len(updates) > 0 {
		db := s.db.WithContext(ctx)
		if err := db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := db.Where("id = ?", budget.ID).First(budget).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return budget, nil
}

// DeleteBudget removes a budget.
func (s *budgetService) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", budgetID, userID).Delete(&models.Budget{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrBudgetNotFound
	}
	return nil
}

// GetBudgetProgress calculates spending vs budget for the current period.
func (s *budgetService) GetBudgetProgress(ctx context.Context, userID, budgetID string) (*BudgetProgress, error) {
	budget, err := s.GetBudgetByID(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}

	periodStart, periodEnd := budgetWindow(budget.Period, s.now())
	if budget.StartDate.After(periodStart) {
		periodStart = models.DateOnly(budget.StartDate)
	}

	// Sum expense transactions for this category within the period
	var amounts []decimal.Decimal
	err = s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ? AND category = ? AND type = ? AND date >= ? AND date < ?",
			userID, budget.Category, models.TransactionTypeExpense, periodStart, periodEnd).
		Pluck("amount", &amounts).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spent := decimal.Zero
	for _, a := range amounts {
		spent = spent.Add(a.Abs())
	}
	spent = money.Round(spent)

	percentage := budgetPercentage(spent, budget.Amount)
	return &BudgetProgress{
		BudgetID:    budget.ID,
		Category:    budget.Category,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd.AddDate(0, 0, -1),
		Budgeted:    budget.Amount,
		Spent:       spent,
		Remaining:   budget.Amount.Sub(spent),
		Percentage:  percentage,
		Level:       budgetLevel(percentage),
	}, nil
}

// budgetWindow returns the half-open [start, end) calendar window of the
// period containing now.
func budgetWindow(period models.BudgetPeriod, now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	if period == models.BudgetPeriodYearly {
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// budgetPercentage is spent/allocated as a whole percent capped at 100.
func budgetPercentage(spent, allocated decimal.Decimal) int {
	if !allocated.IsPositive() {
		return 0
	}
	pct := spent.Div(allocated).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if pct > 100 {
		return 100
	}
	return int(pct)
}

func budgetLevel(percentage int) string {
	switch {
	case percentage > 90:
		return BudgetLevelCritical
	case percentage > 75:
		return BudgetLevelWarning
	default:
		return BudgetLevelOK
	}
}
