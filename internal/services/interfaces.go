package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"saldo/internal/events"
	"saldo/internal/installment"
	"saldo/internal/models"
	"saldo/internal/pagination"
)

// AccountInput holds the fields for creating an account. InitialBalance
// becomes both the current and the opening balance.
type AccountInput struct {
	Name           string
	Type           models.AccountType
	InitialBalance decimal.Decimal
	Color          *string
}

// AccountUpdateFields holds optional metadata changes. Balance is never
// editable through an update.
type AccountUpdateFields struct {
	Name  *string
	Type  *models.AccountType
	Color *string
}

// BalanceDrift reports an account whose stored balance differs from the
// opening balance plus the sum of its transactions.
type BalanceDrift struct {
	AccountID string          `json:"account_id"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Stored    decimal.Decimal `json:"stored"`
	Expected  decimal.Decimal `json:"expected"`
	Drift     decimal.Decimal `json:"drift"`
	Applied   bool            `json:"applied"`
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(ctx context.Context, userID string, in AccountInput) (*models.Account, error)
	GetUserAccounts(ctx context.Context, userID string) ([]models.Account, error)
	GetAccountByID(ctx context.Context, userID, accountID string) (*models.Account, error)
	UpdateAccount(ctx context.Context, userID, accountID string, fields AccountUpdateFields) (*models.Account, error)
	DeleteAccount(ctx context.Context, userID, accountID string) error
	AdjustBalance(tx *gorm.DB, userID, accountID string, delta decimal.Decimal) error
	Reconcile(ctx context.Context, userID string, apply bool) ([]BalanceDrift, error)
	ReconcileAll(ctx context.Context, apply bool) ([]BalanceDrift, error)
}

// CategoryInput holds the fields for creating a category.
type CategoryInput struct {
	Name  string
	Color string
	Icon  string
}

// CategoryUpdateFields holds optional category changes.
type CategoryUpdateFields struct {
	Name  *string
	Color *string
	Icon  *string
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, userID string, in CategoryInput) (*models.Category, error)
	GetUserCategories(ctx context.Context, userID string) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, userID, categoryID string) (*models.Category, error)
	UpdateCategory(ctx context.Context, userID, categoryID string, fields CategoryUpdateFields) (*models.Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID string) error
	EnsureDefaultCategories(ctx context.Context, userID string) ([]models.Category, error)
}

// TransactionInput holds a new transaction. Amount is signed and must agree
// with Type.
type TransactionInput struct {
	Description        string
	Amount             decimal.Decimal
	Date               time.Time
	Type               models.TransactionType
	Category           *string
	AccountID          *string
	IsRecurring        bool
	RecurringPeriod    *models.RecurringPeriod
	InstallmentCurrent *int
	InstallmentTotal   *int
	DueDate            *time.Time
	PaymentStatus      models.PaymentStatus
}

// TransactionUpdateFields is a partial edit. Amount is a magnitude; the
// stored sign always follows the resulting type, so switching the type of a
// transaction flips the sign of its amount. The Clear flags remove an
// optional reference.
type TransactionUpdateFields struct {
	Description     *string
	Amount          *decimal.Decimal
	Date            *time.Time
	Type            *models.TransactionType
	Category        *string
	ClearCategory   bool
	AccountID       *string
	ClearAccount    bool
	IsRecurring     *bool
	RecurringPeriod *models.RecurringPeriod
	DueDate         *time.Time
	ClearDueDate    bool
	PaymentStatus   *models.PaymentStatus
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate  *time.Time
	ToDate    *time.Time
	Type      *models.TransactionType
	Category  *string
	AccountID *string
}

// UnspecifiedAccountName is shown for transactions without a resolvable account.
const UnspecifiedAccountName = "Unspecified account"

// TransactionView is a transaction joined with its account's display fields.
type TransactionView struct {
	models.Transaction
	AccountName  string  `json:"account_name"`
	AccountColor *string `json:"account_color,omitempty"`
}

// TransactionServicer defines the contract for transaction-related business
// logic. It is the only component that changes account balances.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error)
	GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]TransactionView, error)
	GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[TransactionView], error)
	GetAccountTransactions(ctx context.Context, userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[TransactionView], error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
}

// InstallmentFailure records one installment that could not be created.
type InstallmentFailure struct {
	Installment int    `json:"installment"`
	Error       string `json:"error"`
}

// InstallmentResult reports the outcome of a split purchase.
type InstallmentResult struct {
	Created      []models.Transaction `json:"created"`
	SuccessCount int                  `json:"success_count"`
	Total        int                  `json:"total"`
	Failures     []InstallmentFailure `json:"failures,omitempty"`
}

// InstallmentServicer defines the contract for splitting purchases.
type InstallmentServicer interface {
	CreateInstallments(ctx context.Context, userID string, tpl installment.Template) (*InstallmentResult, error)
}

// ReportType selects which transactions a report covers.
type ReportType string

const (
	ReportTypeIncome  ReportType = "income"
	ReportTypeExpense ReportType = "expense"
	ReportTypeAll     ReportType = "all"
)

// ReportGroupBy selects the grouping key of a report.
type ReportGroupBy string

const (
	GroupByCategory ReportGroupBy = "category"
	GroupByDate     ReportGroupBy = "date"
	GroupByAccount  ReportGroupBy = "account"
)

// Fallback group keys.
const (
	UncategorizedKey = "uncategorized"
	NoAccountKey     = "no-account"
)

// ReportRequest selects the rows and grouping of a report. EndDate is
// inclusive through the whole day.
type ReportRequest struct {
	Type      ReportType
	StartDate time.Time
	EndDate   time.Time
	GroupBy   ReportGroupBy
}

// ReportGroup is one bucket of a report.
type ReportGroup struct {
	Key         string          `json:"key"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Count       int             `json:"count"`
}

// ReportResult is a grouped report plus the rows it was built from.
type ReportResult struct {
	Type         ReportType           `json:"type"`
	StartDate    time.Time            `json:"start_date"`
	EndDate      time.Time            `json:"end_date"`
	GroupBy      ReportGroupBy        `json:"group_by"`
	Groups       []ReportGroup        `json:"groups"`
	Total        decimal.Decimal      `json:"total"`
	Transactions []models.Transaction `json:"transactions"`
}

// ReportServicer defines the contract for report aggregation.
type ReportServicer interface {
	GenerateReport(ctx context.Context, userID string, req ReportRequest) (*ReportResult, error)
}

// AccountBalance is one account's line in a summary.
type AccountBalance struct {
	AccountID string          `json:"account_id"`
	Name      string          `json:"name"`
	Color     *string         `json:"color,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
}

// BalanceSummary is the dashboard fold over a user's transactions and accounts.
type BalanceSummary struct {
	TotalBalance    decimal.Decimal  `json:"total_balance"`
	Income          decimal.Decimal  `json:"income"`
	Expenses        decimal.Decimal  `json:"expenses"`
	PendingExpenses decimal.Decimal  `json:"pending_expenses"`
	OverdueExpenses decimal.Decimal  `json:"overdue_expenses"`
	AccountsBalance decimal.Decimal  `json:"accounts_balance"`
	Accounts        []AccountBalance `json:"accounts"`
	AsOf            time.Time        `json:"as_of"`
}

// Invalidator drops cached per-user views after the user's data changed.
type Invalidator interface {
	Invalidate(userID string)
}

// SummaryServicer defines the contract for the balance summary. It also
// consumes transaction events to drop stale cached summaries.
type SummaryServicer interface {
	events.Publisher
	Invalidator
	GetSummary(ctx context.Context, userID string) (*BalanceSummary, error)
}

// ForecastOccurrence is one projected repetition of a recurring transaction.
type ForecastOccurrence struct {
	TransactionID string          `json:"transaction_id"`
	Description   string          `json:"description"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	AccountID     *string         `json:"account_id,omitempty"`
}

// ForecastMonth aggregates projected occurrences for one calendar month.
type ForecastMonth struct {
	Month            string          `json:"month"`
	Income           decimal.Decimal `json:"income"`
	Expenses         decimal.Decimal `json:"expenses"`
	Net              decimal.Decimal `json:"net"`
	ProjectedBalance decimal.Decimal `json:"projected_balance"`
}

// Forecast projects balances forward from today's account balances.
type Forecast struct {
	AsOf            time.Time            `json:"as_of"`
	StartingBalance decimal.Decimal      `json:"starting_balance"`
	Months          []ForecastMonth      `json:"months"`
	Occurrences     []ForecastOccurrence `json:"occurrences"`
}

// ForecastServicer defines the contract for balance forecasts.
type ForecastServicer interface {
	GetForecast(ctx context.Context, userID string, months int) (*Forecast, error)
}

// BudgetInput holds the fields for creating a budget.
type BudgetInput struct {
	Category  string
	Amount    decimal.Decimal
	Period    models.BudgetPeriod
	StartDate time.Time
}

// BudgetUpdateFields holds optional budget changes.
type BudgetUpdateFields struct {
	Category *string
	Amount   *decimal.Decimal
	Period   *models.BudgetPeriod
	IsActive *bool
}

// BudgetProgress contains spending vs budget data for a budget's current period.
type BudgetProgress struct {
	BudgetID    string          `json:"budget_id"`
	Category    string          `json:"category"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	Budgeted    decimal.Decimal `json:"budgeted"`
	Spent       decimal.Decimal `json:"spent"`
	Remaining   decimal.Decimal `json:"remaining"`
	Percentage  int             `json:"percentage"`
	Level       string          `json:"level"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(ctx context.Context, userID string, in BudgetInput) (*models.Budget, error)
	GetUserBudgets(ctx context.Context, userID string, page pagination.PageRequest, isActive *bool, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(ctx context.Context, userID, budgetID string) (*models.Budget, error)
	UpdateBudget(ctx context.Context, userID, budgetID string, fields BudgetUpdateFields) (*models.Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID string) error
	GetBudgetProgress(ctx context.Context, userID, budgetID string) (*BudgetProgress, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
