package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"saldo/internal/models"
	"saldo/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewUserID returns a fresh owner id. Users live in the identity provider,
// so there is no row to create.
func NewUserID() string {
	return uuid.New()
}

// Dec parses a decimal literal, failing the test on error.
func Dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}

// Date returns midnight UTC of the given day.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string {
	return &s
}

// CreateTestAccount creates a checking account with a zero balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string) *models.Account {
	t.Helper()
	return CreateTestAccountWithBalance(t, db, userID, "0")
}

// CreateTestAccountWithBalance creates a checking account whose balance and
// opening balance are both set to balance.
func CreateTestAccountWithBalance(t *testing.T, db *gorm.DB, userID, balance string) *models.Account {
	t.Helper()

	b := Dec(t, balance)
	account := &models.Account{
		UserID:         userID,
		Name:           fmt.Sprintf("Test Account %d", nextID()),
		Type:           models.AccountTypeChecking,
		Balance:        b,
		OpeningBalance: b,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates a non-default category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Color:  "#3b82f6",
		Icon:   "tag",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction inserts a transaction row directly, without touching
// any account balance. amount is signed.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, accountID *string, txType models.TransactionType, amount string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:        userID,
		Description:   fmt.Sprintf("Test Transaction %d", nextID()),
		Amount:        Dec(t, amount),
		Date:          date,
		Type:          txType,
		AccountID:     accountID,
		PaymentStatus: models.PaymentStatusPending,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates an active monthly budget for a category label.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, category string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:    userID,
		Category:  category,
		Amount:    decimal.NewFromInt(100),
		Period:    models.BudgetPeriodMonthly,
		StartDate: models.DateOnly(time.Now()),
		IsActive:  true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// AccountBalance reloads an account's balance from the database.
func AccountBalance(t *testing.T, db *gorm.DB, accountID string) decimal.Decimal {
	t.Helper()

	var account models.Account
	if err := db.First(&account, "id = ?", accountID).Error; err != nil {
		t.Fatalf("failed to reload account %s: %v", accountID, err)
	}
	return account.Balance
}

// AssertBalance fails the test unless the stored balance equals want.
func AssertBalance(t *testing.T, db *gorm.DB, accountID, want string) {
	t.Helper()

	got := AccountBalance(t, db, accountID)
	if !got.Equal(Dec(t, want)) {
		t.Errorf("expected balance %s, got %s", want, got)
	}
}
