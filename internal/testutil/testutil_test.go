package testutil_test

import (
	"testing"

	"saldo/internal/errors"
	"saldo/internal/models"
	"saldo/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"accounts", "categories", "transactions", "budgets", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_Isolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	testutil.CreateTestAccount(t, first, testutil.NewUserID())

	var count int64
	second.Model(&models.Account{}).Count(&count)
	if count != 0 {
		t.Errorf("expected isolated databases, second has %d accounts", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	userID := testutil.NewUserID()

	account := testutil.CreateTestAccountWithBalance(t, db, userID, "5000.50")
	if account.ID == "" {
		t.Fatal("account should have an ID")
	}
	testutil.AssertBalance(t, db, account.ID, "5000.50")

	category := testutil.CreateTestCategory(t, db, userID)
	if category.IsDefault {
		t.Error("fixture category should not be a default category")
	}

	tx := testutil.CreateTestTransaction(t, db, userID, &account.ID, models.TransactionTypeExpense, "-10.25", testutil.Date(2024, 1, 15))
	if !tx.Amount.Equal(testutil.Dec(t, "-10.25")) {
		t.Errorf("expected amount -10.25, got %s", tx.Amount)
	}
	// Direct inserts never move balances.
	testutil.AssertBalance(t, db, account.ID, "5000.50")

	budget := testutil.CreateTestBudget(t, db, userID, category.Name)
	if !budget.IsActive {
		t.Error("fixture budget should be active")
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrAccountNotFound, "custom message")
	testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}

func TestAssertDecimal(t *testing.T) {
	testutil.AssertDecimal(t, "scale is ignored", testutil.Dec(t, "12.50"), "12.5")
}
