package services

import (
	"context"
	"testing"
	"time"

	"saldo/internal/events"
	"saldo/internal/models"
	"saldo/internal/testutil"

	"github.com/shopspring/decimal"
)

func TestSummarize(t *testing.T) {
	today := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	due := testutil.Date(2024, 6, 20)
	pastDue := testutil.Date(2024, 6, 12)
	color := "#123456"

	txs := []models.Transaction{
		{Amount: testutil.Dec(t, "3000"), Type: models.TransactionTypeIncome, Date: testutil.Date(2024, 6, 1)},
		{Amount: testutil.Dec(t, "-100"), Type: models.TransactionTypeExpense, Date: testutil.Date(2024, 6, 1), PaymentStatus: models.PaymentStatusPaid},
		{Amount: testutil.Dec(t, "-250.50"), Type: models.TransactionTypeExpense, Date: testutil.Date(2024, 6, 10), DueDate: &pastDue, PaymentStatus: models.PaymentStatusPending},
		{Amount: testutil.Dec(t, "-30"), Type: models.TransactionTypeExpense, Date: testutil.Date(2024, 6, 2), PaymentStatus: models.PaymentStatusPending},
		{Amount: testutil.Dec(t, "-49.50"), Type: models.TransactionTypeExpense, Date: testutil.Date(2024, 6, 1), DueDate: &due, PaymentStatus: models.PaymentStatusPending},
		{Amount: testutil.Dec(t, "-20"), Type: models.TransactionTypeExpense, Date: testutil.Date(2024, 6, 15), PaymentStatus: models.PaymentStatusPending},
		{Amount: decimal.Zero, Type: models.TransactionTypeIncome, Date: testutil.Date(2024, 6, 1)},
	}
	accounts := []models.Account{
		{Base: models.Base{ID: "a"}, Name: "Checking", Balance: testutil.Dec(t, "1200"), Color: &color},
		{Base: models.Base{ID: "b"}, Name: "Card", Balance: testutil.Dec(t, "-300.25")},
	}

	s := Summarize(txs, accounts, today)

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"total", s.TotalBalance, "2550"},
		{"income", s.Income, "3000"},
		{"expenses", s.Expenses, "450"},
		{"pending", s.PendingExpenses, "99.50"},
		{"overdue", s.OverdueExpenses, "250.50"},
		{"accounts", s.AccountsBalance, "899.75"},
	}
	for _, c := range checks {
		if !c.got.Equal(testutil.Dec(t, c.want)) {
			t.Errorf("%s: expected %s, got %s", c.name, c.want, c.got)
		}
	}
	if len(s.Accounts) != 2 || s.Accounts[0].Color == nil || s.Accounts[1].Name != "Card" {
		t.Errorf("unexpected account lines %+v", s.Accounts)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil, time.Now())
	if !s.TotalBalance.IsZero() || !s.Income.IsZero() || !s.Expenses.IsZero() {
		t.Errorf("expected zero summary, got %+v", s)
	}
	if s.Accounts == nil {
		t.Error("expected empty account list, got nil")
	}
}

func TestGetSummary(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	summarySvc := NewSummaryService(db, 10, time.Minute)
	txSvc := NewTransactionService(db, NewAccountService(db, nil), events.Fanout{summarySvc})
	userID := testutil.NewUserID()
	account := testutil.CreateTestAccountWithBalance(t, db, userID, "1000")

	_, err := txSvc.CreateTransaction(ctx, userID, expenseInput(t, "-150", &account.ID))
	testutil.AssertNoError(t, err)

	s, err := summarySvc.GetSummary(ctx, userID)
	testutil.AssertNoError(t, err)
	if !s.Expenses.Equal(testutil.Dec(t, "150")) || !s.AccountsBalance.Equal(testutil.Dec(t, "850")) {
		t.Fatalf("unexpected summary %+v", s)
	}

	// A direct insert bypasses the event stream, so the cached summary is served.
	testutil.CreateTestTransaction(t, db, userID, nil, models.TransactionTypeIncome, "500", testutil.Date(2024, 1, 1))
	cached, err := summarySvc.GetSummary(ctx, userID)
	testutil.AssertNoError(t, err)
	if !cached.Income.IsZero() {
		t.Errorf("expected cached summary, got income %s", cached.Income)
	}

	// A store mutation publishes an event that drops the cache.
	_, err = txSvc.CreateTransaction(ctx, userID, expenseInput(t, "-50", &account.ID))
	testutil.AssertNoError(t, err)
	fresh, err := summarySvc.GetSummary(ctx, userID)
	testutil.AssertNoError(t, err)
	if !fresh.Income.Equal(testutil.Dec(t, "500")) || !fresh.Expenses.Equal(testutil.Dec(t, "200")) {
		t.Errorf("expected recomputed summary, got %+v", fresh)
	}
	if !fresh.TotalBalance.Equal(testutil.Dec(t, "300")) {
		t.Errorf("expected total 300, got %s", fresh.TotalBalance)
	}
	if !fresh.AccountsBalance.Equal(testutil.Dec(t, "800")) {
		t.Errorf("expected accounts balance 800, got %s", fresh.AccountsBalance)
	}
}
