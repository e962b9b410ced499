package services

import (
	"context"
	"errors"
	"testing"

	"saldo/internal/installment"
	"saldo/internal/models"
	"saldo/internal/testutil"
)

// flakyTransactions fails CreateTransaction for selected installment numbers.
type flakyTransactions struct {
	TransactionServicer
	failOn map[int]bool
	calls  []int
}

func (f *flakyTransactions) CreateTransaction(_ context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	n := *in.InstallmentCurrent
	f.calls = append(f.calls, n)
	if f.failOn[n] {
		return nil, errors.New("insert failed")
	}
	return &models.Transaction{UserID: userID, Amount: in.Amount, InstallmentCurrent: in.InstallmentCurrent}, nil
}

func purchase(t *testing.T, total string, n int, accountID *string) installment.Template {
	t.Helper()
	return installment.Template{
		Description:  "Laptop",
		TotalAmount:  testutil.Dec(t, total),
		Type:         models.TransactionTypeExpense,
		AccountID:    accountID,
		StartDate:    testutil.Date(2024, 11, 15),
		Installments: n,
	}
}

func TestCreateInstallments(t *testing.T) {
	ctx := context.Background()

	t.Run("twelve_monthly_parts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc, _, _ := newTestTransactionService(db)
		svc := NewInstallmentService(txSvc)
		userID := testutil.NewUserID()
		account := testutil.CreateTestAccountWithBalance(t, db, userID, "5000")

		result, err := svc.CreateInstallments(ctx, userID, purchase(t, "1200", 12, &account.ID))
		testutil.AssertNoError(t, err)

		if result.SuccessCount != 12 || result.Total != 12 || len(result.Failures) != 0 {
			t.Fatalf("unexpected result %d/%d failures=%v", result.SuccessCount, result.Total, result.Failures)
		}
		for i, tx := range result.Created {
			if !tx.Amount.Equal(testutil.Dec(t, "-100")) {
				t.Errorf("installment %d: expected -100, got %s", i+1, tx.Amount)
			}
			if *tx.InstallmentCurrent != i+1 || *tx.InstallmentTotal != 12 {
				t.Errorf("installment %d: numbering %d/%d", i+1, *tx.InstallmentCurrent, *tx.InstallmentTotal)
			}
		}
		if !result.Created[2].Date.Equal(testutil.Date(2025, 1, 15)) {
			t.Errorf("expected third installment in January, got %s", result.Created[2].Date)
		}
		testutil.AssertBalance(t, db, account.ID, "3800")
	})

	t.Run("remainder_on_last", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc, _, _ := newTestTransactionService(db)
		svc := NewInstallmentService(txSvc)
		userID := testutil.NewUserID()
		account := testutil.CreateTestAccountWithBalance(t, db, userID, "100")

		result, err := svc.CreateInstallments(ctx, userID, purchase(t, "100", 3, &account.ID))
		testutil.AssertNoError(t, err)

		want := []string{"-33.33", "-33.33", "-33.34"}
		for i, w := range want {
			if !result.Created[i].Amount.Equal(testutil.Dec(t, w)) {
				t.Errorf("installment %d: expected %s, got %s", i+1, w, result.Created[i].Amount)
			}
		}
		testutil.AssertBalance(t, db, account.ID, "0")
	})

	t.Run("small_total_many_parts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc, _, _ := newTestTransactionService(db)
		svc := NewInstallmentService(txSvc)
		userID := testutil.NewUserID()
		account := testutil.CreateTestAccountWithBalance(t, db, userID, "100")

		result, err := svc.CreateInstallments(ctx, userID, purchase(t, "1.00", 40, &account.ID))
		testutil.AssertNoError(t, err)
		if result.SuccessCount != 40 {
			t.Fatalf("expected 40 installments, got %d", result.SuccessCount)
		}
		for i, tx := range result.Created {
			if tx.Amount.IsPositive() {
				t.Errorf("installment %d: expected a non-positive amount, got %s", i+1, tx.Amount)
			}
		}
		testutil.AssertBalance(t, db, account.ID, "99")
	})

	t.Run("failure_does_not_stop_later_parts", func(t *testing.T) {
		fake := &flakyTransactions{failOn: map[int]bool{2: true}}
		svc := NewInstallmentService(fake)

		result, err := svc.CreateInstallments(ctx, testutil.NewUserID(), purchase(t, "90", 3, nil))
		testutil.AssertNoError(t, err)

		if len(fake.calls) != 3 || fake.calls[0] != 1 || fake.calls[2] != 3 {
			t.Errorf("expected sequential calls 1..3, got %v", fake.calls)
		}
		if result.SuccessCount != 2 || result.Total != 3 {
			t.Errorf("expected 2 of 3, got %d of %d", result.SuccessCount, result.Total)
		}
		if len(result.Failures) != 1 || result.Failures[0].Installment != 2 {
			t.Errorf("expected failure on installment 2, got %+v", result.Failures)
		}
	})

	t.Run("all_fail", func(t *testing.T) {
		fake := &flakyTransactions{failOn: map[int]bool{1: true, 2: true}}
		svc := NewInstallmentService(fake)

		result, err := svc.CreateInstallments(ctx, testutil.NewUserID(), purchase(t, "10", 2, nil))
		testutil.AssertNoError(t, err)
		if result.SuccessCount != 0 || len(result.Failures) != 2 {
			t.Errorf("expected everything to fail, got %+v", result)
		}
	})

	t.Run("too_few_parts", func(t *testing.T) {
		svc := NewInstallmentService(&flakyTransactions{})
		_, err := svc.CreateInstallments(ctx, testutil.NewUserID(), purchase(t, "10", 1, nil))
		testutil.AssertAppError(t, err, "INVALID_INSTALLMENT")
	})

	t.Run("zero_total", func(t *testing.T) {
		svc := NewInstallmentService(&flakyTransactions{})
		_, err := svc.CreateInstallments(ctx, testutil.NewUserID(), purchase(t, "0", 3, nil))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("missing_description", func(t *testing.T) {
		svc := NewInstallmentService(&flakyTransactions{})
		tpl := purchase(t, "10", 2, nil)
		tpl.Description = ""
		_, err := svc.CreateInstallments(ctx, testutil.NewUserID(), tpl)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}
