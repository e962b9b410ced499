package balance

import (
	"testing"
	"time"

	"saldo/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func ptr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertAdjustments(t *testing.T, want, got []Adjustment) {
	t.Helper()
	if !assert.Len(t, got, len(want)) {
		return
	}
	for i := range want {
		assert.Equal(t, want[i].AccountID, got[i].AccountID)
		assert.True(t, want[i].Delta.Equal(got[i].Delta), "adjustment %d: want %s, got %s", i, want[i].Delta, got[i].Delta)
	}
}

func TestForCreate(t *testing.T) {
	t.Run("with_account", func(t *testing.T) {
		got := ForCreate(Entry{AccountID: ptr("a"), Amount: dec("-150")})
		assertAdjustments(t, []Adjustment{{AccountID: "a", Delta: dec("-150")}}, got)
	})
	t.Run("without_account", func(t *testing.T) {
		assert.Empty(t, ForCreate(Entry{Amount: dec("-150")}))
	})
	t.Run("zero_amount", func(t *testing.T) {
		assert.Empty(t, ForCreate(Entry{AccountID: ptr("a"), Amount: decimal.Zero}))
	})
}

func TestForDelete(t *testing.T) {
	got := ForDelete(Entry{AccountID: ptr("a"), Amount: dec("-200")})
	assertAdjustments(t, []Adjustment{{AccountID: "a", Delta: dec("200")}}, got)

	assert.Empty(t, ForDelete(Entry{Amount: dec("10")}))
}

func TestForUpdate(t *testing.T) {
	t.Run("same_account_amount_changed", func(t *testing.T) {
		got := ForUpdate(
			Entry{AccountID: ptr("a"), Amount: dec("-150")},
			Entry{AccountID: ptr("a"), Amount: dec("-200")},
		)
		assertAdjustments(t, []Adjustment{{AccountID: "a", Delta: dec("-50")}}, got)
	})
	t.Run("same_account_amount_unchanged", func(t *testing.T) {
		got := ForUpdate(
			Entry{AccountID: ptr("a"), Amount: dec("-150")},
			Entry{AccountID: ptr("a"), Amount: dec("-150.00")},
		)
		assert.Empty(t, got)
	})
	t.Run("account_moved", func(t *testing.T) {
		got := ForUpdate(
			Entry{AccountID: ptr("a"), Amount: dec("-150")},
			Entry{AccountID: ptr("c"), Amount: dec("-80")},
		)
		assertAdjustments(t, []Adjustment{
			{AccountID: "a", Delta: dec("150")},
			{AccountID: "c", Delta: dec("-80")},
		}, got)
	})
	t.Run("account_cleared", func(t *testing.T) {
		got := ForUpdate(
			Entry{AccountID: ptr("a"), Amount: dec("-150")},
			Entry{Amount: dec("-300")},
		)
		assertAdjustments(t, []Adjustment{{AccountID: "a", Delta: dec("150")}}, got)
	})
	t.Run("account_set", func(t *testing.T) {
		got := ForUpdate(
			Entry{Amount: dec("-150")},
			Entry{AccountID: ptr("c"), Amount: dec("-300")},
		)
		assertAdjustments(t, []Adjustment{{AccountID: "c", Delta: dec("-300")}}, got)
	})
	t.Run("never_had_account", func(t *testing.T) {
		assert.Empty(t, ForUpdate(Entry{Amount: dec("1")}, Entry{Amount: dec("2")}))
	})
	t.Run("moved_with_zero_new_amount", func(t *testing.T) {
		got := ForUpdate(
			Entry{AccountID: ptr("a"), Amount: dec("10")},
			Entry{AccountID: ptr("c"), Amount: decimal.Zero},
		)
		assertAdjustments(t, []Adjustment{{AccountID: "a", Delta: dec("-10")}}, got)
	})
}

// Applying create, any sequence of edits, then delete leaves every account
// where it started.
func TestRoundTripRestoresBalances(t *testing.T) {
	balances := map[string]decimal.Decimal{"a": dec("1000"), "c": dec("50")}
	apply := func(adjs []Adjustment) {
		for acct, d := range Net(adjs) {
			balances[acct] = balances[acct].Add(d)
		}
	}

	states := []Entry{
		{AccountID: ptr("a"), Amount: dec("-150")},
		{AccountID: ptr("a"), Amount: dec("-200")},
		{AccountID: ptr("c"), Amount: dec("75.25")},
		{Amount: dec("-10")},
		{AccountID: ptr("a"), Amount: dec("-0.01")},
	}

	apply(ForCreate(states[0]))
	assert.True(t, balances["a"].Equal(dec("850")))
	apply(ForUpdate(states[0], states[1]))
	assert.True(t, balances["a"].Equal(dec("800")))
	for i := 2; i < len(states); i++ {
		apply(ForUpdate(states[i-1], states[i]))
	}
	apply(ForDelete(states[len(states)-1]))

	assert.True(t, balances["a"].Equal(dec("1000")), "a=%s", balances["a"])
	assert.True(t, balances["c"].Equal(dec("50")), "c=%s", balances["c"])
}

func TestNet(t *testing.T) {
	got := Net([]Adjustment{
		{AccountID: "a", Delta: dec("1")},
		{AccountID: "b", Delta: dec("2")},
		{AccountID: "a", Delta: dec("3")},
	})
	assert.True(t, got["a"].Equal(dec("4")))
	assert.True(t, got["b"].Equal(dec("2")))
}

func TestClassify(t *testing.T) {
	today := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	dayPtr := func(d int) *time.Time { v := day(d); return &v }

	cases := []struct {
		name string
		tx   models.Transaction
		want models.PaymentStatus
	}{
		{"due_today_is_pending", models.Transaction{Date: day(1), DueDate: dayPtr(10), PaymentStatus: models.PaymentStatusPending}, models.PaymentStatusPending},
		{"due_yesterday_is_overdue", models.Transaction{Date: day(1), DueDate: dayPtr(9), PaymentStatus: models.PaymentStatusPending}, models.PaymentStatusOverdue},
		{"paid_stays_paid", models.Transaction{Date: day(1), DueDate: dayPtr(1), PaymentStatus: models.PaymentStatusPaid}, models.PaymentStatusPaid},
		{"past_expense_without_due_date_stays_pending", models.Transaction{Date: day(1), PaymentStatus: models.PaymentStatusPending}, models.PaymentStatusPending},
		{"no_due_date_keeps_stored_overdue", models.Transaction{Date: day(20), PaymentStatus: models.PaymentStatusOverdue}, models.PaymentStatusOverdue},
		{"no_due_date_defaults_to_pending", models.Transaction{Date: day(1)}, models.PaymentStatusPending},
		{"future_due_date_clears_stored_overdue", models.Transaction{Date: day(1), DueDate: dayPtr(20), PaymentStatus: models.PaymentStatusOverdue}, models.PaymentStatusPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(&tc.tx, today))
		})
	}
}
