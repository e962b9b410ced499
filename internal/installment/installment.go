// Package installment splits a purchase into monthly installment
// transactions.
package installment

import (
	"errors"
	"time"

	"saldo/internal/models"
	"saldo/internal/money"
	"saldo/internal/schedule"

	"github.com/shopspring/decimal"
)

// MinInstallments is the smallest number of parts a purchase can be split into.
const MinInstallments = 2

var (
	// ErrTooFewInstallments is returned when fewer than MinInstallments are requested.
	ErrTooFewInstallments = errors.New("installment total must be at least 2")
	// ErrNonPositiveTotal is returned when the amount to split is not positive.
	ErrNonPositiveTotal = errors.New("installment amount must be positive")
)

// Template describes the purchase to split. TotalAmount is a positive
// magnitude; the sign is applied from Type.
type Template struct {
	Description     string
	TotalAmount     decimal.Decimal
	Type            models.TransactionType
	Category        *string
	AccountID       *string
	StartDate       time.Time
	Installments    int
	IsRecurring     bool
	RecurringPeriod *models.RecurringPeriod
	PaymentStatus   models.PaymentStatus
}

// Expand returns one transaction per installment in ascending order.
//
// Installment i (0-based) is dated i calendar months after StartDate with the
// day clamped to the month's end. Each amount is TotalAmount/n truncated to
// cents; the last installment absorbs the remainder so the parts add up
// exactly to TotalAmount.
func Expand(tpl Template) ([]models.Transaction, error) {
	n := tpl.Installments
	if n < MinInstallments {
		return nil, ErrTooFewInstallments
	}
	total := money.Round(tpl.TotalAmount.Abs())
	if !total.IsPositive() {
		return nil, ErrNonPositiveTotal
	}

	amounts := Split(total, n)
	start := models.DateOnly(tpl.StartDate)
	status := tpl.PaymentStatus
	if status == "" {
		status = models.PaymentStatusPending
	}

	out := make([]models.Transaction, n)
	for i := 0; i < n; i++ {
		current, count := i+1, n
		out[i] = models.Transaction{
			Description:        tpl.Description,
			Amount:             money.Signed(amounts[i], tpl.Type),
			Date:               schedule.AddMonths(start, i),
			Type:               tpl.Type,
			Category:           tpl.Category,
			AccountID:          tpl.AccountID,
			IsRecurring:        tpl.IsRecurring,
			RecurringPeriod:    tpl.RecurringPeriod,
			InstallmentCurrent: &current,
			InstallmentTotal:   &count,
			PaymentStatus:      status,
		}
	}
	return out, nil
}

// Split divides a non-negative total into n parts of total/n truncated to
// cents, with the remainder added to the last part. No part is negative and
// the parts sum exactly to total.
func Split(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	part := total.Div(decimal.NewFromInt(int64(n))).Truncate(money.Places)
	parts := make([]decimal.Decimal, n)
	sum := decimal.Zero
	for i := 0; i < n-1; i++ {
		parts[i] = part
		sum = sum.Add(part)
	}
	parts[n-1] = total.Sub(sum)
	return parts
}
