package balance

import (
	"time"

	"saldo/internal/models"
)

// Classify derives the payment status of tx as seen on the calendar day of
// today. Paid transactions stay paid. A transaction with a due date is
// overdue once that date is strictly before today and pending otherwise.
// Without a due date the stored status stands.
func Classify(tx *models.Transaction, today time.Time) models.PaymentStatus {
	if tx.PaymentStatus == models.PaymentStatusPaid {
		return models.PaymentStatusPaid
	}
	if tx.DueDate == nil {
		if tx.PaymentStatus == "" {
			return models.PaymentStatusPending
		}
		return tx.PaymentStatus
	}
	if models.DateOnly(*tx.DueDate).Before(models.DateOnly(today)) {
		return models.PaymentStatusOverdue
	}
	return models.PaymentStatusPending
}
