package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// IsValid reports whether t is income or expense.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// RecurringPeriod is the repetition cadence of a recurring transaction.
type RecurringPeriod string

const (
	RecurringDaily   RecurringPeriod = "daily"
	RecurringWeekly  RecurringPeriod = "weekly"
	RecurringMonthly RecurringPeriod = "monthly"
	RecurringYearly  RecurringPeriod = "yearly"
)

// IsValid reports whether p is a known period.
func (p RecurringPeriod) IsValid() bool {
	switch p {
	case RecurringDaily, RecurringWeekly, RecurringMonthly, RecurringYearly:
		return true
	}
	return false
}

// PaymentStatus tracks whether a transaction has been settled.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// IsValid reports whether s is a known payment status.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusOverdue:
		return true
	}
	return false
}

// Transaction is a signed money movement. Expenses carry a non-positive
// amount and income a non-negative one. Category is a free-text label and
// AccountID is optional; neither is a foreign key.
type Transaction struct {
	Base
	UserID             string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Description        string           `gorm:"not null" json:"description"`
	Amount             decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"amount"`
	Date               time.Time        `gorm:"type:date;not null;index" json:"date"`
	Type               TransactionType  `gorm:"not null" json:"type"`
	Category           *string          `json:"category,omitempty"`
	AccountID          *string          `gorm:"type:uuid;index" json:"account_id,omitempty"`
	IsRecurring        bool             `gorm:"not null;default:false" json:"is_recurring"`
	RecurringPeriod    *RecurringPeriod `json:"recurring_period,omitempty"`
	InstallmentCurrent *int             `json:"installment_current,omitempty"`
	InstallmentTotal   *int             `json:"installment_total,omitempty"`
	DueDate            *time.Time       `gorm:"type:date" json:"due_date,omitempty"`
	PaymentStatus      PaymentStatus    `gorm:"not null;default:'pending'" json:"payment_status"`
}
