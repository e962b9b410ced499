package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// IsValid reports whether p is monthly or yearly.
func (p BudgetPeriod) IsValid() bool {
	return p == BudgetPeriodMonthly || p == BudgetPeriodYearly
}

// Budget caps spending for one category label over a repeating period.
type Budget struct {
	Base
	UserID    string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Category  string          `gorm:"not null" json:"category"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Period    BudgetPeriod    `gorm:"not null" json:"period"`
	StartDate time.Time       `gorm:"type:date;not null" json:"start_date"`
	IsActive  bool            `gorm:"not null" json:"is_active"`
}
