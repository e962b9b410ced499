package models

import "github.com/shopspring/decimal"

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeOther      AccountType = "other"
)

// ValidAccountTypes lists every accepted account type.
var ValidAccountTypes = []AccountType{
	AccountTypeChecking,
	AccountTypeSavings,
	AccountTypeCreditCard,
	AccountTypeInvestment,
	AccountTypeOther,
}

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	for _, v := range ValidAccountTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Account is a user-owned money container. Balance is maintained exclusively
// by the transaction store through atomic increments; OpeningBalance is the
// balance the account was created with and never changes.
type Account struct {
	Base
	UserID         string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string          `gorm:"not null" json:"name"`
	Type           AccountType     `gorm:"not null" json:"type"`
	Balance        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"opening_balance"`
	Color          *string         `json:"color,omitempty"`
}
