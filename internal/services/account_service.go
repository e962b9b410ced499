package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "saldo/internal/errors"
	"saldo/internal/logger"
	"saldo/internal/models"
	"saldo/internal/money"
)

// accountService handles account-related business logic.
type accountService struct {
	db    *gorm.DB
	cache Invalidator
}

// NewAccountService creates a new AccountServicer. cache, when not nil, is
// told about every user whose accounts changed.
func NewAccountService(db *gorm.DB, cache Invalidator) AccountServicer {
	return &accountService{db: db, cache: cache}
}

func (s *accountService) invalidate(userID string) {
	if s.cache != nil {
		s.cache.Invalidate(userID)
	}
}

// CreateAccount creates a new account whose opening balance is the given
// initial balance.
func (s *accountService) CreateAccount(ctx context.Context, userID string, in AccountInput) (*models.Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if in.Type == "" {
		in.Type = models.AccountTypeChecking
	}
	if !in.Type.IsValid() {
		return nil, apperrors.ErrInvalidAccountType
	}

	opening := money.Round(in.InitialBalance)
	account := &models.Account{
		UserID:         userID,
		Name:           name,
		Type:           in.Type,
		Balance:        opening,
		OpeningBalance: opening,
		Color:          in.Color,
	}

	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	s.invalidate(userID)
	return account, nil
}

// GetUserAccounts returns every account of the user ordered by name.
func (s *accountService) GetUserAccounts(ctx context.Context, userID string) ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return accounts, nil
}

// GetAccountByID retrieves an account by ID for a specific user
func (s *accountService) GetAccountByID(ctx context.Context, userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount changes an account's name, type or color.
func (s *accountService) UpdateAccount(ctx context.Context, userID, accountID string, fields AccountUpdateFields) (*models.Account, error) {
	account, err := s.GetAccountByID(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
		}
		updates["name"] = name
	}
	if fields.Type != nil {
		if !fields.Type.IsValid() {
			return nil, apperrors.ErrInvalidAccountType
		}
		updates["type"] = *fields.Type
	}
	if fields.Color != nil {
		updates["color"] = *fields.Color
	}

	if len(updates) > 0 {
		db := s.db.WithContext(ctx)
		if err := db.Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		// Reload to get fresh data
		if err := db.Where("id = ?", account.ID).First(account).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		s.invalidate(userID)
	}

	return account, nil
}

// DeleteAccount removes an account. Transactions that reference it are kept
// and keep pointing at the removed id.
func (s *accountService) DeleteAccount(ctx context.Context, userID, accountID string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", accountID, userID).Delete(&models.Account{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrAccountNotFound
	}
	s.invalidate(userID)
	return nil
}

// AdjustBalance adds delta to an account's balance with a single atomic
// UPDATE inside the caller's database transaction.
func (s *accountService) AdjustBalance(tx *gorm.DB, userID, accountID string, delta decimal.Decimal) error {
	res := tx.Model(&models.Account{}).
		Where("id = ? AND user_id = ?", accountID, userID).
		Update("balance", gorm.Expr("ROUND(balance + ?, 2)", delta))
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrBalanceUpdateFailed, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// Reconcile compares each of the user's accounts against its opening
// balance plus the sum of its transactions. With apply set, drifted balances
// are rewritten to the expected value.
func (s *accountService) Reconcile(ctx context.Context, userID string, apply bool) ([]BalanceDrift, error) {
	return s.reconcile(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}, apply)
}

// ReconcileAll runs Reconcile across every user.
func (s *accountService) ReconcileAll(ctx context.Context, apply bool) ([]BalanceDrift, error) {
	return s.reconcile(ctx, func(db *gorm.DB) *gorm.DB { return db }, apply)
}

type accountAmount struct {
	AccountID string
	Amount    decimal.Decimal
}

func (s *accountService) reconcile(ctx context.Context, scope func(*gorm.DB) *gorm.DB, apply bool) ([]BalanceDrift, error) {
	drifts := []BalanceDrift{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var accounts []models.Account
		if err := tx.Scopes(scope).Order("user_id, name").Find(&accounts).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(accounts) == 0 {
			return nil
		}

		ids := make([]string, len(accounts))
		for i := range accounts {
			ids[i] = accounts[i].ID
		}

		var rows []accountAmount
		if err := tx.Model(&models.Transaction{}).
			Select("account_id, amount").
			Where("account_id IN ?", ids).
			Scan(&rows).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		sums := make(map[string]decimal.Decimal, len(accounts))
		for _, r := range rows {
			sums[r.AccountID] = sums[r.AccountID].Add(r.Amount)
		}

		for _, a := range accounts {
			expected := money.Round(a.OpeningBalance.Add(sums[a.ID]))
			if a.Balance.Equal(expected) {
				continue
			}
			drift := BalanceDrift{
				AccountID: a.ID,
				UserID:    a.UserID,
				Name:      a.Name,
				Stored:    a.Balance,
				Expected:  expected,
				Drift:     a.Balance.Sub(expected),
			}
			if apply {
				if err := tx.Model(&models.Account{}).Where("id = ?", a.ID).Update("balance", expected).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrBalanceUpdateFailed, err)
				}
				drift.Applied = true
				logger.Get().Infow("reconciled account balance",
					"account_id", a.ID,
					"user_id", a.UserID,
					"stored", a.Balance.String(),
					"expected", expected.String(),
				)
			}
			drifts = append(drifts, drift)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, d := range drifts {
		if d.Applied {
			s.invalidate(d.UserID)
		}
	}
	return drifts, nil
}
