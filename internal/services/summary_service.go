package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"saldo/internal/balance"
	"saldo/internal/cache"
	apperrors "saldo/internal/errors"
	"saldo/internal/events"
	"saldo/internal/models"
)

// summaryService folds a user's transactions and accounts into the
// dashboard summary and caches the result per user.
type summaryService struct {
	db    *gorm.DB
	cache *cache.LRU[*BalanceSummary]
	now   func() time.Time
}

// NewSummaryService creates a new SummaryServicer caching up to size
// summaries for ttl each.
func NewSummaryService(db *gorm.DB, size int, ttl time.Duration) SummaryServicer {
	return &summaryService{
		db:    db,
		cache: cache.NewLRU[*BalanceSummary](size, ttl),
		now:   time.Now,
	}
}

// GetSummary returns the user's balance summary, serving it from cache when
// no mutation has happened since it was computed.
func (s *summaryService) GetSummary(ctx context.Context, userID string) (*BalanceSummary, error) {
	if cached, ok := s.cache.Get(userID); ok {
		return cached, nil
	}

	var (
		accounts     []models.Account
		transactions []models.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("user_id = ?", userID).
			Order("name ASC").
			Find(&accounts).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Select("amount", "type", "date", "due_date", "payment_status").
			Where("user_id = ?", userID).
			Find(&transactions).Error
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := Summarize(transactions, accounts, s.now())
	s.cache.Set(userID, summary)
	return summary, nil
}

// Invalidate drops the cached summary of a user.
func (s *summaryService) Invalidate(userID string) {
	s.cache.Delete(userID)
}

// Publish implements events.Publisher by invalidating the summary of the
// user the event belongs to.
func (s *summaryService) Publish(_ context.Context, ev events.TransactionEvent) error {
	s.Invalidate(ev.UserID)
	return nil
}

// Summarize folds transactions and accounts as seen on today. Positive
// amounts count as income and the rest as expenses; unpaid expenses are
// further split into pending and overdue.
func Summarize(transactions []models.Transaction, accounts []models.Account, today time.Time) *BalanceSummary {
	out := &BalanceSummary{
		TotalBalance:    decimal.Zero,
		Income:          decimal.Zero,
		Expenses:        decimal.Zero,
		PendingExpenses: decimal.Zero,
		OverdueExpenses: decimal.Zero,
		AccountsBalance: decimal.Zero,
		Accounts:        make([]AccountBalance, 0, len(accounts)),
		AsOf:            today.UTC(),
	}

	for i := range transactions {
		t := &transactions[i]
		out.TotalBalance = out.TotalBalance.Add(t.Amount)
		if t.Amount.IsPositive() {
			out.Income = out.Income.Add(t.Amount)
			continue
		}
		magnitude := t.Amount.Abs()
		out.Expenses = out.Expenses.Add(magnitude)
		if t.Type != models.TransactionTypeExpense {
			continue
		}
		switch balance.Classify(t, today) {
		case models.PaymentStatusPending:
			out.PendingExpenses = out.PendingExpenses.Add(magnitude)
		case models.PaymentStatusOverdue:
			out.OverdueExpenses = out.OverdueExpenses.Add(magnitude)
		}
	}

	for _, a := range accounts {
		out.AccountsBalance = out.AccountsBalance.Add(a.Balance)
		out.Accounts = append(out.Accounts, AccountBalance{
			AccountID: a.ID,
			Name:      a.Name,
			Color:     a.Color,
			Balance:   a.Balance,
		})
	}
	return out
}
