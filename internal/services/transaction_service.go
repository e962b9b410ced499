package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"saldo/internal/balance"
	apperrors "saldo/internal/errors"
	"saldo/internal/events"
	"saldo/internal/logger"
	"saldo/internal/models"
	"saldo/internal/money"
	"saldo/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db             *gorm.DB
	accountService AccountServicer
	publisher      events.Publisher
	now            func() time.Time
}

// NewTransactionService creates a new TransactionServicer. publisher may be
// nil, in which case no change events are emitted.
func NewTransactionService(db *gorm.DB, accountService AccountServicer, publisher events.Publisher) TransactionServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &transactionService{
		db:             db,
		accountService: accountService,
		publisher:      publisher,
		now:            time.Now,
	}
}

// CreateTransaction records a transaction and applies its amount to the
// referenced account's balance in the same database transaction.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	transaction := &models.Transaction{
		UserID:             userID,
		Description:        strings.TrimSpace(in.Description),
		Amount:             money.Round(in.Amount),
		Date:               in.Date,
		Type:               in.Type,
		Category:           blankToNil(in.Category),
		AccountID:          blankToNil(in.AccountID),
		IsRecurring:        in.IsRecurring,
		RecurringPeriod:    in.RecurringPeriod,
		InstallmentCurrent: in.InstallmentCurrent,
		InstallmentTotal:   in.InstallmentTotal,
		DueDate:            in.DueDate,
		PaymentStatus:      in.PaymentStatus,
	}
	if transaction.Date.IsZero() {
		transaction.Date = s.now()
	}
	if err := normalizeTransaction(transaction); err != nil {
		return nil, err
	}

	var adjs []balance.Adjustment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if transaction.AccountID != nil {
			if err := s.ensureAccount(tx, userID, *transaction.AccountID); err != nil {
				return err
			}
		}
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		adjs = balance.ForCreate(entryOf(transaction))
		return s.applyAdjustments(tx, userID, adjs, transaction.AccountID)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, events.ActionCreated, transaction, adjs)
	return transaction, nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user. The
// returned payment status is derived for today.
func (s *transactionService) GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	transaction, err := findTransaction(s.db.WithContext(ctx), userID, transactionID)
	if err != nil {
		return nil, err
	}
	transaction.PaymentStatus = balance.Classify(transaction, s.now())
	return transaction, nil
}

// ListTransactions returns every matching transaction of the user, newest first.
func (s *transactionService) ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]TransactionView, error) {
	var views []TransactionView
	if err := s.viewQuery(ctx, userID, filter).Scan(&views).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	s.decorate(views)
	return views, nil
}

// GetUserTransactions returns a page of the user's transactions, newest first.
func (s *transactionService) GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[TransactionView], error) {
	return s.pagedViews(ctx, userID, page, filter)
}

// GetAccountTransactions retrieves a paginated, filtered list of transactions
// for a specific account.
func (s *transactionService) GetAccountTransactions(ctx context.Context, userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[TransactionView], error) {
	// First verify the account belongs to the user
	if _, err := s.accountService.GetAccountByID(ctx, userID, accountID); err != nil {
		return nil, err
	}
	filter.AccountID = &accountID
	return s.pagedViews(ctx, userID, page, filter)
}

// UpdateTransaction applies a partial edit and moves the transaction's
// balance contribution from its old state to its new one.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error) {
	var (
		updated models.Transaction
		adjs    []balance.Adjustment
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old, err := findTransaction(tx, userID, transactionID)
		if err != nil {
			return err
		}
		updated = *old
		if err := applyTransactionFields(&updated, fields); err != nil {
			return err
		}
		if err := normalizeTransaction(&updated); err != nil {
			return err
		}
		var attached *string
		if updated.AccountID != nil && !sameAccount(old.AccountID, updated.AccountID) {
			if err := s.ensureAccount(tx, userID, *updated.AccountID); err != nil {
				return err
			}
			attached = updated.AccountID
		}

		if err := tx.Save(&updated).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		adjs = balance.ForUpdate(entryOf(old), entryOf(&updated))
		return s.applyAdjustments(tx, userID, adjs, attached)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, events.ActionUpdated, &updated, adjs)
	return &updated, nil
}

// DeleteTransaction deletes a transaction and reverses its contribution to
// the account balance.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	var (
		removed *models.Transaction
		adjs    []balance.Adjustment
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		removed, err = findTransaction(tx, userID, transactionID)
		if err != nil {
			return err
		}
		if err := tx.Delete(removed).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		adjs = balance.ForDelete(entryOf(removed))
		return s.applyAdjustments(tx, userID, adjs, nil)
	})
	if err != nil {
		return err
	}

	s.notify(ctx, events.ActionDeleted, removed, adjs)
	return nil
}

// applyAdjustments writes each delta through the account service. A missing
// account is fatal only when it is target, the account the mutation newly
// attaches; deltas against an account that was since deleted are skipped.
func (s *transactionService) applyAdjustments(tx *gorm.DB, userID string, adjs []balance.Adjustment, target *string) error {
	for _, adj := range adjs {
		err := s.accountService.AdjustBalance(tx, userID, adj.AccountID, adj.Delta)
		if err == nil {
			continue
		}
		if errors.Is(err, apperrors.ErrAccountNotFound) && (target == nil || *target != adj.AccountID) {
			logger.Get().Warnw("skipping balance change for missing account",
				"user_id", userID,
				"account_id", adj.AccountID,
				"delta", adj.Delta.String(),
			)
			continue
		}
		return err
	}
	return nil
}

func (s *transactionService) ensureAccount(tx *gorm.DB, userID, accountID string) error {
	var count int64
	if err := tx.Model(&models.Account{}).
		Where("id = ? AND user_id = ?", accountID, userID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// notify publishes a change event after commit. Publishing never fails the
// mutation.
func (s *transactionService) notify(ctx context.Context, action events.Action, t *models.Transaction, adjs []balance.Adjustment) {
	ev := events.TransactionEvent{
		Action:         action,
		UserID:         t.UserID,
		TransactionID:  t.ID,
		Amount:         t.Amount,
		AccountID:      t.AccountID,
		BalanceChanges: adjs,
		OccurredAt:     s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		logger.Get().Warnw("failed to publish transaction event",
			"action", string(action),
			"transaction_id", t.ID,
			"error", err,
		)
	}
}

func (s *transactionService) pagedViews(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[TransactionView], error) {
	page.Defaults()

	var totalItems int64
	if err := s.filtered(ctx, userID, filter).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var views []TransactionView
	if err := s.viewQuery(ctx, userID, filter).
		Scopes(pagination.Paginate(page)).
		Scan(&views).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	s.decorate(views)

	result := pagination.NewPageResponse(views, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func (s *transactionService) filtered(ctx context.Context, userID string, filter TransactionFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("transactions.user_id = ?", userID)
	return applyTransactionFilters(q, filter)
}

// viewQuery joins each transaction with its account's display fields.
func (s *transactionService) viewQuery(ctx context.Context, userID string, filter TransactionFilter) *gorm.DB {
	return s.filtered(ctx, userID, filter).
		Select("transactions.*, COALESCE(accounts.name, '') AS account_name, accounts.color AS account_color").
		Joins("LEFT JOIN accounts ON accounts.id = transactions.account_id").
		Order("transactions.date DESC, transactions.created_at DESC")
}

func (s *transactionService) decorate(views []TransactionView) {
	today := s.now()
	for i := range views {
		if views[i].AccountName == "" {
			views[i].AccountName = UnspecifiedAccountName
		}
		views[i].PaymentStatus = balance.Classify(&views[i].Transaction, today)
	}
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("transactions.date >= ?", models.DateOnly(*f.FromDate))
	}
	if f.ToDate != nil {
		q = q.Where("transactions.date < ?", models.DateOnly(*f.ToDate).AddDate(0, 0, 1))
	}
	if f.Type != nil {
		q = q.Where("transactions.type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("transactions.category = ?", *f.Category)
	}
	if f.AccountID != nil {
		q = q.Where("transactions.account_id = ?", *f.AccountID)
	}
	return q
}

func findTransaction(db *gorm.DB, userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// applyTransactionFields merges a partial edit into t. The amount magnitude
// takes the sign of the resulting type.
func applyTransactionFields(t *models.Transaction, f TransactionUpdateFields) error {
	if f.Description != nil {
		t.Description = strings.TrimSpace(*f.Description)
	}
	if f.Type != nil {
		if !f.Type.IsValid() {
			return apperrors.ErrInvalidTransactionType
		}
		t.Type = *f.Type
	}
	magnitude := t.Amount.Abs()
	if f.Amount != nil {
		magnitude = money.Round(f.Amount.Abs())
	}
	t.Amount = money.Signed(magnitude, t.Type)

	if f.Date != nil {
		t.Date = *f.Date
	}
	switch {
	case f.ClearCategory:
		t.Category = nil
	case f.Category != nil:
		t.Category = blankToNil(f.Category)
	}
	switch {
	case f.ClearAccount:
		t.AccountID = nil
	case f.AccountID != nil:
		t.AccountID = blankToNil(f.AccountID)
	}
	if f.IsRecurring != nil {
		t.IsRecurring = *f.IsRecurring
	}
	if f.RecurringPeriod != nil {
		p := *f.RecurringPeriod
		t.RecurringPeriod = &p
	}
	switch {
	case f.ClearDueDate:
		t.DueDate = nil
	case f.DueDate != nil:
		d := *f.DueDate
		t.DueDate = &d
	}
	if f.PaymentStatus != nil {
		t.PaymentStatus = *f.PaymentStatus
	}
	return nil
}

// normalizeTransaction validates t and brings its dates and optional fields
// into canonical form.
func normalizeTransaction(t *models.Transaction) error {
	if t.Description == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if !t.Type.IsValid() {
		return apperrors.ErrInvalidTransactionType
	}
	if !money.SignMatches(t.Amount, t.Type) {
		return apperrors.ErrSignMismatch
	}
	t.Date = models.DateOnly(t.Date)
	if t.DueDate != nil {
		d := models.DateOnly(*t.DueDate)
		t.DueDate = &d
	}

	if t.IsRecurring {
		if t.RecurringPeriod == nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "recurring_period is required for recurring transactions")
		}
		if !t.RecurringPeriod.IsValid() {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported recurring_period")
		}
	} else {
		t.RecurringPeriod = nil
	}

	switch {
	case t.InstallmentCurrent == nil && t.InstallmentTotal == nil:
	case t.InstallmentCurrent == nil || t.InstallmentTotal == nil:
		return apperrors.WithMessage(apperrors.ErrInvalidInstallment, "installment_current and installment_total must be set together")
	case *t.InstallmentTotal < 2:
		return apperrors.WithMessage(apperrors.ErrInvalidInstallment, "installment_total must be at least 2")
	case *t.InstallmentCurrent < 1 || *t.InstallmentCurrent > *t.InstallmentTotal:
		return apperrors.WithMessage(apperrors.ErrInvalidInstallment, "installment_current must be between 1 and installment_total")
	}

	if t.PaymentStatus == "" {
		t.PaymentStatus = models.PaymentStatusPending
	}
	if !t.PaymentStatus.IsValid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported payment_status")
	}
	return nil
}

func entryOf(t *models.Transaction) balance.Entry {
	return balance.Entry{AccountID: t.AccountID, Amount: t.Amount}
}

func sameAccount(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
