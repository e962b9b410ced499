package services

import (
	"context"
	"errors"
	"strings"

	apperrors "saldo/internal/errors"
	"saldo/internal/installment"
	"saldo/internal/logger"
)

// installmentService drives the creation of a split purchase through the
// transaction store.
type installmentService struct {
	transactions TransactionServicer
}

// NewInstallmentService creates a new InstallmentServicer.
func NewInstallmentService(transactions TransactionServicer) InstallmentServicer {
	return &installmentService{transactions: transactions}
}

// CreateInstallments expands tpl and records each installment in ascending
// order. A failed installment does not stop the ones after it, and
// installments already recorded are kept. The returned error is non-nil only
// when the template itself is invalid.
func (s *installmentService) CreateInstallments(ctx context.Context, userID string, tpl installment.Template) (*InstallmentResult, error) {
	tpl.Description = strings.TrimSpace(tpl.Description)
	if tpl.Description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if !tpl.Type.IsValid() {
		return nil, apperrors.ErrInvalidTransactionType
	}

	parts, err := installment.Expand(tpl)
	if err != nil {
		switch {
		case errors.Is(err, installment.ErrTooFewInstallments):
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInstallment, err.Error())
		default:
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
	}

	result := &InstallmentResult{Total: len(parts)}
	for i := range parts {
		p := parts[i]
		created, err := s.transactions.CreateTransaction(ctx, userID, TransactionInput{
			Description:        p.Description,
			Amount:             p.Amount,
			Date:               p.Date,
			Type:               p.Type,
			Category:           p.Category,
			AccountID:          p.AccountID,
			IsRecurring:        p.IsRecurring,
			RecurringPeriod:    p.RecurringPeriod,
			InstallmentCurrent: p.InstallmentCurrent,
			InstallmentTotal:   p.InstallmentTotal,
			PaymentStatus:      p.PaymentStatus,
		})
		if err != nil {
			logger.Get().Warnw("failed to create installment",
				"user_id", userID,
				"installment", i+1,
				"total", len(parts),
				"error", err,
			)
			result.Failures = append(result.Failures, InstallmentFailure{Installment: i + 1, Error: err.Error()})
			continue
		}
		result.Created = append(result.Created, *created)
		result.SuccessCount++
	}

	return result, nil
}
