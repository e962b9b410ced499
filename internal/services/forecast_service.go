package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "saldo/internal/errors"
	"saldo/internal/logger"
	"saldo/internal/models"
	"saldo/internal/schedule"
)

// Forecast horizon bounds, in months.
const (
	DefaultForecastMonths = 3
	MaxForecastMonths     = 24
)

// forecastService projects account balances forward using the user's
// recurring transactions.
type forecastService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewForecastService creates a new ForecastServicer.
func NewForecastService(db *gorm.DB) ForecastServicer {
	return &forecastService{db: db, now: time.Now}
}

// GetForecast projects the next months calendar months, starting with the
// current one. Each recurring transaction repeats from its own date at its
// period; repetitions after today are added to the month they fall in.
func (s *forecastService) GetForecast(ctx context.Context, userID string, months int) (*Forecast, error) {
	if months == 0 {
		months = DefaultForecastMonths
	}
	if months < 1 || months > MaxForecastMonths {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "months must be between 1 and 24")
	}

	db := s.db.WithContext(ctx)
	var balances []decimal.Decimal
	if err := db.Model(&models.Account{}).Where("user_id = ?", userID).Pluck("balance", &balances).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var recurring []models.Transaction
	if err := db.Where("user_id = ? AND is_recurring = ?", userID, true).
		Order("date ASC").
		Find(&recurring).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	starting := decimal.Zero
	for _, b := range balances {
		starting = starting.Add(b)
	}
	return Project(starting, recurring, s.now(), months), nil
}

// Project builds a forecast from a starting balance and a set of recurring
// transactions.
func Project(starting decimal.Decimal, recurring []models.Transaction, now time.Time, months int) *Forecast {
	today := models.DateOnly(now)
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	until := schedule.AddMonths(first, months).AddDate(0, 0, -1)

	out := &Forecast{
		AsOf:            today,
		StartingBalance: starting,
		Months:          make([]ForecastMonth, months),
		Occurrences:     []ForecastOccurrence{},
	}
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		key := schedule.AddMonths(first, i).Format("2006-01")
		index[key] = i
		out.Months[i] = ForecastMonth{
			Month:    key,
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
			Net:      decimal.Zero,
		}
	}

	for i := range recurring {
		t := &recurring[i]
		if t.RecurringPeriod == nil {
			continue
		}
		dates, err := schedule.Occurrences(models.DateOnly(t.Date), *t.RecurringPeriod, today, until)
		if err != nil {
			logger.Get().Warnw("skipping recurring transaction", "transaction_id", t.ID, "error", err)
			continue
		}
		for _, d := range dates {
			out.Occurrences = append(out.Occurrences, ForecastOccurrence{
				TransactionID: t.ID,
				Description:   t.Description,
				Date:          d,
				Amount:        t.Amount,
				AccountID:     t.AccountID,
			})
			m := &out.Months[index[d.Format("2006-01")]]
			if t.Amount.IsPositive() {
				m.Income = m.Income.Add(t.Amount)
			} else {
				m.Expenses = m.Expenses.Add(t.Amount.Abs())
			}
			m.Net = m.Net.Add(t.Amount)
		}
	}

	sort.SliceStable(out.Occurrences, func(i, j int) bool {
		return out.Occurrences[i].Date.Before(out.Occurrences[j].Date)
	})

	running := starting
	for i := range out.Months {
		running = running.Add(out.Months[i].Net)
		out.Months[i].ProjectedBalance = running
	}
	return out
}
