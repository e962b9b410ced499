// Package schedule computes calendar occurrences of recurring transactions.
//
// Each recurring period has its own Stepper. Occurrences are always derived
// from the anchor date rather than from the previous occurrence, so a series
// anchored on the 31st returns to the 31st after passing through shorter
// months.
package schedule

import (
	"fmt"
	"time"

	"saldo/internal/models"
)

// Stepper computes the nth occurrence after an anchor date.
type Stepper interface {
	Nth(anchor time.Time, n int) time.Time
}

// DailyStepper advances by whole days.
type DailyStepper struct{}

// Nth returns anchor plus n days.
func (DailyStepper) Nth(anchor time.Time, n int) time.Time {
	return anchor.AddDate(0, 0, n)
}

// WeeklyStepper advances by whole weeks.
type WeeklyStepper struct{}

// Nth returns anchor plus 7n days.
func (WeeklyStepper) Nth(anchor time.Time, n int) time.Time {
	return anchor.AddDate(0, 0, 7*n)
}

// MonthlyStepper advances by calendar months, clamping the day.
type MonthlyStepper struct{}

// Nth returns anchor plus n months.
func (MonthlyStepper) Nth(anchor time.Time, n int) time.Time {
	return AddMonths(anchor, n)
}

// YearlyStepper advances by calendar years, clamping Feb 29.
type YearlyStepper struct{}

// Nth returns anchor plus n years.
func (YearlyStepper) Nth(anchor time.Time, n int) time.Time {
	return AddMonths(anchor, 12*n)
}

var steppers = map[models.RecurringPeriod]Stepper{
	models.RecurringDaily:   DailyStepper{},
	models.RecurringWeekly:  WeeklyStepper{},
	models.RecurringMonthly: MonthlyStepper{},
	models.RecurringYearly:  YearlyStepper{},
}

// StepperFor returns the stepper registered for period.
func StepperFor(period models.RecurringPeriod) (Stepper, error) {
	s, ok := steppers[period]
	if !ok {
		return nil, fmt.Errorf("unknown recurring period: %s", period)
	}
	return s, nil
}

// AddMonths moves t forward by n calendar months. The year rolls over as
// needed and the day is clamped to the last day of the target month, so
// Jan 31 plus one month is Feb 28 (or 29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + n
	y += total / 12
	total %= 12
	if total < 0 {
		total += 12
		y--
	}
	target := time.Month(total + 1)
	if last := DaysIn(y, target); d > last {
		d = last
	}
	h, mi, s := t.Clock()
	return time.Date(y, target, d, h, mi, s, t.Nanosecond(), t.Location())
}

// DaysIn returns the number of days in month m of year y.
func DaysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Occurrences lists the repetitions of a series anchored at anchor that fall
// strictly after after and on or before until. The anchor itself is never
// included.
func Occurrences(anchor time.Time, period models.RecurringPeriod, after, until time.Time) ([]time.Time, error) {
	s, err := StepperFor(period)
	if err != nil {
		return nil, err
	}
	var out []time.Time
	for n := 1; ; n++ {
		next := s.Nth(anchor, n)
		if next.After(until) {
			break
		}
		if next.After(after) {
			out = append(out, next)
		}
	}
	return out, nil
}
