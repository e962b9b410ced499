package schedule

import (
	"testing"
	"time"

	"saldo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{"same_month", date(2024, 1, 15), 0, date(2024, 1, 15)},
		{"next_month", date(2024, 1, 15), 1, date(2024, 2, 15)},
		{"year_rollover", date(2024, 11, 15), 2, date(2025, 1, 15)},
		{"clamps_to_leap_february", date(2024, 1, 31), 1, date(2024, 2, 29)},
		{"clamps_to_february", date(2023, 1, 31), 1, date(2023, 2, 28)},
		{"clamps_to_thirty_days", date(2024, 3, 31), 1, date(2024, 4, 30)},
		{"many_years", date(2024, 5, 10), 27, date(2026, 8, 10)},
		{"backwards", date(2024, 1, 31), -2, date(2023, 11, 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.in, tt.n))
		})
	}
}

func TestStepperFor(t *testing.T) {
	anchor := date(2024, 1, 31)

	cases := map[models.RecurringPeriod]time.Time{
		models.RecurringDaily:   date(2024, 2, 2),
		models.RecurringWeekly:  date(2024, 2, 14),
		models.RecurringMonthly: date(2024, 3, 31),
		models.RecurringYearly:  date(2026, 1, 31),
	}
	for period, want := range cases {
		t.Run(string(period), func(t *testing.T) {
			s, err := StepperFor(period)
			require.NoError(t, err)
			assert.Equal(t, want, s.Nth(anchor, 2))
		})
	}

	_, err := StepperFor("hourly")
	assert.Error(t, err)
}

func TestOccurrences(t *testing.T) {
	t.Run("monthly_returns_to_anchor_day", func(t *testing.T) {
		got, err := Occurrences(date(2024, 1, 31), models.RecurringMonthly, date(2024, 1, 31), date(2024, 4, 30))
		require.NoError(t, err)
		assert.Equal(t, []time.Time{date(2024, 2, 29), date(2024, 3, 31), date(2024, 4, 30)}, got)
	})

	t.Run("skips_occurrences_before_window", func(t *testing.T) {
		got, err := Occurrences(date(2024, 1, 1), models.RecurringWeekly, date(2024, 1, 20), date(2024, 2, 5))
		require.NoError(t, err)
		assert.Equal(t, []time.Time{date(2024, 1, 22), date(2024, 1, 29), date(2024, 2, 5)}, got)
	})

	t.Run("yearly_leap_day", func(t *testing.T) {
		got, err := Occurrences(date(2024, 2, 29), models.RecurringYearly, date(2024, 2, 29), date(2028, 12, 31))
		require.NoError(t, err)
		assert.Equal(t, []time.Time{date(2025, 2, 28), date(2026, 2, 28), date(2027, 2, 28), date(2028, 2, 29)}, got)
	})

	t.Run("empty_window", func(t *testing.T) {
		got, err := Occurrences(date(2024, 1, 1), models.RecurringDaily, date(2024, 1, 5), date(2024, 1, 5))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unknown_period", func(t *testing.T) {
		_, err := Occurrences(date(2024, 1, 1), "fortnightly", date(2024, 1, 1), date(2024, 2, 1))
		assert.Error(t, err)
	})
}
