package occurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/informaticaucm/seguimiento-api/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func weeklyRule(weekday, interval int) models.RecurrenceRule {
	return models.RecurrenceRule{
		ID:       1,
		Kind:     models.RecurrenceWeekly,
		Interval: interval,
		Weekday:  intPtr(weekday),
	}
}

func TestMatchesWeeklyEveryWeek(t *testing.T) {
	// Activity starts Monday 2024-01-01, weekly on Mondays.
	start := date(2024, time.January, 1)
	rule := weeklyRule(1, 1)

	for _, candidate := range []time.Time{
		date(2024, time.January, 1),
		date(2024, time.January, 8),
		date(2024, time.January, 15),
	} {
		ok, err := Matches(rule, start, candidate)
		require.NoError(t, err)
		assert.True(t, ok, "expected match on %s", candidate)
	}

	ok, err := Matches(rule, start, date(2024, time.January, 9))
	require.NoError(t, err)
	assert.False(t, ok, "Tuesday must not match a Monday rule")
}

func TestMatchesWeeklyInterval(t *testing.T) {
	start := date(2024, time.January, 1)
	rule := weeklyRule(1, 2)

	ok, err := Matches(rule, start, date(2024, time.January, 8))
	require.NoError(t, err)
	assert.False(t, ok, "odd week falls outside the step cadence")

	ok, err = Matches(rule, start, date(2024, time.January, 15))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatchesRejectsBeforeSeriesStart(t *testing.T) {
	start := date(2024, time.January, 8)
	rule := weeklyRule(1, 1)

	ok, err := Matches(rule, start, date(2024, time.January, 1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchesMaxOccurrences(t *testing.T) {
	start := date(2024, time.January, 1)
	rule := weeklyRule(1, 1)
	rule.MaxOccurrences = intPtr(2)

	ok, err := Matches(rule, start, date(2024, time.January, 1))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches(rule, start, date(2024, time.January, 8))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches(rule, start, date(2024, time.January, 15))
	require.NoError(t, err)
	assert.False(t, ok, "third occurrence exceeds the cap")

	ok, err = Matches(rule, start, date(2030, time.January, 7))
	require.NoError(t, err)
	assert.False(t, ok, "cap holds no matter how far ahead the query lies")
}

func TestMatchesMonthlyDayOfMonth(t *testing.T) {
	start := date(2024, time.January, 31)
	rule := models.RecurrenceRule{
		Kind:       models.RecurrenceMonthlyDay,
		Interval:   1,
		DayOfMonth: intPtr(31),
	}

	ok, err := Matches(rule, start, date(2024, time.January, 31))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches(rule, start, date(2024, time.March, 31))
	require.NoError(t, err)
	assert.True(t, ok)

	// February and April have no 31st; no clamping, no rollover.
	for _, candidate := range []time.Time{
		date(2024, time.February, 29),
		date(2024, time.April, 30),
	} {
		ok, err = Matches(rule, start, candidate)
		require.NoError(t, err)
		assert.False(t, ok, "%s must not match day 31", candidate)
	}
}

func TestMatchesMonthlyDayInterval(t *testing.T) {
	start := date(2024, time.January, 15)
	rule := models.RecurrenceRule{
		Kind:       models.RecurrenceMonthlyDay,
		Interval:   3,
		DayOfMonth: intPtr(15),
	}

	ok, err := Matches(rule, start, date(2024, time.April, 15))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches(rule, start, date(2024, time.February, 15))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchesMonthlyWeekdayOrdinal(t *testing.T) {
	// Second Tuesday of every month, anchored 2024-01-09.
	start := date(2024, time.January, 9)
	rule := models.RecurrenceRule{
		Kind:        models.RecurrenceMonthlyWeekday,
		Interval:    1,
		Weekday:     intPtr(2),
		WeekOfMonth: intPtr(2),
	}

	ok, err := Matches(rule, start, date(2024, time.February, 13))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches(rule, start, date(2024, time.February, 6))
	require.NoError(t, err)
	assert.False(t, ok, "first Tuesday is not the second")

	ok, err = Matches(rule, start, date(2024, time.February, 14))
	require.NoError(t, err)
	assert.False(t, ok, "Wednesday is not a Tuesday")
}

func TestMatchesMonthlyWeekdayLast(t *testing.T) {
	// Last Friday of the month.
	start := date(2024, time.January, 26)
	rule := models.RecurrenceRule{
		Kind:        models.RecurrenceMonthlyWeekday,
		Interval:    1,
		Weekday:     intPtr(5),
		WeekOfMonth: intPtr(-1),
	}

	ok, err := Matches(rule, start, date(2024, time.February, 23))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches(rule, start, date(2024, time.February, 16))
	require.NoError(t, err)
	assert.False(t, ok, "a Friday with another Friday after it is not the last")
}

func TestMatchesYearly(t *testing.T) {
	start := date(2024, time.April, 23)
	rule := models.RecurrenceRule{
		Kind:        models.RecurrenceYearly,
		Interval:    1,
		MonthOfYear: intPtr(4),
		DayOfMonth:  intPtr(23),
	}

	ok, err := Matches(rule, start, date(2025, time.April, 23))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches(rule, start, date(2025, time.April, 24))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Matches(rule, start, date(2025, time.May, 23))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchesYearlyInterval(t *testing.T) {
	start := date(2024, time.April, 23)
	rule := models.RecurrenceRule{
		Kind:        models.RecurrenceYearly,
		Interval:    2,
		MonthOfYear: intPtr(4),
		DayOfMonth:  intPtr(23),
	}

	ok, err := Matches(rule, start, date(2025, time.April, 23))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Matches(rule, start, date(2026, time.April, 23))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatchesDefaultsIntervalToOne(t *testing.T) {
	start := date(2024, time.January, 1)
	rule := weeklyRule(1, 0)

	ok, err := Matches(rule, start, date(2024, time.January, 8))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatchesRejectsUnknownKind(t *testing.T) {
	start := date(2024, time.January, 1)
	rule := models.RecurrenceRule{Kind: "fortnightly", Interval: 1}

	_, err := Matches(rule, start, date(2024, time.January, 8))
	require.Error(t, err)
}

func TestMatchesRejectsMalformedRule(t *testing.T) {
	start := date(2024, time.January, 1)
	rule := models.RecurrenceRule{Kind: models.RecurrenceWeekly, Interval: 1}

	_, err := Matches(rule, start, date(2024, time.January, 1))
	require.Error(t, err, "weekly rule without weekday is malformed")
}
