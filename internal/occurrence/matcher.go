package occurrence

import (
	"fmt"
	"time"

	"github.com/informaticaucm/seguimiento-api/internal/models"
)

// Matches reports whether the candidate instant falls on a valid occurrence
// of the rule, counting from the activity's start date (the anchor date).
// The decision is exact: an instant either is or is not a valid occurrence
// start day for the rule.
//
// A day-of-month beyond a given month's length (31 in February) never
// matches that month; there is no clamping or rollover.
func Matches(rule models.RecurrenceRule, seriesStart, candidate time.Time) (bool, error) {
	anchor, err := Normalize(candidate)
	if err != nil {
		return false, err
	}
	start, err := Normalize(seriesStart)
	if err != nil {
		return false, err
	}

	if anchor.Date.Before(start.Date) {
		return false, nil
	}

	interval := rule.Interval
	if interval <= 0 {
		interval = 1
	}

	var elapsed int
	switch rule.Kind {
	case models.RecurrenceWeekly:
		elapsed = int(anchor.Date.Sub(start.Date).Hours()/24) / 7
	case models.RecurrenceMonthlyWeekday, models.RecurrenceMonthlyDay:
		elapsed = monthsBetween(start, anchor)
	case models.RecurrenceYearly:
		months := monthsBetween(start, anchor)
		if months%12 != 0 {
			return false, nil
		}
		elapsed = months / 12
	default:
		return false, fmt.Errorf("unsupported recurrence kind %q", rule.Kind)
	}

	if elapsed < 0 || elapsed%interval != 0 {
		return false, nil
	}
	if rule.MaxOccurrences != nil && elapsed/interval >= *rule.MaxOccurrences {
		return false, nil
	}

	return kindPredicate(rule, anchor)
}

func kindPredicate(rule models.RecurrenceRule, anchor Anchor) (bool, error) {
	switch rule.Kind {
	case models.RecurrenceWeekly:
		if rule.Weekday == nil {
			return false, fmt.Errorf("weekly rule %d lacks a weekday", rule.ID)
		}
		return int(anchor.Weekday) == *rule.Weekday, nil

	case models.RecurrenceMonthlyWeekday:
		if rule.Weekday == nil || rule.WeekOfMonth == nil {
			return false, fmt.Errorf("monthly-weekday rule %d lacks weekday or week-of-month", rule.ID)
		}
		if int(anchor.Weekday) != *rule.Weekday {
			return false, nil
		}
		if *rule.WeekOfMonth == lastWeekOrdinal {
			return anchor.LastWeekOfMonth, nil
		}
		return anchor.WeekOfMonth == *rule.WeekOfMonth, nil

	case models.RecurrenceMonthlyDay:
		if rule.DayOfMonth == nil {
			return false, fmt.Errorf("monthly-day rule %d lacks a day of month", rule.ID)
		}
		return anchor.DayOfMonth == *rule.DayOfMonth, nil

	case models.RecurrenceYearly:
		if rule.MonthOfYear == nil || rule.DayOfMonth == nil {
			return false, fmt.Errorf("yearly rule %d lacks month or day", rule.ID)
		}
		return int(anchor.Month) == *rule.MonthOfYear && anchor.DayOfMonth == *rule.DayOfMonth, nil

	default:
		return false, fmt.Errorf("unsupported recurrence kind %q", rule.Kind)
	}
}

// lastWeekOrdinal marks "the last occurrence of that weekday in the month".
const lastWeekOrdinal = -1

func monthsBetween(from, to Anchor) int {
	return (to.Year-from.Year)*12 + int(to.Month) - int(from.Month)
}
