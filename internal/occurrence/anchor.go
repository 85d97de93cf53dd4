// Package occurrence implements the recurrence and occurrence resolution
// engine: pure decisions about whether a concrete occurrence of a scheduled
// activity exists at an instant, given its recurrence rule and exceptions.
//
// Every comparison runs in a single canonical time reference (UTC). Callers
// convert local times before invoking the engine; formatting back to a
// user's offset happens strictly outside this package.
package occurrence

import (
	"fmt"
	"time"

	appErrors "github.com/informaticaucm/seguimiento-api/pkg/errors"
)

// Anchor is the comparable representation of a wall-clock instant used by
// every other component of the engine.
type Anchor struct {
	Date            time.Time // midnight UTC of the instant's calendar day
	MinuteOfDay     int
	Weekday         time.Weekday
	DayOfMonth      int
	WeekOfMonth     int // 1-5 ordinal of the weekday within the month
	LastWeekOfMonth bool
	Month           time.Month
	Year            int
}

// Normalize converts an instant into its Anchor in UTC. The zero instant is
// the only invalid calendar input representable with time.Time and is
// rejected as an invalid timestamp.
func Normalize(t time.Time) (Anchor, error) {
	if t.IsZero() {
		return Anchor{}, appErrors.Clone(appErrors.ErrInvalidTimestamp, "zero instant")
	}
	u := t.UTC()
	year, month, day := u.Date()
	return Anchor{
		Date:            time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		MinuteOfDay:     u.Hour()*60 + u.Minute(),
		Weekday:         u.Weekday(),
		DayOfMonth:      day,
		WeekOfMonth:     (day-1)/7 + 1,
		LastWeekOfMonth: day+7 > daysInMonth(year, month),
		Month:           month,
		Year:            year,
	}, nil
}

// ParseClock parses an "HH:MM" time of day into minutes since midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInvalidTimestamp.Code, appErrors.ErrInvalidTimestamp.Status, fmt.Sprintf("malformed time of day %q", s))
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, appErrors.Clone(appErrors.ErrInvalidTimestamp, fmt.Sprintf("time of day %q out of range", s))
	}
	return h*60 + m, nil
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// dateOnly truncates an instant to midnight UTC of its calendar day.
func dateOnly(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// combine places a minutes-since-midnight clock on a calendar day.
func combine(date time.Time, minuteOfDay int) time.Time {
	return dateOnly(date).Add(time.Duration(minuteOfDay) * time.Minute)
}

// truncateMinute drops seconds and finer before comparisons; exceptions
// target occurrences at minute granularity.
func truncateMinute(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}
