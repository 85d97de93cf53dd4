package models

import "time"

// Activity is a teaching session template. Dates are stored in UTC; times of
// day are "HH:MM" strings in the canonical (UTC) reference, matching the
// scheduling source. Activities are read-only to the resolution engine.
type Activity struct {
	ID               int64      `db:"id" json:"id"`
	StartDate        time.Time  `db:"start_date" json:"start_date"`
	EndDate          *time.Time `db:"end_date" json:"end_date,omitempty"`
	StartTime        *string    `db:"start_time" json:"start_time,omitempty"`
	EndTime          *string    `db:"end_time" json:"end_time,omitempty"`
	IsAllDay         bool       `db:"is_all_day" json:"is_all_day"`
	IsRecurring      bool       `db:"is_recurring" json:"is_recurring"`
	ParentActivityID *int64     `db:"parent_activity_id" json:"parent_activity_id,omitempty"`
	ResponsibleID    int64      `db:"responsible_id" json:"responsible_id"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// RecurrenceKind enumerates the finite recurrence vocabulary.
type RecurrenceKind string

const (
	RecurrenceWeekly         RecurrenceKind = "weekly"
	RecurrenceMonthlyWeekday RecurrenceKind = "monthly_weekday"
	RecurrenceMonthlyDay     RecurrenceKind = "monthly_day"
	RecurrenceYearly         RecurrenceKind = "yearly"
)

// RecurrenceRule describes how a recurring activity repeats. Exactly the
// fields relevant to Kind are populated; the rest stay nil.
//
// Weekday is 0-6 with Sunday = 0. WeekOfMonth is 1-5, or -1 for the last
// occurrence of the weekday in the month.
type RecurrenceRule struct {
	ID             int64          `db:"id" json:"id"`
	ActivityID     int64          `db:"activity_id" json:"activity_id"`
	Kind           RecurrenceKind `db:"kind" json:"kind"`
	Interval       int            `db:"separation" json:"separation"`
	MaxOccurrences *int           `db:"max_occurrences" json:"max_occurrences,omitempty"`
	Weekday        *int           `db:"weekday" json:"weekday,omitempty"`
	WeekOfMonth    *int           `db:"week_of_month" json:"week_of_month,omitempty"`
	DayOfMonth     *int           `db:"day_of_month" json:"day_of_month,omitempty"`
	MonthOfYear    *int           `db:"month_of_year" json:"month_of_year,omitempty"`
}

// ActivityException targets exactly one occurrence of an activity,
// identified by its original start/end, and either cancels it or moves it
// into a new window. Cancellation takes precedence when both flags are set.
type ActivityException struct {
	ID            int64      `db:"id" json:"id"`
	ActivityID    int64      `db:"activity_id" json:"activity_id"`
	IsCancelled   bool       `db:"is_cancelled" json:"is_cancelled"`
	IsRescheduled bool       `db:"is_rescheduled" json:"is_rescheduled"`
	OriginalStart time.Time  `db:"original_start" json:"original_start"`
	OriginalEnd   time.Time  `db:"original_end" json:"original_end"`
	NewStart      *time.Time `db:"new_start" json:"new_start,omitempty"`
	NewEnd        *time.Time `db:"new_end" json:"new_end,omitempty"`
}

// ScheduleSnapshot is a consistent read of everything needed to evaluate a
// candidate set of activities: the activities plus all of their rules and
// exceptions, fetched inside a single storage transaction so that no
// activity can be half cancelled mid-evaluation.
type ScheduleSnapshot struct {
	Activities []Activity
	Rules      map[int64]*RecurrenceRule
	Exceptions map[int64][]ActivityException
}

// RuleFor returns the recurrence rule owned by the activity, if any.
func (s *ScheduleSnapshot) RuleFor(activityID int64) *RecurrenceRule {
	if s == nil || s.Rules == nil {
		return nil
	}
	return s.Rules[activityID]
}

// ExceptionsFor returns the exceptions attached to the activity.
func (s *ScheduleSnapshot) ExceptionsFor(activityID int64) []ActivityException {
	if s == nil || s.Exceptions == nil {
		return nil
	}
	return s.Exceptions[activityID]
}
