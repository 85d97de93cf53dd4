package occurrence

import (
	"time"

	"github.com/informaticaucm/seguimiento-api/internal/models"
)

// Outcome classifies the effect of an activity's exceptions on one
// candidate occurrence.
type Outcome int

const (
	// Unaffected means no exception targets the occurrence.
	Unaffected Outcome = iota
	// Cancelled means the occurrence does not take place.
	Cancelled
	// Rescheduled means the occurrence moved into a new window.
	Rescheduled
)

// Resolution is the verdict of ResolveExceptions for one occurrence.
type Resolution struct {
	Outcome     Outcome
	NewStart    time.Time
	NewEnd      time.Time
	ExceptionID int64
}

// ResolveExceptions decides whether the candidate occurrence is cancelled,
// rescheduled, or unaffected. An exception applies only when its original
// window equals the candidate's start/end at minute granularity. When
// several exceptions target the same occurrence (a caller defect), a
// cancellation wins over any reschedule — cancellation is the stronger
// effect.
func ResolveExceptions(excs []models.ActivityException, occStart, occEnd time.Time) Resolution {
	start := truncateMinute(occStart)
	end := truncateMinute(occEnd)

	for _, exc := range excs {
		if exc.IsCancelled && targets(exc, start, end) {
			return Resolution{Outcome: Cancelled, ExceptionID: exc.ID}
		}
	}
	for _, exc := range excs {
		if !exc.IsRescheduled || exc.NewStart == nil || exc.NewEnd == nil {
			continue
		}
		if targets(exc, start, end) {
			return Resolution{
				Outcome:     Rescheduled,
				NewStart:    *exc.NewStart,
				NewEnd:      *exc.NewEnd,
				ExceptionID: exc.ID,
			}
		}
	}
	return Resolution{Outcome: Unaffected}
}

func targets(exc models.ActivityException, occStart, occEnd time.Time) bool {
	return truncateMinute(exc.OriginalStart).Equal(occStart) && truncateMinute(exc.OriginalEnd).Equal(occEnd)
}

// rescheduleCovers reports whether the exception's replacement window
// covers the instant. A reschedule defines a second, independent
// activation window the resolver checks on its own merits, even when the
// original recurrence slot does not cover the instant.
func rescheduleCovers(exc models.ActivityException, at time.Time) bool {
	if exc.IsCancelled || !exc.IsRescheduled || exc.NewStart == nil || exc.NewEnd == nil {
		return false
	}
	t := truncateMinute(at)
	return !t.Before(truncateMinute(*exc.NewStart)) && !t.After(truncateMinute(*exc.NewEnd))
}
