package occurrence

import (
	"fmt"
	"time"

	"github.com/informaticaucm/seguimiento-api/internal/models"
)

// Verdict tells whether a concrete occurrence of an activity exists
// covering the query instant, and through which window.
type Verdict int

const (
	// NotActive means no occurrence covers the instant.
	NotActive Verdict = iota
	// ActiveOriginal means the pattern-derived occurrence covers the
	// instant and no exception alters it.
	ActiveOriginal
	// ActiveRescheduled means a reschedule window covers the instant; the
	// room/time reported to the caller may differ from the pattern's.
	ActiveRescheduled
)

// String implements fmt.Stringer.
func (v Verdict) String() string {
	switch v {
	case ActiveOriginal:
		return "active"
	case ActiveRescheduled:
		return "rescheduled"
	default:
		return "not_active"
	}
}

// Evaluation carries the verdict plus the activation window that applies.
type Evaluation struct {
	Verdict     Verdict
	Start       time.Time
	End         time.Time
	ExceptionID int64 // set when a reschedule produced the window
}

// Evaluate decides whether a concrete occurrence of the activity exists at
// the query instant. It is a pure function of its inputs: calling it twice
// with identical inputs and an unchanged snapshot yields identical results.
//
// The original pattern slot is checked first; independently of whether the
// pattern matches, every reschedule window is scanned, since a reschedule
// can make an activity active at a wall-clock time its normal pattern never
// produces.
func Evaluate(act models.Activity, rule *models.RecurrenceRule, excs []models.ActivityException, at time.Time) (Evaluation, error) {
	anchor, err := Normalize(at)
	if err != nil {
		return Evaluation{}, err
	}

	eval, err := evaluateOriginal(act, rule, excs, anchor, at)
	if err != nil {
		return Evaluation{}, err
	}
	if eval.Verdict == ActiveOriginal {
		return eval, nil
	}

	for _, exc := range excs {
		if rescheduleCovers(exc, at) {
			return Evaluation{
				Verdict:     ActiveRescheduled,
				Start:       *exc.NewStart,
				End:         *exc.NewEnd,
				ExceptionID: exc.ID,
			}, nil
		}
	}

	return Evaluation{Verdict: NotActive}, nil
}

func evaluateOriginal(act models.Activity, rule *models.RecurrenceRule, excs []models.ActivityException, anchor Anchor, at time.Time) (Evaluation, error) {
	if !act.IsRecurring {
		start, end, err := singleWindow(act)
		if err != nil {
			return Evaluation{}, err
		}
		if at.Before(start) || at.After(end) {
			return Evaluation{Verdict: NotActive}, nil
		}
		if res := ResolveExceptions(excs, start, end); res.Outcome != Unaffected {
			return Evaluation{Verdict: NotActive}, nil
		}
		return Evaluation{Verdict: ActiveOriginal, Start: start, End: end}, nil
	}

	if rule == nil {
		return Evaluation{}, fmt.Errorf("recurring activity %d has no recurrence rule", act.ID)
	}
	if act.EndDate != nil && anchor.Date.After(dateOnly(*act.EndDate)) {
		return Evaluation{Verdict: NotActive}, nil
	}

	matched, err := Matches(*rule, act.StartDate, at)
	if err != nil {
		return Evaluation{}, err
	}
	if !matched {
		return Evaluation{Verdict: NotActive}, nil
	}

	start, end, err := dailyWindow(act, anchor.Date)
	if err != nil {
		return Evaluation{}, err
	}
	if at.Before(start) || at.After(end) {
		return Evaluation{Verdict: NotActive}, nil
	}
	if res := ResolveExceptions(excs, start, end); res.Outcome != Unaffected {
		return Evaluation{Verdict: NotActive}, nil
	}
	return Evaluation{Verdict: ActiveOriginal, Start: start, End: end}, nil
}

// EvaluateWindow reports whether the activity is active for any instant in
// [from, to]. Recurring patterns are expanded day by day across the window;
// reschedule windows are checked independently.
func EvaluateWindow(act models.Activity, rule *models.RecurrenceRule, excs []models.ActivityException, from, to time.Time) (bool, error) {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return false, fmt.Errorf("invalid window [%s, %s]: %w", from, to, errInvalidWindow)
	}

	for _, exc := range excs {
		if exc.IsCancelled || !exc.IsRescheduled || exc.NewStart == nil || exc.NewEnd == nil {
			continue
		}
		if overlaps(*exc.NewStart, *exc.NewEnd, from, to) {
			return true, nil
		}
	}

	if !act.IsRecurring {
		start, end, err := singleWindow(act)
		if err != nil {
			return false, err
		}
		if !overlaps(start, end, from, to) {
			return false, nil
		}
		return ResolveExceptions(excs, start, end).Outcome == Unaffected, nil
	}

	if rule == nil {
		return false, fmt.Errorf("recurring activity %d has no recurrence rule", act.ID)
	}

	last := dateOnly(to)
	for day := dateOnly(from); !day.After(last); day = day.AddDate(0, 0, 1) {
		if act.EndDate != nil && day.After(dateOnly(*act.EndDate)) {
			break
		}
		matched, err := Matches(*rule, act.StartDate, day)
		if err != nil {
			return false, err
		}
		if !matched {
			continue
		}
		start, end, err := dailyWindow(act, day)
		if err != nil {
			return false, err
		}
		if overlaps(start, end, from, to) && ResolveExceptions(excs, start, end).Outcome == Unaffected {
			return true, nil
		}
	}
	return false, nil
}

var errInvalidWindow = fmt.Errorf("window end precedes start")

// CoversTimeOfDay reports whether the activity's daily time-of-day window
// contains the instant, ignoring dates, recurrence and exceptions
// entirely. This deliberately over-matches: it is the widened test used
// when a teacher is known to be off their normal pattern and the engine
// only needs "could this activity plausibly be happening right now".
// All-day activities cover every instant.
func CoversTimeOfDay(act models.Activity, at time.Time) (bool, error) {
	if _, err := Normalize(at); err != nil {
		return false, err
	}
	start, end, err := dailyWindow(act, dateOnly(at.UTC()))
	if err != nil {
		return false, err
	}
	t := truncateMinute(at)
	return !t.Before(truncateMinute(start)) && !t.After(truncateMinute(end)), nil
}

// ExpandWindow lists the concrete occurrence windows of the activity that
// overlap [from, to], in pattern order. Cancelled occurrences are omitted;
// rescheduled ones appear once, under their new window.
func ExpandWindow(act models.Activity, rule *models.RecurrenceRule, excs []models.ActivityException, from, to time.Time) ([]Evaluation, error) {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, fmt.Errorf("invalid window [%s, %s]: %w", from, to, errInvalidWindow)
	}

	var out []Evaluation

	appendOriginal := func(start, end time.Time) {
		res := ResolveExceptions(excs, start, end)
		switch res.Outcome {
		case Cancelled:
		case Rescheduled:
			if overlaps(res.NewStart, res.NewEnd, from, to) {
				out = append(out, Evaluation{Verdict: ActiveRescheduled, Start: res.NewStart, End: res.NewEnd, ExceptionID: res.ExceptionID})
			}
		default:
			if overlaps(start, end, from, to) {
				out = append(out, Evaluation{Verdict: ActiveOriginal, Start: start, End: end})
			}
		}
	}

	if !act.IsRecurring {
		start, end, err := singleWindow(act)
		if err != nil {
			return nil, err
		}
		appendOriginal(start, end)
		return out, nil
	}

	if rule == nil {
		return nil, fmt.Errorf("recurring activity %d has no recurrence rule", act.ID)
	}

	last := dateOnly(to)
	for day := dateOnly(from); !day.After(last); day = day.AddDate(0, 0, 1) {
		if act.EndDate != nil && day.After(dateOnly(*act.EndDate)) {
			break
		}
		matched, err := Matches(*rule, act.StartDate, day)
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}
		start, end, err := dailyWindow(act, day)
		if err != nil {
			return nil, err
		}
		appendOriginal(start, end)
	}
	return out, nil
}

// singleWindow computes the activation window of a non-recurring activity.
func singleWindow(act models.Activity) (time.Time, time.Time, error) {
	endDate := act.StartDate
	if act.EndDate != nil {
		endDate = *act.EndDate
	}
	return activityWindow(act, dateOnly(act.StartDate), dateOnly(endDate))
}

// dailyWindow computes the occurrence window of a recurring activity on a
// given calendar day.
func dailyWindow(act models.Activity, day time.Time) (time.Time, time.Time, error) {
	return activityWindow(act, day, day)
}

func activityWindow(act models.Activity, startDay, endDay time.Time) (time.Time, time.Time, error) {
	if act.IsAllDay || act.StartTime == nil || act.EndTime == nil {
		// All-day windows run through the last minute of the final day.
		return startDay, endDay.Add(24*time.Hour - time.Minute), nil
	}
	startMin, err := ParseClock(*act.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endMin, err := ParseClock(*act.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return combine(startDay, startMin), combine(endDay, endMin), nil
}

func overlaps(start, end, from, to time.Time) bool {
	return !truncateMinute(start).After(truncateMinute(to)) && !truncateMinute(end).Before(truncateMinute(from))
}

// InconsistentExceptions returns the exceptions whose original window the
// activity's pattern can never produce. Such exceptions are ignored during
// resolution; callers log them as data-quality warnings instead of failing.
func InconsistentExceptions(act models.Activity, rule *models.RecurrenceRule, excs []models.ActivityException) []models.ActivityException {
	var bad []models.ActivityException
	for _, exc := range excs {
		ok, err := exceptionConsistent(act, rule, exc)
		if err != nil || !ok {
			bad = append(bad, exc)
		}
	}
	return bad
}

func exceptionConsistent(act models.Activity, rule *models.RecurrenceRule, exc models.ActivityException) (bool, error) {
	if !act.IsRecurring {
		start, end, err := singleWindow(act)
		if err != nil {
			return false, err
		}
		return targets(exc, truncateMinute(start), truncateMinute(end)), nil
	}
	if rule == nil {
		return false, nil
	}
	matched, err := Matches(*rule, act.StartDate, exc.OriginalStart)
	if err != nil || !matched {
		return false, err
	}
	start, end, err := dailyWindow(act, dateOnly(exc.OriginalStart))
	if err != nil {
		return false, err
	}
	return targets(exc, truncateMinute(start), truncateMinute(end)), nil
}
