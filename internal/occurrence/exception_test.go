package occurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/informaticaucm/seguimiento-api/internal/models"
)

func instant(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }

func TestResolveExceptionsUnaffected(t *testing.T) {
	occStart := instant(2024, time.January, 8, 9, 0)
	occEnd := instant(2024, time.January, 8, 10, 0)

	excs := []models.ActivityException{
		{
			ID:            1,
			IsCancelled:   true,
			OriginalStart: instant(2024, time.January, 15, 9, 0),
			OriginalEnd:   instant(2024, time.January, 15, 10, 0),
		},
	}

	res := ResolveExceptions(excs, occStart, occEnd)
	assert.Equal(t, Unaffected, res.Outcome, "exception for another occurrence must not apply")
}

func TestResolveExceptionsCancelled(t *testing.T) {
	occStart := instant(2024, time.January, 8, 9, 0)
	occEnd := instant(2024, time.January, 8, 10, 0)

	excs := []models.ActivityException{
		{ID: 7, IsCancelled: true, OriginalStart: occStart, OriginalEnd: occEnd},
	}

	res := ResolveExceptions(excs, occStart, occEnd)
	assert.Equal(t, Cancelled, res.Outcome)
	assert.Equal(t, int64(7), res.ExceptionID)
}

func TestResolveExceptionsMinuteGranularity(t *testing.T) {
	occStart := instant(2024, time.January, 8, 9, 0).Add(42 * time.Second)
	occEnd := instant(2024, time.January, 8, 10, 0).Add(17 * time.Second)

	excs := []models.ActivityException{
		{
			ID:            3,
			IsCancelled:   true,
			OriginalStart: instant(2024, time.January, 8, 9, 0),
			OriginalEnd:   instant(2024, time.January, 8, 10, 0),
		},
	}

	res := ResolveExceptions(excs, occStart, occEnd)
	assert.Equal(t, Cancelled, res.Outcome, "seconds are truncated before comparison")
}

func TestResolveExceptionsRescheduled(t *testing.T) {
	occStart := instant(2024, time.January, 8, 9, 0)
	occEnd := instant(2024, time.January, 8, 10, 0)
	newStart := instant(2024, time.January, 10, 16, 0)
	newEnd := instant(2024, time.January, 10, 17, 0)

	excs := []models.ActivityException{
		{
			ID:            4,
			IsRescheduled: true,
			OriginalStart: occStart,
			OriginalEnd:   occEnd,
			NewStart:      timePtr(newStart),
			NewEnd:        timePtr(newEnd),
		},
	}

	res := ResolveExceptions(excs, occStart, occEnd)
	assert.Equal(t, Rescheduled, res.Outcome)
	assert.True(t, res.NewStart.Equal(newStart))
	assert.True(t, res.NewEnd.Equal(newEnd))
}

func TestResolveExceptionsCancellationWins(t *testing.T) {
	occStart := instant(2024, time.January, 8, 9, 0)
	occEnd := instant(2024, time.January, 8, 10, 0)

	excs := []models.ActivityException{
		{
			ID:            1,
			IsRescheduled: true,
			OriginalStart: occStart,
			OriginalEnd:   occEnd,
			NewStart:      timePtr(instant(2024, time.January, 10, 16, 0)),
			NewEnd:        timePtr(instant(2024, time.January, 10, 17, 0)),
		},
		{ID: 2, IsCancelled: true, OriginalStart: occStart, OriginalEnd: occEnd},
	}

	res := ResolveExceptions(excs, occStart, occEnd)
	assert.Equal(t, Cancelled, res.Outcome, "cancellation is the stronger effect")
	assert.Equal(t, int64(2), res.ExceptionID)
}

func TestRescheduleCovers(t *testing.T) {
	exc := models.ActivityException{
		IsRescheduled: true,
		OriginalStart: instant(2024, time.January, 8, 9, 0),
		OriginalEnd:   instant(2024, time.January, 8, 10, 0),
		NewStart:      timePtr(instant(2024, time.January, 10, 16, 0)),
		NewEnd:        timePtr(instant(2024, time.January, 10, 17, 0)),
	}

	assert.True(t, rescheduleCovers(exc, instant(2024, time.January, 10, 16, 30)))
	assert.True(t, rescheduleCovers(exc, instant(2024, time.January, 10, 16, 0)))
	assert.True(t, rescheduleCovers(exc, instant(2024, time.January, 10, 17, 0)))
	assert.False(t, rescheduleCovers(exc, instant(2024, time.January, 10, 17, 1)))

	exc.IsCancelled = true
	assert.False(t, rescheduleCovers(exc, instant(2024, time.January, 10, 16, 30)), "a cancelled exception activates nothing")
}
