package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/informaticaucm/seguimiento-api/internal/models"
	"github.com/informaticaucm/seguimiento-api/internal/occurrence"
	"github.com/informaticaucm/seguimiento-api/pkg/config"
	appErrors "github.com/informaticaucm/seguimiento-api/pkg/errors"
)

type presenceScheduleStore interface {
	FindByID(ctx context.Context, id int64) (*models.Activity, error)
	TeacherSnapshot(ctx context.Context, teacherID int64) (*models.ScheduleSnapshot, error)
	RoomSnapshot(ctx context.Context, roomID int64) (*models.ScheduleSnapshot, error)
	RoomIDsByActivity(ctx context.Context, activityID int64) ([]int64, error)
	RoomIDsByActivities(ctx context.Context, activityIDs []int64) ([]int64, error)
	ListRescheduledInWindow(ctx context.Context, from, to time.Time) ([]models.ActivityException, error)
}

type presenceRoomStore interface {
	FindByID(ctx context.Context, id int64) (*models.Room, error)
	ListIDs(ctx context.Context) ([]int64, error)
}

type presenceTeacherStore interface {
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
}

// PresenceService answers "where is this teacher" and "what is happening in
// this room" questions by evaluating schedule snapshots against the
// recurrence engine. It holds no state between calls; every resolution
// reads one consistent snapshot and computes from it.
type PresenceService struct {
	schedule presenceScheduleStore
	rooms    presenceRoomStore
	teachers presenceTeacherStore
	logger   *zap.Logger
	metrics  *MetricsService

	discoveryWindow time.Duration
	now             func() time.Time
}

// NewPresenceService constructs the presence service. metrics may be nil.
func NewPresenceService(schedule presenceScheduleStore, rooms presenceRoomStore, teachers presenceTeacherStore, cfg config.PresenceConfig, metrics *MetricsService, logger *zap.Logger) *PresenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	window := cfg.DiscoveryWindow
	if window <= 0 {
		window = 30 * time.Minute
	}
	return &PresenceService{
		schedule:        schedule,
		rooms:           rooms,
		teachers:        teachers,
		logger:          logger,
		metrics:         metrics,
		discoveryWindow: window,
		now:             time.Now,
	}
}

// ResolveForTeacher computes the set of rooms a teacher can be expected in
// at the instant, under the requested mode. A zero instant means "now".
//
// Habitual mode keeps the rooms of the teacher's active occurrences.
// Irregular mode inverts the answer: the teacher is known to be off their
// pattern, so every room NOT covered by one of their plausibly-running
// activities is returned, degrading to the full catalogue when nothing
// narrows the search.
func (s *PresenceService) ResolveForTeacher(ctx context.Context, teacherID int64, at time.Time, mode models.ResolutionMode) (*models.PresenceResult, error) {
	if teacherID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidID, "teacher id must be a positive integer")
	}
	if mode != models.ModeHabitual && mode != models.ModeIrregular {
		return nil, appErrors.Clone(appErrors.ErrInvalidMode, "resolution mode must be habitual or irregular")
	}
	if at.IsZero() {
		at = s.now()
	}
	at = at.UTC()

	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, wrapStore(err, "could not load teacher")
	}

	started := time.Now()
	var result *models.PresenceResult
	var err error
	if mode == models.ModeIrregular {
		result, err = s.resolveIrregular(ctx, teacherID, at)
	} else {
		result, err = s.resolveHabitual(ctx, teacherID, at)
	}
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveResolution(mode, result.Degraded, time.Since(started))
	return result, nil
}

// ResolveWithFallback applies the two-tier policy: habitual resolution
// first, and only when that yields no rooms, the widened irregular
// resolution. The tier order is part of the observable contract.
func (s *PresenceService) ResolveWithFallback(ctx context.Context, teacherID int64, at time.Time) (*models.PresenceResult, error) {
	habitual, err := s.ResolveForTeacher(ctx, teacherID, at, models.ModeHabitual)
	if err != nil {
		return nil, err
	}
	if len(habitual.Rooms) > 0 {
		return habitual, nil
	}
	s.metrics.RecordFallback()
	return s.ResolveForTeacher(ctx, teacherID, at, models.ModeIrregular)
}

func (s *PresenceService) resolveHabitual(ctx context.Context, teacherID int64, at time.Time) (*models.PresenceResult, error) {
	snap, err := s.schedule.TeacherSnapshot(ctx, teacherID)
	if err != nil {
		return nil, wrapStore(err, "could not load teacher schedule")
	}

	seen := make(map[int64]bool, len(snap.Activities))
	var active []int64
	for _, act := range snap.Activities {
		rule := snap.RuleFor(act.ID)
		excs := s.consistentExceptions(act, rule, snap.ExceptionsFor(act.ID))

		eval, err := occurrence.Evaluate(act, rule, excs, at)
		if err != nil {
			s.logger.Warn("skipping activity with unevaluable schedule",
				zap.Int64("activity_id", act.ID), zap.Error(err))
			continue
		}
		if eval.Verdict != occurrence.NotActive {
			active = append(active, act.ID)
			seen[act.ID] = true
		}
	}

	// Reschedules can surface activities outside the teacher's normal
	// load; union them in regardless of whose pattern they belong to.
	rescheduled, err := s.schedule.ListRescheduledInWindow(ctx, at, at)
	if err != nil {
		return nil, wrapStore(err, "could not load rescheduled activities")
	}
	for _, exc := range rescheduled {
		if !seen[exc.ActivityID] {
			active = append(active, exc.ActivityID)
			seen[exc.ActivityID] = true
		}
	}

	result := &models.PresenceResult{
		TeacherID:  teacherID,
		At:         at,
		Mode:       models.ModeHabitual,
		Activities: active,
	}
	if len(active) == 0 {
		return result, nil
	}

	rooms, err := s.schedule.RoomIDsByActivities(ctx, active)
	if err != nil {
		return nil, wrapStore(err, "could not load rooms for activities")
	}
	result.Rooms = rooms
	return result, nil
}

func (s *PresenceService) resolveIrregular(ctx context.Context, teacherID int64, at time.Time) (*models.PresenceResult, error) {
	snap, err := s.schedule.TeacherSnapshot(ctx, teacherID)
	if err != nil {
		return nil, wrapStore(err, "could not load teacher schedule")
	}

	allRooms, err := s.rooms.ListIDs(ctx)
	if err != nil {
		return nil, wrapStore(err, "could not load room catalogue")
	}

	result := &models.PresenceResult{
		TeacherID: teacherID,
		At:        at,
		Mode:      models.ModeIrregular,
	}

	var active []int64
	for _, act := range snap.Activities {
		covers, err := occurrence.CoversTimeOfDay(act, at)
		if err != nil {
			s.logger.Warn("skipping activity with unreadable time window",
				zap.Int64("activity_id", act.ID), zap.Error(err))
			continue
		}
		if covers {
			active = append(active, act.ID)
		}
	}
	result.Activities = active

	if len(active) == 0 {
		// Nothing narrows the answer; return the whole catalogue.
		result.Rooms = allRooms
		result.Degraded = true
		return result, nil
	}

	occupied, err := s.schedule.RoomIDsByActivities(ctx, active)
	if err != nil {
		return nil, wrapStore(err, "could not load rooms for activities")
	}

	taken := make(map[int64]bool, len(occupied))
	for _, id := range occupied {
		taken[id] = true
	}
	complement := make([]int64, 0, len(allRooms))
	for _, id := range allRooms {
		if !taken[id] {
			complement = append(complement, id)
		}
	}

	if len(complement) == 0 {
		result.Rooms = allRooms
		result.Degraded = true
		return result, nil
	}

	result.Rooms = complement
	return result, nil
}

// RoomsOccupiedBy returns the rooms assigned to an activity. Pure join,
// no time filtering.
func (s *PresenceService) RoomsOccupiedBy(ctx context.Context, activityID int64) ([]int64, error) {
	if activityID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidID, "activity id must be a positive integer")
	}
	if _, err := s.schedule.FindByID(ctx, activityID); err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, wrapStore(err, "could not load activity")
	}
	rooms, err := s.schedule.RoomIDsByActivity(ctx, activityID)
	if err != nil {
		return nil, wrapStore(err, "could not load rooms for activity")
	}
	return rooms, nil
}

// ActivitiesInWindow returns the activities active in a room for any
// instant of [from, to]. Zero bounds default to the configured discovery
// window around now.
func (s *PresenceService) ActivitiesInWindow(ctx context.Context, roomID int64, from, to time.Time) ([]int64, error) {
	if roomID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidID, "room id must be a positive integer")
	}
	if from.IsZero() {
		from = s.now().Add(-s.discoveryWindow)
	}
	if to.IsZero() {
		to = s.now().Add(s.discoveryWindow)
	}
	from, to = from.UTC(), to.UTC()
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimestamp, "window end precedes window start")
	}

	if _, err := s.rooms.FindByID(ctx, roomID); err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, wrapStore(err, "could not load room")
	}

	snap, err := s.schedule.RoomSnapshot(ctx, roomID)
	if err != nil {
		return nil, wrapStore(err, "could not load room schedule")
	}

	var active []int64
	for _, act := range snap.Activities {
		rule := snap.RuleFor(act.ID)
		excs := s.consistentExceptions(act, rule, snap.ExceptionsFor(act.ID))

		ok, err := occurrence.EvaluateWindow(act, rule, excs, from, to)
		if err != nil {
			s.logger.Warn("skipping activity with unevaluable schedule",
				zap.Int64("activity_id", act.ID), zap.Error(err))
			continue
		}
		if ok {
			active = append(active, act.ID)
		}
	}
	return active, nil
}

// consistentExceptions drops exceptions targeting occurrence windows the
// activity's pattern can never produce, logging each as a data-quality
// warning.
func (s *PresenceService) consistentExceptions(act models.Activity, rule *models.RecurrenceRule, excs []models.ActivityException) []models.ActivityException {
	bad := occurrence.InconsistentExceptions(act, rule, excs)
	if len(bad) == 0 {
		return excs
	}

	drop := make(map[int64]bool, len(bad))
	for _, exc := range bad {
		drop[exc.ID] = true
		s.logger.Warn("ignoring exception targeting an impossible occurrence",
			zap.Int64("exception_id", exc.ID),
			zap.Int64("activity_id", act.ID),
			zap.Time("original_start", exc.OriginalStart))
	}

	kept := make([]models.ActivityException, 0, len(excs)-len(bad))
	for _, exc := range excs {
		if !drop[exc.ID] {
			kept = append(kept, exc)
		}
	}
	return kept
}
