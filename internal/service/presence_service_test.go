package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/informaticaucm/seguimiento-api/internal/models"
	"github.com/informaticaucm/seguimiento-api/pkg/config"
	appErrors "github.com/informaticaucm/seguimiento-api/pkg/errors"
)

type mockScheduleStore struct {
	activities      map[int64]models.Activity
	teacherSnaps    map[int64]*models.ScheduleSnapshot
	roomSnaps       map[int64]*models.ScheduleSnapshot
	activityRooms   map[int64][]int64
	rescheduled     []models.ActivityException
	snapshotErr     error
	rescheduledErr  error
	snapshotCalls   int
	rescheduledFrom time.Time
}

func (m *mockScheduleStore) FindByID(ctx context.Context, id int64) (*models.Activity, error) {
	if act, ok := m.activities[id]; ok {
		return &act, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockScheduleStore) TeacherSnapshot(ctx context.Context, teacherID int64) (*models.ScheduleSnapshot, error) {
	m.snapshotCalls++
	if m.snapshotErr != nil {
		return nil, m.snapshotErr
	}
	if snap, ok := m.teacherSnaps[teacherID]; ok {
		return snap, nil
	}
	return &models.ScheduleSnapshot{}, nil
}

func (m *mockScheduleStore) RoomSnapshot(ctx context.Context, roomID int64) (*models.ScheduleSnapshot, error) {
	if m.snapshotErr != nil {
		return nil, m.snapshotErr
	}
	if snap, ok := m.roomSnaps[roomID]; ok {
		return snap, nil
	}
	return &models.ScheduleSnapshot{}, nil
}

func (m *mockScheduleStore) RoomIDsByActivity(ctx context.Context, activityID int64) ([]int64, error) {
	return m.activityRooms[activityID], nil
}

func (m *mockScheduleStore) RoomIDsByActivities(ctx context.Context, activityIDs []int64) ([]int64, error) {
	seen := map[int64]bool{}
	var rooms []int64
	for _, id := range activityIDs {
		for _, room := range m.activityRooms[id] {
			if !seen[room] {
				seen[room] = true
				rooms = append(rooms, room)
			}
		}
	}
	return rooms, nil
}

func (m *mockScheduleStore) ListRescheduledInWindow(ctx context.Context, from, to time.Time) ([]models.ActivityException, error) {
	m.rescheduledFrom = from
	if m.rescheduledErr != nil {
		return nil, m.rescheduledErr
	}
	return m.rescheduled, nil
}

type mockRoomStore struct {
	rooms []int64
	err   error
}

func (m *mockRoomStore) FindByID(ctx context.Context, id int64) (*models.Room, error) {
	for _, roomID := range m.rooms {
		if roomID == id {
			return &models.Room{ID: id}, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockRoomStore) ListIDs(ctx context.Context) ([]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rooms, nil
}

type mockTeacherStore struct {
	teachers map[int64]models.Teacher
}

func (m *mockTeacherStore) FindByID(ctx context.Context, id int64) (*models.Teacher, error) {
	if teacher, ok := m.teachers[id]; ok {
		return &teacher, nil
	}
	return nil, sql.ErrNoRows
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

// mondaySeminar repeats every Monday 09:00-10:00 starting 2024-01-01.
func mondaySeminar(id, teacherID int64) (models.Activity, *models.RecurrenceRule) {
	act := models.Activity{
		ID:            id,
		StartDate:     time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		StartTime:     strPtr("09:00"),
		EndTime:       strPtr("10:00"),
		IsRecurring:   true,
		ResponsibleID: teacherID,
	}
	rule := &models.RecurrenceRule{
		ID:         id,
		ActivityID: id,
		Kind:       models.RecurrenceWeekly,
		Interval:   1,
		Weekday:    intPtr(1),
	}
	return act, rule
}

func newPresenceFixture(teacherID int64) (*mockScheduleStore, *mockRoomStore, *mockTeacherStore) {
	schedule := &mockScheduleStore{
		activities:    map[int64]models.Activity{},
		teacherSnaps:  map[int64]*models.ScheduleSnapshot{},
		roomSnaps:     map[int64]*models.ScheduleSnapshot{},
		activityRooms: map[int64][]int64{},
	}
	rooms := &mockRoomStore{rooms: []int64{1, 2, 3, 4}}
	teachers := &mockTeacherStore{teachers: map[int64]models.Teacher{
		teacherID: {ID: teacherID, FullName: "Ana Ruiz", Active: true},
	}}
	return schedule, rooms, teachers
}

func TestPresenceHabitualActiveActivity(t *testing.T) {
	schedule, rooms, teachers := newPresenceFixture(3)
	act, rule := mondaySeminar(7, 3)
	schedule.teacherSnaps[3] = &models.ScheduleSnapshot{
		Activities: []models.Activity{act},
		Rules:      map[int64]*models.RecurrenceRule{7: rule},
	}
	schedule.activityRooms[7] = []int64{2}

	svc := NewPresenceService(schedule, rooms, teachers, config.PresenceConfig{}, nil, nil)
	at := time.Date(2024, time.January, 8, 9, 30, 0, 0, time.UTC)

	result, err := svc.ResolveForTeacher(context.Background(), 3, at, models.ModeHabitual)
	require.NoError(t, err)
	assert.Equal(t, models.ModeHabitual, result.Mode)
	assert.Equal(t, []int64{7}, result.Activities)
	assert.Equal(t, []int64{2}, result.Rooms)
	assert.False(t, result.Degraded)
}

func TestPresenceHabitualEmptyOutsidePattern(t *testing.T) {
	schedule, rooms, teachers := newPresenceFixture(3)
	act, rule := mondaySeminar(7, 3)
	schedule.teacherSnaps[3] = &models.ScheduleSnapshot{
		Activities: []models.Activity{act},
		Rules:      map[int64]*models.RecurrenceRule{7: rule},
	}

	svc := NewPresenceService(schedule, rooms, teachers, config.PresenceConfig{}, nil, nil)
	tuesday := time.Date(2024, time.January, 9, 9, 30, 0, 0, time.UTC)

	result, err := svc.ResolveForTeacher(context.Background(), 3, tuesday, models.ModeHabitual)
	require.NoError(t, err)
	assert.Empty(t, result.Activities)
	assert.Empty(t, result.Rooms)
	assert.False(t, result.Degraded)
}

func TestPresenceHabitualUnionsReschedules(t *testing.T) {
	schedule, rooms, teachers := newPresenceFixture(3)
	schedule.teacherSnaps[3] = &models.ScheduleSnapshot{}

	at := time.Date(2024, time.January, 10, 16, 30, 0, 0, time.UTC)
	newStart := at.Add(-30 * time.Minute)
	newEnd := at.Add(30 * time.Minute)
	schedule.rescheduled = []models.ActivityException{{
		ID:            5,
		ActivityID:    9,
		IsRescheduled: true,
		NewStart:      &newStart,
		NewEnd:        &newEnd,
	}}
	schedule.activityRooms[9] = []int64{4}

	svc := NewPresenceService(schedule, rooms, teachers, config.PresenceConfig{}, nil, nil)
	result, err := svc.ResolveForTeacher(context.Background(), 3, at, models.ModeHabitual)
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, result.Activities)
	assert.Equal(t, []int64{4}, result.Rooms)
}

func TestPresenceIrregularComplement(t *testing.T) {
	schedule, rooms, teachers := newPresenceFixture(3)
	act, rule := mondaySeminar(7, 3)
	schedule.teacherSnaps[3] = &models.ScheduleSnapshot{
		Activities: []models.Activity{act},
		Rules:      map[int64]*models.RecurrenceRule{7: rule},
	}
	schedule.activityRooms[7] = []int64{2}

	svc := NewPresenceService(schedule, rooms, teachers, config.PresenceConfig{}, nil, nil)
	// Tuesday: the pattern does not match, but the daily 09:00-10:00
	// window covers the instant, so the activity still narrows the
	// irregular answer.
	at := time.Date(2024, time.January, 9, 9, 30, 0, 0, time.UTC)

	result, err := svc.ResolveForTeacher(context.Background(), 3, at, models.ModeIrregular)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, result.Activities)
	assert.Equal(t, []int64{1, 3, 4}, result.Rooms)
	assert.False(t, result.Degraded)
}

func TestPresenceIrregularNoActivitiesDegrades(t *testing.T) {
	schedule, rooms, teachers := newPresenceFixture(3)
	schedule.teacherSnaps[3] = &models.ScheduleSnapshot{}

	svc := NewPresenceService(schedule, rooms, teachers, config.PresenceConfig{}, nil, nil)
	at := time.Date(2024, time.January, 9, 9, 30, 0, 0, time.UTC)

	result, err := svc.ResolveForTeacher(context.Background(), 3, at, models.ModeIrregular)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, result.Rooms)
	assert.True(t, result.Degraded)
}

func TestPresenceIrregularOutsideAllWindowsDegrades(t *testing.T) {
	schedule, rooms, teachers := newPresenceFixture(3)
	act, rule := mondaySeminar(7, 3)
	schedule.teacherSnaps[3] = &models.ScheduleSnapshot{
		Activities: []models.Activity{act},
		Rules:      map[int64]*models.RecurrenceRule{7: rule},
	}

	svc := NewPresenceService(schedule, rooms, teachers, config.PresenceConfig{}, nil, nil)
	night := time.Date(2024, time.January, 9, 23, 0, 0, 0, time.UTC)

	result, err := svc.ResolveForTeacher(context.Background(), 3, night, models.ModeIrregular)
	require.NoError(t, err)
	assert.Empty(t, result.Activities)
	assert.Equal(t, []int64{1, 2, 3, 4}, result.Rooms)
	assert.True(t, result.Degraded)
}

func TestPresenceFallbackHabitualThenIrregular(t *testing.T) {
	schedule, rooms, teachers := newPresenceFixture(3)
	schedule.teacherSnaps[3] = &models.ScheduleSnapshot{}

	svc := NewPresenceService(schedule, rooms, teachers, config.PresenceConfig{}, nil, nil)
	at := time.Date(2024, time.January, 9, 9, 30, 0, 0, time.UTC)

	result, err := svc.ResolveWithFallback(context.Background(), 3, at)
	require.NoError(t, err)
	assert.Equal(t, models.ModeIrregular, result.Mode)
	assert.Equal(t, []int64{1, 2, 3, 4}, result.Rooms)
	assert.True(t, result.Degraded)
}

func TestPresenceFallbackStopsAtHabitual(t *testing.T) {
	schedule, rooms, teachers := newPresenceFixture(3)
	act, rule := mondaySeminar(7, 3)
	schedule.teacherSnaps[3] = &models.ScheduleSnapshot{
		Activities: []models.Activity{act},
		Rules:      map[int64]*models.RecurrenceRule{7: rule},
	}
	schedule.activityRooms[7] = []int64{2}

	svc := NewPresenceService(schedule, rooms, teachers, config.PresenceConfig{}, nil, nil)
	at := time.Date(2024, time.January, 8, 9, 30, 0, 0, time.UTC)

	result, err := svc.ResolveWithFallback(context.Background(), 3, at)
	require.NoError(t, err)
	assert.Equal(t, models.ModeHabitual, result.Mode)
	assert.Equal(t, []int64{2}, result.Rooms)
}

func TestPresenceRejectsInvalidInput(t *testing.T) {
	schedule, rooms, teachers := newPresenceFixture(3)
	svc := NewPresenceService(schedule, rooms, teachers, config.PresenceConfig{}, nil, nil)
	at := time.Date(2024, time.January, 8, 9, 30, 0, 0, time.UTC)

	_, err := svc.ResolveForTeacher(context.Background(), 0, at, models.ModeHabitual)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidID.Code, appErr.Code)
	assert.Zero(t, schedule.snapshotCalls)

	_, err = svc.ResolveForTeacher(context.Background(), 3, at, models.ResolutionMode("weekend"))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidMode.Code, appErr.Code)

	_, err = svc.ResolveForTeacher(context.Background(), 99, at, models.ModeHabitual)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestPresenceStoreFailureNotMaskedAsEmpty(t *testing.T) {
	schedule, rooms, teachers := newPresenceFixture(3)
	schedule.snapshotErr = errors.New("connection refused")

	svc := NewPresenceService(schedule, rooms, teachers, config.PresenceConfig{}, nil, nil)
	at := time.Date(2024, time.January, 8, 9, 30, 0, 0, time.UTC)

	result, err := svc.ResolveForTeacher(context.Background(), 3, at, models.ModeHabitual)
	require.Nil(t, result)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrStoreUnavailable.Code, appErr.Code)
}

func TestRoomsOccupiedBy(t *testing.T) {
	schedule, rooms, teachers := newPresenceFixture(3)
	act, _ := mondaySeminar(7, 3)
	schedule.activities = map[int64]models.Activity{7: act}
	schedule.activityRooms[7] = []int64{2, 3}

	svc := NewPresenceService(schedule, rooms, teachers, config.PresenceConfig{}, nil, nil)

	ids, err := svc.RoomsOccupiedBy(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids)

	_, err = svc.RoomsOccupiedBy(context.Background(), 42)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)

	_, err = svc.RoomsOccupiedBy(context.Background(), -1)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidID.Code, appErr.Code)
}

func TestActivitiesInWindow(t *testing.T) {
	schedule, rooms, teachers := newPresenceFixture(3)
	act, rule := mondaySeminar(7, 3)
	schedule.roomSnaps[2] = &models.ScheduleSnapshot{
		Activities: []models.Activity{act},
		Rules:      map[int64]*models.RecurrenceRule{7: rule},
	}

	svc := NewPresenceService(schedule, rooms, teachers, config.PresenceConfig{}, nil, nil)

	from := time.Date(2024, time.January, 8, 8, 45, 0, 0, time.UTC)
	ids, err := svc.ActivitiesInWindow(context.Background(), 2, from, from.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids)

	// Sunday afternoon: nothing scheduled.
	sunday := time.Date(2024, time.January, 7, 15, 0, 0, 0, time.UTC)
	ids, err = svc.ActivitiesInWindow(context.Background(), 2, sunday, sunday.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestActivitiesInWindowDefaultsAroundNow(t *testing.T) {
	schedule, rooms, teachers := newPresenceFixture(3)
	act, rule := mondaySeminar(7, 3)
	schedule.roomSnaps[2] = &models.ScheduleSnapshot{
		Activities: []models.Activity{act},
		Rules:      map[int64]*models.RecurrenceRule{7: rule},
	}

	svc := NewPresenceService(schedule, rooms, teachers, config.PresenceConfig{DiscoveryWindow: 30 * time.Minute}, nil, nil)
	svc.now = func() time.Time {
		// 08:45 Monday: the seminar starts 15 minutes into the window.
		return time.Date(2024, time.January, 8, 8, 45, 0, 0, time.UTC)
	}

	ids, err := svc.ActivitiesInWindow(context.Background(), 2, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids)
}

func TestActivitiesInWindowInvalidBounds(t *testing.T) {
	schedule, rooms, teachers := newPresenceFixture(3)
	svc := NewPresenceService(schedule, rooms, teachers, config.PresenceConfig{}, nil, nil)

	from := time.Date(2024, time.January, 8, 10, 0, 0, 0, time.UTC)
	_, err := svc.ActivitiesInWindow(context.Background(), 2, from, from.Add(-time.Hour))
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidTimestamp.Code, appErr.Code)
}
