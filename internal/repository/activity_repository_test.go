package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/informaticaucm/seguimiento-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func activityRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "start_date", "end_date", "start_time", "end_time",
		"is_all_day", "is_recurring", "parent_activity_id", "responsible_id",
		"created_at", "updated_at",
	})
}

func TestActivityRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows := activityRows().
		AddRow(int64(7), start, nil, "09:00", "10:00", false, true, nil, int64(3), start, start)
	mock.ExpectQuery("SELECT id, start_date, .+ FROM activities WHERE id = \\$1").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	activity, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, int64(7), activity.ID)
	require.True(t, activity.IsRecurring)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectQuery("SELECT id, start_date, .+ FROM activities WHERE id = \\$1").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 99)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryListRulesByActivity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "activity_id", "kind", "separation", "max_occurrences",
		"weekday", "week_of_month", "day_of_month", "month_of_year",
	}).AddRow(int64(1), int64(7), "weekly", 2, nil, 1, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM recurrence_rules WHERE activity_id = $1 ORDER BY id")).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	rules, err := repo.ListRulesByActivity(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	require.Equal(t, models.RecurrenceWeekly, rules[0].Kind)
	require.Equal(t, 2, rules[0].Interval)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryRoomIDsByActivities(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	rows := sqlmock.NewRows([]string{"room_id"}).AddRow(int64(2)).AddRow(int64(5))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT room_id FROM activity_rooms WHERE activity_id IN ($1, $2) ORDER BY room_id")).
		WithArgs(int64(7), int64(9)).
		WillReturnRows(rows)

	ids, err := repo.RoomIDsByActivities(context.Background(), []int64{7, 9})
	require.NoError(t, err)
	require.Equal(t, []int64{2, 5}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryRoomIDsByActivitiesEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	ids, err := repo.RoomIDsByActivities(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryTeacherSnapshot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, start_date, .+ FROM activities\\s+WHERE id IN \\(SELECT activity_id FROM activity_teachers WHERE teacher_id = \\$1\\)").
		WithArgs(int64(3)).
		WillReturnRows(activityRows().
			AddRow(int64(7), start, nil, "09:00", "10:00", false, true, nil, int64(3), start, start))
	mock.ExpectQuery("FROM recurrence_rules WHERE activity_id IN \\(\\$1\\)").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "activity_id", "kind", "separation", "max_occurrences",
			"weekday", "week_of_month", "day_of_month", "month_of_year",
		}).AddRow(int64(1), int64(7), "weekly", 1, nil, 1, nil, nil, nil))
	mock.ExpectQuery("FROM activity_exceptions WHERE activity_id IN \\(\\$1\\)").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "activity_id", "is_cancelled", "is_rescheduled",
			"original_start", "original_end", "new_start", "new_end",
		}))
	mock.ExpectCommit()

	snap, err := repo.TeacherSnapshot(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, snap.Activities, 1)
	require.NotNil(t, snap.RuleFor(7))
	require.Empty(t, snap.ExceptionsFor(7))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryTeacherSnapshotEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM activities").
		WithArgs(int64(3)).
		WillReturnRows(activityRows())
	mock.ExpectCommit()

	snap, err := repo.TeacherSnapshot(context.Background(), 3)
	require.NoError(t, err)
	require.Empty(t, snap.Activities)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryListRescheduledInWindow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	from := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)
	newStart := from.Add(15 * time.Minute)
	newEnd := from.Add(45 * time.Minute)

	rows := sqlmock.NewRows([]string{
		"id", "activity_id", "is_cancelled", "is_rescheduled",
		"original_start", "original_end", "new_start", "new_end",
	}).AddRow(int64(4), int64(7), false, true, from.AddDate(0, 0, -1), to.AddDate(0, 0, -1), newStart, newEnd)
	mock.ExpectQuery("FROM activity_exceptions\\s+WHERE is_rescheduled = TRUE AND is_cancelled = FALSE").
		WithArgs(from, to).
		WillReturnRows(rows)

	exceptions, err := repo.ListRescheduledInWindow(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, exceptions, 1)
	require.Equal(t, int64(7), exceptions[0].ActivityID)
	require.NoError(t, mock.ExpectationsWereMet())
}
