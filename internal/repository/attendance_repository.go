package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/informaticaucm/seguimiento-api/internal/models"
)

// AttendanceRepository persists attendance records produced by the
// presence resolution flow.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Create inserts an attendance record and fills in its generated ID.
func (r *AttendanceRepository) Create(ctx context.Context, att *models.Attendance) error {
	query := `INSERT INTO attendances (activity_id, teacher_id, room_id, state, reason, recorded_at)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.GetContext(ctx, &att.ID, query,
		att.ActivityID, att.TeacherID, att.RoomID, att.State, att.Reason, att.RecordedAt)
}

// FindByID fetches an attendance record.
func (r *AttendanceRepository) FindByID(ctx context.Context, id int64) (*models.Attendance, error) {
	query := `SELECT id, activity_id, teacher_id, room_id, state, reason, recorded_at
        FROM attendances WHERE id = $1`
	var att models.Attendance
	if err := r.db.GetContext(ctx, &att, query, id); err != nil {
		return nil, err
	}
	return &att, nil
}

// UpdateStateReason amends an attendance record's state and reason.
func (r *AttendanceRepository) UpdateStateReason(ctx context.Context, id int64, state models.AttendanceState, reason *string) error {
	query := "UPDATE attendances SET state = $2, reason = $3 WHERE id = $1"
	result, err := r.db.ExecContext(ctx, query, id, state, reason)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByTeacher returns a teacher's attendance records inside a window,
// most recent first.
func (r *AttendanceRepository) ListByTeacher(ctx context.Context, teacherID int64, from, to time.Time) ([]models.Attendance, error) {
	query := `SELECT id, activity_id, teacher_id, room_id, state, reason, recorded_at
        FROM attendances
        WHERE teacher_id = $1 AND recorded_at >= $2 AND recorded_at <= $3
        ORDER BY recorded_at DESC`
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, teacherID, from, to); err != nil {
		return nil, err
	}
	return records, nil
}

// ExistsForOccurrence reports whether the teacher already has a record for
// the activity within the window. Used to keep repeated check-ins
// idempotent at occurrence granularity.
func (r *AttendanceRepository) ExistsForOccurrence(ctx context.Context, teacherID, activityID int64, from, to time.Time) (bool, error) {
	query := `SELECT EXISTS (
        SELECT 1 FROM attendances
        WHERE teacher_id = $1 AND activity_id = $2 AND recorded_at >= $3 AND recorded_at <= $4)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, teacherID, activityID, from, to); err != nil {
		return false, err
	}
	return exists, nil
}
