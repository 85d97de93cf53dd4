package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/informaticaucm/seguimiento-api/internal/models"
)

const activityColumns = `id, start_date, end_date, start_time, end_time, is_all_day, is_recurring, parent_activity_id, responsible_id, created_at, updated_at`

// ActivityRepository reads activity, recurrence and exception records.
// The scheduling source owns writes; this API only evaluates.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// FindByID fetches a single activity.
func (r *ActivityRepository) FindByID(ctx context.Context, id int64) (*models.Activity, error) {
	query := fmt.Sprintf("SELECT %s FROM activities WHERE id = $1", activityColumns)
	var activity models.Activity
	if err := r.db.GetContext(ctx, &activity, query, id); err != nil {
		return nil, err
	}
	return &activity, nil
}

// RuleByID fetches a single recurrence rule.
func (r *ActivityRepository) RuleByID(ctx context.Context, id int64) (*models.RecurrenceRule, error) {
	query := `SELECT id, activity_id, kind, separation, max_occurrences, weekday, week_of_month, day_of_month, month_of_year
        FROM recurrence_rules WHERE id = $1`
	var rule models.RecurrenceRule
	if err := r.db.GetContext(ctx, &rule, query, id); err != nil {
		return nil, err
	}
	return &rule, nil
}

// ExceptionByID fetches a single exception.
func (r *ActivityRepository) ExceptionByID(ctx context.Context, id int64) (*models.ActivityException, error) {
	query := `SELECT id, activity_id, is_cancelled, is_rescheduled, original_start, original_end, new_start, new_end
        FROM activity_exceptions WHERE id = $1`
	var exc models.ActivityException
	if err := r.db.GetContext(ctx, &exc, query, id); err != nil {
		return nil, err
	}
	return &exc, nil
}

// ListRulesByActivity returns recurrence rules owned by an activity.
func (r *ActivityRepository) ListRulesByActivity(ctx context.Context, activityID int64) ([]models.RecurrenceRule, error) {
	query := `SELECT id, activity_id, kind, separation, max_occurrences, weekday, week_of_month, day_of_month, month_of_year
        FROM recurrence_rules WHERE activity_id = $1 ORDER BY id`
	var rules []models.RecurrenceRule
	if err := r.db.SelectContext(ctx, &rules, query, activityID); err != nil {
		return nil, fmt.Errorf("list rules for activity %d: %w", activityID, err)
	}
	return rules, nil
}

// ListExceptionsByActivity returns exceptions attached to an activity.
func (r *ActivityRepository) ListExceptionsByActivity(ctx context.Context, activityID int64) ([]models.ActivityException, error) {
	query := `SELECT id, activity_id, is_cancelled, is_rescheduled, original_start, original_end, new_start, new_end
        FROM activity_exceptions WHERE activity_id = $1 ORDER BY original_start`
	var exceptions []models.ActivityException
	if err := r.db.SelectContext(ctx, &exceptions, query, activityID); err != nil {
		return nil, fmt.Errorf("list exceptions for activity %d: %w", activityID, err)
	}
	return exceptions, nil
}

// RoomIDsByActivity returns the rooms an activity is assigned to.
func (r *ActivityRepository) RoomIDsByActivity(ctx context.Context, activityID int64) ([]int64, error) {
	query := "SELECT room_id FROM activity_rooms WHERE activity_id = $1 ORDER BY room_id"
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, activityID); err != nil {
		return nil, fmt.Errorf("rooms for activity %d: %w", activityID, err)
	}
	return ids, nil
}

// RoomIDsByActivities returns the union of rooms assigned to any of the
// activities, deduplicated.
func (r *ActivityRepository) RoomIDsByActivities(ctx context.Context, activityIDs []int64) ([]int64, error) {
	if len(activityIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In("SELECT DISTINCT room_id FROM activity_rooms WHERE activity_id IN (?) ORDER BY room_id", activityIDs)
	if err != nil {
		return nil, fmt.Errorf("build room lookup: %w", err)
	}
	query = r.db.Rebind(query)

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("rooms for activities: %w", err)
	}
	return ids, nil
}

// TeacherSnapshot loads every activity assigned to the teacher together
// with all rules and exceptions, inside one repeatable-read transaction so
// the three reads observe the same committed state.
func (r *ActivityRepository) TeacherSnapshot(ctx context.Context, teacherID int64) (*models.ScheduleSnapshot, error) {
	query := fmt.Sprintf(`SELECT %s FROM activities
        WHERE id IN (SELECT activity_id FROM activity_teachers WHERE teacher_id = $1)
        ORDER BY id`, activityColumns)

	return r.snapshot(ctx, query, teacherID)
}

// RoomSnapshot loads every activity assigned to the room with rules and
// exceptions, using the same consistency guarantees as TeacherSnapshot.
func (r *ActivityRepository) RoomSnapshot(ctx context.Context, roomID int64) (*models.ScheduleSnapshot, error) {
	query := fmt.Sprintf(`SELECT %s FROM activities
        WHERE id IN (SELECT activity_id FROM activity_rooms WHERE room_id = $1)
        ORDER BY id`, activityColumns)

	return r.snapshot(ctx, query, roomID)
}

func (r *ActivityRepository) snapshot(ctx context.Context, activityQuery string, arg interface{}) (*models.ScheduleSnapshot, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var activities []models.Activity
	if err := tx.SelectContext(ctx, &activities, activityQuery, arg); err != nil {
		return nil, fmt.Errorf("snapshot activities: %w", err)
	}

	snap := &models.ScheduleSnapshot{
		Activities: activities,
		Rules:      make(map[int64]*models.RecurrenceRule, len(activities)),
		Exceptions: make(map[int64][]models.ActivityException, len(activities)),
	}
	if len(activities) == 0 {
		return snap, tx.Commit()
	}

	ids := make([]int64, 0, len(activities))
	for _, a := range activities {
		ids = append(ids, a.ID)
	}

	ruleQuery, args, err := sqlx.In(`SELECT id, activity_id, kind, separation, max_occurrences, weekday, week_of_month, day_of_month, month_of_year
        FROM recurrence_rules WHERE activity_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("build rule lookup: %w", err)
	}
	var rules []models.RecurrenceRule
	if err := tx.SelectContext(ctx, &rules, tx.Rebind(ruleQuery), args...); err != nil {
		return nil, fmt.Errorf("snapshot rules: %w", err)
	}
	for i := range rules {
		rule := rules[i]
		if _, exists := snap.Rules[rule.ActivityID]; !exists {
			snap.Rules[rule.ActivityID] = &rule
		}
	}

	excQuery, args, err := sqlx.In(`SELECT id, activity_id, is_cancelled, is_rescheduled, original_start, original_end, new_start, new_end
        FROM activity_exceptions WHERE activity_id IN (?) ORDER BY original_start`, ids)
	if err != nil {
		return nil, fmt.Errorf("build exception lookup: %w", err)
	}
	var exceptions []models.ActivityException
	if err := tx.SelectContext(ctx, &exceptions, tx.Rebind(excQuery), args...); err != nil {
		return nil, fmt.Errorf("snapshot exceptions: %w", err)
	}
	for _, exc := range exceptions {
		snap.Exceptions[exc.ActivityID] = append(snap.Exceptions[exc.ActivityID], exc)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit snapshot: %w", err)
	}
	return snap, nil
}

// ListRescheduledInWindow returns activities, from any teacher, that have a
// non-cancelled rescheduled exception whose new window overlaps
// [from, to]. The originals stay untouched; only the exception decides.
func (r *ActivityRepository) ListRescheduledInWindow(ctx context.Context, from, to time.Time) ([]models.ActivityException, error) {
	query := `SELECT id, activity_id, is_cancelled, is_rescheduled, original_start, original_end, new_start, new_end
        FROM activity_exceptions
        WHERE is_rescheduled = TRUE AND is_cancelled = FALSE
          AND new_start IS NOT NULL AND new_end IS NOT NULL
          AND new_start <= $2 AND new_end >= $1
        ORDER BY new_start`
	var exceptions []models.ActivityException
	if err := r.db.SelectContext(ctx, &exceptions, query, from, to); err != nil {
		return nil, fmt.Errorf("rescheduled in window: %w", err)
	}
	return exceptions, nil
}

// TeacherIDsByActivity returns the teachers assigned to an activity.
func (r *ActivityRepository) TeacherIDsByActivity(ctx context.Context, activityID int64) ([]int64, error) {
	query := "SELECT teacher_id FROM activity_teachers WHERE activity_id = $1 ORDER BY teacher_id"
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, activityID); err != nil {
		return nil, fmt.Errorf("teachers for activity %d: %w", activityID, err)
	}
	return ids, nil
}
