package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/informaticaucm/seguimiento-api/internal/models"
	appErrors "github.com/informaticaucm/seguimiento-api/pkg/errors"
)

type attendanceRepository interface {
	Create(ctx context.Context, att *models.Attendance) error
	FindByID(ctx context.Context, id int64) (*models.Attendance, error)
	UpdateStateReason(ctx context.Context, id int64, state models.AttendanceState, reason *string) error
	ListByTeacher(ctx context.Context, teacherID int64, from, to time.Time) ([]models.Attendance, error)
	ExistsForOccurrence(ctx context.Context, teacherID, activityID int64, from, to time.Time) (bool, error)
}

type presenceResolver interface {
	ResolveWithFallback(ctx context.Context, teacherID int64, at time.Time) (*models.PresenceResult, error)
}

// CreateAttendanceRequest is the check-in payload.
type CreateAttendanceRequest struct {
	ActivityID int64     `json:"activity_id" validate:"required,gt=0"`
	TeacherID  int64     `json:"teacher_id" validate:"required,gt=0"`
	RoomID     int64     `json:"room_id" validate:"required,gt=0"`
	Reason     *string   `json:"reason,omitempty"`
	At         time.Time `json:"at,omitempty"`
}

// UpdateAttendanceRequest amends state and reason.
type UpdateAttendanceRequest struct {
	State  models.AttendanceState `json:"state" validate:"required,oneof=on_schedule irregular"`
	Reason *string                `json:"reason,omitempty"`
}

// AttendanceService records where teachers were actually found. The state
// of each record reflects which resolution tier matched the room: a room
// the habitual schedule predicted yields on_schedule, anything else is
// irregular.
type AttendanceService struct {
	repo      attendanceRepository
	resolver  presenceResolver
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, resolver presenceResolver, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, resolver: resolver, validator: validate, logger: logger, now: time.Now}
}

// Create records a check-in, deriving the state from the presence
// resolution at the recorded instant. Repeated check-ins for the same
// teacher/activity on the same day are rejected as conflicts.
func (s *AttendanceService) Create(ctx context.Context, req CreateAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	at := req.At
	if at.IsZero() {
		at = s.now()
	}
	at = at.UTC()

	dayStart := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	exists, err := s.repo.ExistsForOccurrence(ctx, req.TeacherID, req.ActivityID, dayStart, dayStart.Add(24*time.Hour-time.Second))
	if err != nil {
		return nil, wrapStore(err, "could not check existing attendance")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "attendance already recorded for this occurrence")
	}

	result, err := s.resolver.ResolveWithFallback(ctx, req.TeacherID, at)
	if err != nil {
		return nil, err
	}

	state := models.AttendanceIrregular
	if result.Mode == models.ModeHabitual && containsID(result.Rooms, req.RoomID) {
		state = models.AttendanceOnSchedule
	}

	att := &models.Attendance{
		ActivityID: req.ActivityID,
		TeacherID:  req.TeacherID,
		RoomID:     req.RoomID,
		State:      state,
		Reason:     req.Reason,
		RecordedAt: at,
	}
	if err := s.repo.Create(ctx, att); err != nil {
		return nil, wrapStore(err, "could not record attendance")
	}

	s.logger.Info("attendance recorded",
		zap.Int64("teacher_id", att.TeacherID),
		zap.Int64("activity_id", att.ActivityID),
		zap.Int64("room_id", att.RoomID),
		zap.String("state", string(att.State)))
	return att, nil
}

// Get returns one attendance record.
func (s *AttendanceService) Get(ctx context.Context, id int64) (*models.Attendance, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidID, "attendance id must be a positive integer")
	}
	att, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance not found")
		}
		return nil, wrapStore(err, "could not load attendance")
	}
	return att, nil
}

// Update amends the state and reason of a record.
func (s *AttendanceService) Update(ctx context.Context, id int64, req UpdateAttendanceRequest) (*models.Attendance, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidID, "attendance id must be a positive integer")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if err := s.repo.UpdateStateReason(ctx, id, req.State, req.Reason); err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance not found")
		}
		return nil, wrapStore(err, "could not update attendance")
	}
	return s.Get(ctx, id)
}

// ListByTeacher returns a teacher's records in a window.
func (s *AttendanceService) ListByTeacher(ctx context.Context, teacherID int64, from, to time.Time) ([]models.Attendance, error) {
	if teacherID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidID, "teacher id must be a positive integer")
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimestamp, "window end precedes window start")
	}
	records, err := s.repo.ListByTeacher(ctx, teacherID, from.UTC(), to.UTC())
	if err != nil {
		return nil, wrapStore(err, "could not list attendances")
	}
	return records, nil
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
