package models

import "time"

// AttendanceState reflects which resolution tier produced the room match
// when the attendance was recorded.
type AttendanceState string

const (
	// AttendanceOnSchedule marks a teacher found where the habitual
	// schedule placed them.
	AttendanceOnSchedule AttendanceState = "on_schedule"
	// AttendanceIrregular marks a teacher recorded through the fallback
	// (irregularity) resolution.
	AttendanceIrregular AttendanceState = "irregular"
)

// Attendance records that a teacher was present for an activity in a room.
type Attendance struct {
	ID         int64           `db:"id" json:"id"`
	ActivityID int64           `db:"activity_id" json:"activity_id"`
	TeacherID  int64           `db:"teacher_id" json:"teacher_id"`
	RoomID     int64           `db:"room_id" json:"room_id"`
	State      AttendanceState `db:"state" json:"state"`
	Reason     *string         `db:"reason" json:"reason,omitempty"`
	RecordedAt time.Time       `db:"recorded_at" json:"recorded_at"`
}
