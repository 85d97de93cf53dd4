package models

import (
	"strings"
	"time"
)

// ResolutionMode selects how the active set for a teacher is computed.
// The caller decides and passes it explicitly; it is never stored in
// session state.
type ResolutionMode string

const (
	// ModeHabitual restricts resolution to occurrences of the teacher's
	// normally assigned activities.
	ModeHabitual ResolutionMode = "habitual"
	// ModeIrregular widens the search to every activity of the teacher
	// whose daily window covers the instant and inverts the room answer.
	ModeIrregular ResolutionMode = "irregular"
)

// ParseResolutionMode validates a mode received at the boundary. Anything
// outside the closed enumeration is rejected.
func ParseResolutionMode(s string) (ResolutionMode, bool) {
	switch ResolutionMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeHabitual:
		return ModeHabitual, true
	case ModeIrregular:
		return ModeIrregular, true
	}
	return "", false
}

// PresenceResult is the outcome of resolving a teacher's whereabouts at an
// instant. Degraded is true when no scheduling information could narrow the
// answer and the full room set was returned.
type PresenceResult struct {
	TeacherID  int64          `json:"teacher_id"`
	At         time.Time      `json:"at"`
	Mode       ResolutionMode `json:"mode"`
	Activities []int64        `json:"activities"`
	Rooms      []int64        `json:"rooms"`
	Degraded   bool           `json:"degraded"`
}
