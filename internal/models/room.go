package models

import (
	"fmt"
	"time"
)

// Room is a teaching space. The catalogue is ordered by building, kind,
// number everywhere it is listed.
type Room struct {
	ID        int64     `db:"id" json:"id"`
	Building  string    `db:"building" json:"building"`
	Kind      string    `db:"kind" json:"kind"`
	Number    string    `db:"number" json:"number"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Name returns the display name used by the original catalogue.
func (r Room) Name() string {
	return fmt.Sprintf("%s %s", r.Kind, r.Number)
}
