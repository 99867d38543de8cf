package attendance

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Session is one dated occurrence of a class meeting ("chamada"): the unit
// over which attendance is recorded. A class never has two sessions on the
// same date.
type Session struct {
	ID      string    `json:"id"`
	ClassID string    `json:"class_id"`
	Date    time.Time `json:"date"` // day granularity, UTC midnight
	// CreatedBy is stamped once on creation and kept when the creating user is
	// later deleted.
	CreatedBy null.String `json:"created_by"`
}

// StudentChecklist holds the per-session criteria a student can score on.
// Each checked item is worth exactly one point.
type StudentChecklist struct {
	Presence   bool `json:"presence"`
	Bible      bool `json:"bible"`
	Scripture  bool `json:"scripture"`
	Guest      bool `json:"guest"`
	Offering   bool `json:"offering"`
	Activities bool `json:"activities"`
	Magazine   bool `json:"magazine"`
}

// Points counts the checked items.
func (c StudentChecklist) Points() int {
	var pts int
	for _, checked := range []bool{c.Presence, c.Bible, c.Scripture, c.Guest, c.Offering, c.Activities, c.Magazine} {
		if checked {
			pts++
		}
	}
	return pts
}

// TeacherChecklist is the teacher variant: no scripture, no activities.
type TeacherChecklist struct {
	Presence bool `json:"presence"`
	Bible    bool `json:"bible"`
	Magazine bool `json:"magazine"`
	Offering bool `json:"offering"`
	Guest    bool `json:"guest"`
}

func (c TeacherChecklist) Points() int {
	var pts int
	for _, checked := range []bool{c.Presence, c.Bible, c.Magazine, c.Offering, c.Guest} {
		if checked {
			pts++
		}
	}
	return pts
}

// StudentRecord is one student's checklist outcome for one session.
// PointsEarned is derived from the checklist on every save, never set by
// callers.
type StudentRecord struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	StudentID string `json:"student_id"`
	StudentChecklist
	PointsEarned int `json:"points_earned"`
}

// TeacherRecord is one teacher's checklist outcome for one session.
type TeacherRecord struct {
	ID               string `json:"id"`
	SessionID        string `json:"session_id"`
	TeacherProfileID string `json:"teacher_profile_id"`
	TeacherChecklist
	PointsEarned int `json:"points_earned"`
}
