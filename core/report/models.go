package report

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/ebdplacar/backend/core/attendance"
	"github.com/ebdplacar/backend/core/class"
	"github.com/ebdplacar/backend/core/user"
)

// Window is an optional inclusive date range applied to the session date of
// the underlying records. An absent bound leaves that side unbounded.
type Window struct {
	From null.Time `json:"from"`
	To   null.Time `json:"to"`
}

func (w Window) IsZero() bool { return !w.From.Valid && !w.To.Valid }

// Contains reports whether `date` falls inside the window.
func (w Window) Contains(date time.Time) bool {
	if w.From.Valid && date.Before(w.From.Time) {
		return false
	}
	if w.To.Valid && date.After(w.To.Time) {
		return false
	}
	return true
}

// Between builds a Window from optional bounds; a zero time leaves the bound open.
func Between(from, to time.Time) Window {
	var w Window
	if !from.IsZero() {
		w.From.SetValid(from)
	}
	if !to.IsZero() {
		w.To.SetValid(to)
	}
	return w
}

type RankedStudent struct {
	StudentID string `json:"student_id" db:"student_id"`
	FullName  string `json:"full_name" db:"full_name"`
	ClassID   string `json:"class_id" db:"class_id"`
	Points    int    `json:"points" db:"points"`
}

type RankedClass struct {
	ClassID string  `json:"class_id" db:"class_id"`
	Name    string  `json:"name" db:"name"`
	Average float64 `json:"average" db:"average"`
}

type RankedTeacher struct {
	ProfileID string `json:"profile_id" db:"profile_id"`
	UserID    string `json:"user_id" db:"user_id"`
	Name      string `json:"name" db:"name"`
	Points    int    `json:"points" db:"points"`
}

// StudentReportEntry pairs a record with its session date for display ordering.
type StudentReportEntry struct {
	attendance.StudentRecord
	Date time.Time `json:"date" db:"date"`
}

type TeacherReportEntry struct {
	attendance.TeacherRecord
	Date time.Time `json:"date" db:"date"`
}

// StudentReport is one student's record history. TotalPoints is the cached
// lifetime total, deliberately not window-limited.
type StudentReport struct {
	Student      class.Student        `json:"student"`
	Entries      []StudentReportEntry `json:"entries"` // session date descending
	PresentCount int                  `json:"present_count"`
	AbsentCount  int                  `json:"absent_count"`
	TotalPoints  int                  `json:"total_points"`
}

type TeacherReport struct {
	Profile      user.TeacherProfile  `json:"profile"`
	User         user.User            `json:"user"`
	Entries      []TeacherReportEntry `json:"entries"` // session date descending
	PresentCount int                  `json:"present_count"`
	AbsentCount  int                  `json:"absent_count"`
	TotalPoints  int                  `json:"total_points"`
}
