package class

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/ebdplacar/backend/core"
	"github.com/ebdplacar/backend/core/user"
)

// Class is a named group of students ("turma") taught by zero or more teachers.
type Class struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// loaded on demand
	Teachers []user.User `json:"teachers,omitempty"`
	Students []Student   `json:"students,omitempty"`
}

// Student belongs to exactly one Class. UserID links the student to a login
// identity when they have one. TotalPoints is only ever written by total
// recalculation, never by callers.
type Student struct {
	ID          string      `json:"id"`
	UserID      null.String `json:"user_id"`
	FullName    string      `json:"full_name"`
	ClassID     string      `json:"class_id"`
	TotalPoints int         `json:"total_points"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (nc *NewClass) Validate(ctx context.Context, svc *Service) error {
	nc.Name = core.CleanString(nc.Name)

	if err := core.Validate.Struct(nc); err != nil {
		return core.TranslateError(err)
	}
	return svc.CheckNameUniqueness(ctx, nc.Name)
}

// UpdateClass defines what information may be provided to modify an existing Class.
type UpdateClass struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (uc *UpdateClass) Validate(ctx context.Context, origCls Class, svc *Service) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = origCls.Name
	}

	if err := core.Validate.Struct(uc); err != nil {
		return core.TranslateError(err)
	}
	return svc.CheckNameUniqueness(ctx, uc.Name, origCls)
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	FullName string `json:"full_name" validate:"required,max=255"`
	ClassID  string `json:"class_id" validate:"required"`
	UserID   string `json:"user_id" validate:"omitempty,uuid4"`
}

func (ns *NewStudent) Validate() error {
	ns.FullName = core.CleanString(ns.FullName)

	if err := core.Validate.Struct(ns); err != nil {
		return core.TranslateError(err)
	}
	return nil
}

// UpdateStudent defines what information may be provided to modify an existing
// Student. An empty field keeps the current value.
type UpdateStudent struct {
	FullName string `json:"full_name" validate:"omitempty,max=255"`
	ClassID  string `json:"class_id"`
}

func (us *UpdateStudent) Validate(origStd Student) error {
	if name := core.CleanString(us.FullName); name != "" {
		us.FullName = name
	} else {
		us.FullName = origStd.FullName
	}
	if us.ClassID == "" {
		us.ClassID = origStd.ClassID
	}

	if err := core.Validate.Struct(us); err != nil {
		return core.TranslateError(err)
	}
	return nil
}
