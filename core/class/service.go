package class

import (
	"context"
	"errors"
	"time"

	wrap "github.com/pkg/errors"

	"github.com/ebdplacar/backend/core"
	"github.com/ebdplacar/backend/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("class not found")
	ErrNameExists      = errors.New("a class with this name already exists")
	ErrStudentNotFound = errors.New("student not found")
)

type Repository interface {
	CheckNameUniqueness(ctx context.Context, name string, excludedClasses ...Class) error
	CreateClass(ctx context.Context, cls Class) (Class, error)
	GetClass(ctx context.Context, id string) (Class, error)
	QueryClasses(ctx context.Context, ordering ...core.DBOrdering) ([]Class, error)
	UpdateClass(ctx context.Context, cls Class) (Class, error)
	DeleteClassesByID(ctx context.Context, ids ...string) (int, error)

	AssignTeacher(ctx context.Context, classID, userID string) error
	UnassignTeacher(ctx context.Context, classID, userID string) error
	QueryClassTeachers(ctx context.Context, classID string) ([]user.User, error)
	QueryTeacherClassIDs(ctx context.Context, userID string) ([]string, error)

	CreateStudent(ctx context.Context, std Student) (Student, error)
	GetStudent(ctx context.Context, id string) (Student, error)
	GetStudentByUserID(ctx context.Context, userID string) (Student, error)
	QueryStudentsByClass(ctx context.Context, classID string, ordering ...core.DBOrdering) ([]Student, error)
	UpdateStudent(ctx context.Context, std Student) (Student, error)
	DeleteStudentsByID(ctx context.Context, ids ...string) (int, error)
}

// TeacherTotals is the slice of the attendance service the class service needs
// to keep teacher scores consistent across class deletion.
type TeacherTotals interface {
	TeacherProfileIDsForClass(ctx context.Context, classID string) ([]string, error)
	RecalculateTeacherTotal(ctx context.Context, profileID string) error
}

type Service struct {
	repo   Repository
	totals TeacherTotals
	log    core.Logger
}

func NewService(repo Repository, totals TeacherTotals, log core.Logger) *Service {
	return &Service{repo: repo, totals: totals, log: log}
}

// CheckNameUniqueness maps the repo uniqueness error to a per-field validation error.
func (svc *Service) CheckNameUniqueness(ctx context.Context, name string, exclClasses ...Class) error {
	if err := svc.repo.CheckNameUniqueness(ctx, name, exclClasses...); err != nil {
		if err == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	return svc.repo.CreateClass(ctx, Class{Name: nc.Name})
}

// Get returns the class with its assigned teachers and enrolled students loaded.
func (svc *Service) Get(ctx context.Context, id string) (Class, error) {
	cls, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if cls.Teachers, err = svc.repo.QueryClassTeachers(ctx, cls.ID); err != nil {
		return Class{}, err
	}
	if cls.Students, err = svc.Students(ctx, cls.ID); err != nil {
		return Class{}, err
	}
	return cls, nil
}

func (svc *Service) Query(ctx context.Context) ([]Class, error) {
	return svc.repo.QueryClasses(ctx, core.DBOrdering{Field: "name", Ascending: true})
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	return svc.repo.UpdateClass(ctx, Class{ID: id, Name: uc.Name})
}

// Delete removes classes. Sessions and students cascade with them; teacher
// records held by the deleted sessions cascade too, so the affected teacher
// profiles are snapshotted up front and their totals recomputed afterwards.
func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	affected := make(map[string]struct{})
	for _, id := range ids {
		profileIDs, err := svc.totals.TeacherProfileIDsForClass(ctx, id)
		if err != nil {
			return err
		}
		for _, pid := range profileIDs {
			affected[pid] = struct{}{}
		}
	}

	if _, err := svc.repo.DeleteClassesByID(ctx, ids...); err != nil {
		return err
	}

	var firstErr error
	for pid := range affected {
		if err := svc.totals.RecalculateTeacherTotal(ctx, pid); err != nil {
			svc.log.Error("recalculating teacher total after class deletion", err)
			if firstErr == nil {
				firstErr = wrap.Wrap(err, "recalculating teacher total")
			}
		}
	}
	return firstErr
}

// AssignTeacher links a teacher to a class. Assigning an already-assigned
// teacher is a no-op.
func (svc *Service) AssignTeacher(ctx context.Context, classID, userID string) error {
	return svc.repo.AssignTeacher(ctx, classID, userID)
}

// UnassignTeacher unlinks a teacher from a class. The teacher and their past
// records are kept.
func (svc *Service) UnassignTeacher(ctx context.Context, classID, userID string) error {
	return svc.repo.UnassignTeacher(ctx, classID, userID)
}

func (svc *Service) Teachers(ctx context.Context, classID string) ([]user.User, error) {
	return svc.repo.QueryClassTeachers(ctx, classID)
}

func (svc *Service) AddStudent(ctx context.Context, ns NewStudent) (Student, error) {
	std := Student{
		FullName:  ns.FullName,
		ClassID:   ns.ClassID,
		CreatedAt: time.Now().UTC(),
	}
	if ns.UserID != "" {
		std.UserID.SetValid(ns.UserID)
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *Service) GetStudent(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

func (svc *Service) Students(ctx context.Context, classID string) ([]Student, error) {
	return svc.repo.QueryStudentsByClass(ctx, classID, core.DBOrdering{Field: "full_name", Ascending: true})
}

func (svc *Service) UpdateStudentInfo(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	std.FullName = us.FullName
	std.ClassID = us.ClassID
	return svc.repo.UpdateStudent(ctx, std)
}

// RemoveStudents deletes students and their records. No other person's total
// is touched by a student removal.
func (svc *Service) RemoveStudents(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteStudentsByID(ctx, ids...)
	return err
}
