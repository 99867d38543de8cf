package report

import (
	"context"

	"github.com/ebdplacar/backend/core/class"
	"github.com/ebdplacar/backend/core/user"
)

// Repository runs the read-only aggregate queries. Every ranking excludes
// entities whose score is zero or less and orders descending with a stable
// secondary sort (display name, then ID) so equal scores keep a
// deterministic order.
type Repository interface {
	// RankStudents sums points of records whose session date falls in `w`,
	// per student. `limit` <= 0 means no cap.
	RankStudents(ctx context.Context, w Window, limit int) ([]RankedStudent, error)
	// RankClasses averages the windowed sums of each class's member students
	// over the student count. Reads the students relation only, so a class
	// with several teachers is never double-counted.
	RankClasses(ctx context.Context, w Window) ([]RankedClass, error)
	// RankTeachers sums windowed points per teacher profile.
	RankTeachers(ctx context.Context, w Window) ([]RankedTeacher, error)

	// Query*Entries return the person's records joined with their session
	// dates, windowed, session date descending.
	QueryStudentEntries(ctx context.Context, studentID string, w Window) ([]StudentReportEntry, error)
	QueryTeacherEntries(ctx context.Context, profileID string, w Window) ([]TeacherReportEntry, error)
}

type Service struct {
	repo      Repository
	classRepo class.Repository
	userRepo  user.Repository
}

func NewService(repo Repository, classRepo class.Repository, userRepo user.Repository) *Service {
	return &Service{repo: repo, classRepo: classRepo, userRepo: userRepo}
}

func (svc *Service) RankStudents(ctx context.Context, w Window, limit ...int) ([]RankedStudent, error) {
	var max int
	if len(limit) > 0 {
		max = limit[0]
	}
	return svc.repo.RankStudents(ctx, w, max)
}

func (svc *Service) RankClasses(ctx context.Context, w Window) ([]RankedClass, error) {
	return svc.repo.RankClasses(ctx, w)
}

func (svc *Service) RankTeachers(ctx context.Context, w Window) ([]RankedTeacher, error) {
	return svc.repo.RankTeachers(ctx, w)
}

// StudentReport returns the student's record history within `w`, presence
// counts over the returned records, and the cached lifetime total.
func (svc *Service) StudentReport(ctx context.Context, studentID string, w Window) (StudentReport, error) {
	std, err := svc.classRepo.GetStudent(ctx, studentID)
	if err != nil {
		return StudentReport{}, err
	}
	entries, err := svc.repo.QueryStudentEntries(ctx, studentID, w)
	if err != nil {
		return StudentReport{}, err
	}

	rpt := StudentReport{
		Student:     std,
		Entries:     entries,
		TotalPoints: std.TotalPoints,
	}
	for _, e := range entries {
		if e.Presence {
			rpt.PresentCount++
		} else {
			rpt.AbsentCount++
		}
	}
	return rpt, nil
}

// TeacherReport is the teacher-variant twin of StudentReport.
func (svc *Service) TeacherReport(ctx context.Context, profileID string, w Window) (TeacherReport, error) {
	profile, err := svc.userRepo.GetTeacherProfile(ctx, user.ProfileGetFilter{ID: profileID})
	if err != nil {
		return TeacherReport{}, err
	}
	usr, err := svc.userRepo.GetUser(ctx, user.GetFilter{ID: profile.UserID})
	if err != nil {
		return TeacherReport{}, err
	}
	entries, err := svc.repo.QueryTeacherEntries(ctx, profileID, w)
	if err != nil {
		return TeacherReport{}, err
	}

	rpt := TeacherReport{
		Profile:     profile,
		User:        usr,
		Entries:     entries,
		TotalPoints: profile.TotalPoints,
	}
	for _, e := range entries {
		if e.Presence {
			rpt.PresentCount++
		} else {
			rpt.AbsentCount++
		}
	}
	return rpt, nil
}
