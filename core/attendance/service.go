package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ebdplacar/backend/core"
	"github.com/ebdplacar/backend/core/class"
	"github.com/ebdplacar/backend/core/user"
)

var (
	// errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("a session already exists for this class and date")
	ErrRecordNotFound  = errors.New("attendance record not found")
	ErrRecordExists    = errors.New("an attendance record already exists for this session and person")
)

// AggregationError reports that a record write succeeded but the owner's
// cached total could not be recomputed. The record is kept; re-running
// RecalculateStudentTotal / RecalculateTeacherTotal heals the total.
type AggregationError struct {
	StudentID string
	ProfileID string
	Err       error
}

func (e *AggregationError) Error() string {
	if e.StudentID != "" {
		return fmt.Sprintf("total left stale for student %s: %v", e.StudentID, e.Err)
	}
	return fmt.Sprintf("total left stale for teacher profile %s: %v", e.ProfileID, e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }

type Repository interface {
	CreateSession(ctx context.Context, sess Session) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	GetSessionByClassDate(ctx context.Context, classID string, date time.Time) (Session, error)
	QuerySessionsByClass(ctx context.Context, classID string, ordering ...core.DBOrdering) ([]Session, error)
	DeleteSessionsByID(ctx context.Context, ids ...string) (int, error)
	// QuerySessionOwnerIDs returns the IDs of the students and teacher profiles
	// holding records in the session.
	QuerySessionOwnerIDs(ctx context.Context, sessionID string) (studentIDs, profileIDs []string, err error)
	QueryTeacherProfileIDsForClass(ctx context.Context, classID string) ([]string, error)

	CreateStudentRecord(ctx context.Context, rec StudentRecord) (StudentRecord, error)
	GetStudentRecord(ctx context.Context, id string) (StudentRecord, error)
	QueryStudentRecordsBySession(ctx context.Context, sessionID string) ([]StudentRecord, error)
	UpdateStudentRecord(ctx context.Context, rec StudentRecord) (StudentRecord, error)

	CreateTeacherRecord(ctx context.Context, rec TeacherRecord) (TeacherRecord, error)
	GetTeacherRecord(ctx context.Context, id string) (TeacherRecord, error)
	QueryTeacherRecordsBySession(ctx context.Context, sessionID string) ([]TeacherRecord, error)
	UpdateTeacherRecord(ctx context.Context, rec TeacherRecord) (TeacherRecord, error)

	// Recalculate*Total re-aggregate SUM(points_earned) over the owner's
	// current records and overwrite the cached total, touching nothing else.
	RecalculateStudentTotal(ctx context.Context, studentID string) error
	RecalculateTeacherTotal(ctx context.Context, profileID string) error
}

type Service struct {
	repo      Repository
	classRepo class.Repository
	userRepo  user.Repository
	log       core.Logger
}

func NewService(repo Repository, classRepo class.Repository, userRepo user.Repository, log core.Logger) *Service {
	return &Service{repo: repo, classRepo: classRepo, userRepo: userRepo, log: log}
}

// EnsureSession returns the session for (class, date), creating it first when
// missing. It then makes sure every current student of the class and every
// assigned teacher with a profile has exactly one blank record in the session.
// Idempotent: re-running never duplicates sessions or records and never
// resets existing records' flags. The store's uniqueness constraints carry
// the burden under concurrent calls; losing a create race falls back to a
// fetch.
func (svc *Service) EnsureSession(ctx context.Context, classID string, date time.Time, requestedBy user.User) (Session, error) {
	if _, err := svc.classRepo.GetClass(ctx, classID); err != nil {
		return Session{}, err
	}
	date = core.DateOnly(date)

	sess, err := svc.repo.GetSessionByClassDate(ctx, classID, date)
	if err == ErrSessionNotFound {
		newSess := Session{ClassID: classID, Date: date}
		if requestedBy.ID != "" {
			newSess.CreatedBy.SetValid(requestedBy.ID)
		}
		sess, err = svc.repo.CreateSession(ctx, newSess)
		if err == ErrSessionExists {
			// lost the race to a concurrent ensure; CreatedBy keeps the winner's stamp
			sess, err = svc.repo.GetSessionByClassDate(ctx, classID, date)
		}
	}
	if err != nil {
		return Session{}, err
	}

	if err := svc.ensureStudentRecords(ctx, sess); err != nil {
		return Session{}, err
	}
	if err := svc.ensureTeacherRecords(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (svc *Service) ensureStudentRecords(ctx context.Context, sess Session) error {
	students, err := svc.classRepo.QueryStudentsByClass(ctx, sess.ClassID)
	if err != nil {
		return err
	}
	for _, std := range students {
		rec := StudentRecord{SessionID: sess.ID, StudentID: std.ID}
		if _, err := svc.repo.CreateStudentRecord(ctx, rec); err != nil && err != ErrRecordExists {
			return err
		}
	}
	return nil
}

func (svc *Service) ensureTeacherRecords(ctx context.Context, sess Session) error {
	teachers, err := svc.classRepo.QueryClassTeachers(ctx, sess.ClassID)
	if err != nil {
		return err
	}
	for _, tchr := range teachers {
		profile, err := svc.userRepo.GetTeacherProfile(ctx, user.ProfileGetFilter{UserID: tchr.ID})
		if err == user.ErrProfileNotFound {
			continue // assigned but never provisioned; nothing to score
		}
		if err != nil {
			return err
		}
		rec := TeacherRecord{SessionID: sess.ID, TeacherProfileID: profile.ID}
		if _, err := svc.repo.CreateTeacherRecord(ctx, rec); err != nil && err != ErrRecordExists {
			return err
		}
	}
	return nil
}

func (svc *Service) Session(ctx context.Context, id string) (Session, error) {
	return svc.repo.GetSession(ctx, id)
}

func (svc *Service) Sessions(ctx context.Context, classID string) ([]Session, error) {
	return svc.repo.QuerySessionsByClass(ctx, classID, core.DBOrdering{Field: "date"})
}

// Records returns the session's student and teacher records.
func (svc *Service) Records(ctx context.Context, sessionID string) ([]StudentRecord, []TeacherRecord, error) {
	stdRecs, err := svc.repo.QueryStudentRecordsBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	tchrRecs, err := svc.repo.QueryTeacherRecordsBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return stdRecs, tchrRecs, nil
}

// RecordStudentChecklist applies the checklist to the record, derives its
// points, persists it and recomputes the owning student's total from scratch.
// A failed recompute after a successful write comes back as an
// *AggregationError alongside the saved record.
func (svc *Service) RecordStudentChecklist(ctx context.Context, recordID string, cl StudentChecklist) (StudentRecord, error) {
	rec, err := svc.repo.GetStudentRecord(ctx, recordID)
	if err != nil {
		return StudentRecord{}, err
	}

	rec.StudentChecklist = cl
	rec.PointsEarned = cl.Points()
	if rec, err = svc.repo.UpdateStudentRecord(ctx, rec); err != nil {
		return StudentRecord{}, err
	}

	if err = svc.repo.RecalculateStudentTotal(ctx, rec.StudentID); err != nil {
		aggErr := &AggregationError{StudentID: rec.StudentID, Err: err}
		svc.log.Error(aggErr.Error(), err)
		return rec, aggErr
	}
	return rec, nil
}

// RecordTeacherChecklist is the teacher-variant twin of RecordStudentChecklist.
func (svc *Service) RecordTeacherChecklist(ctx context.Context, recordID string, cl TeacherChecklist) (TeacherRecord, error) {
	rec, err := svc.repo.GetTeacherRecord(ctx, recordID)
	if err != nil {
		return TeacherRecord{}, err
	}

	rec.TeacherChecklist = cl
	rec.PointsEarned = cl.Points()
	if rec, err = svc.repo.UpdateTeacherRecord(ctx, rec); err != nil {
		return TeacherRecord{}, err
	}

	if err = svc.repo.RecalculateTeacherTotal(ctx, rec.TeacherProfileID); err != nil {
		aggErr := &AggregationError{ProfileID: rec.TeacherProfileID, Err: err}
		svc.log.Error(aggErr.Error(), err)
		return rec, aggErr
	}
	return rec, nil
}

// RecalculateStudentTotal re-triggers the student's total aggregation.
// Exposed so a stale total left by an AggregationError can be healed.
func (svc *Service) RecalculateStudentTotal(ctx context.Context, studentID string) error {
	return svc.repo.RecalculateStudentTotal(ctx, studentID)
}

// RecalculateTeacherTotal re-triggers the teacher profile's total aggregation.
func (svc *Service) RecalculateTeacherTotal(ctx context.Context, profileID string) error {
	return svc.repo.RecalculateTeacherTotal(ctx, profileID)
}

// TeacherProfileIDsForClass lists the teacher profiles holding records in any
// of the class's sessions. Callers deleting a class snapshot these before the
// cascade destroys the relation.
func (svc *Service) TeacherProfileIDsForClass(ctx context.Context, classID string) ([]string, error) {
	return svc.repo.QueryTeacherProfileIDsForClass(ctx, classID)
}

// DeleteSession removes the session and its records. The affected owners are
// snapshotted before the cascade, then every one of them gets a fresh total.
func (svc *Service) DeleteSession(ctx context.Context, sessionID string) error {
	studentIDs, profileIDs, err := svc.repo.QuerySessionOwnerIDs(ctx, sessionID)
	if err != nil {
		return err
	}

	if _, err := svc.repo.DeleteSessionsByID(ctx, sessionID); err != nil {
		return err
	}

	var firstErr error
	keepFirst := func(aggErr *AggregationError) {
		svc.log.Error(aggErr.Error(), aggErr.Err)
		if firstErr == nil {
			firstErr = aggErr
		}
	}
	for _, id := range studentIDs {
		if err := svc.repo.RecalculateStudentTotal(ctx, id); err != nil {
			keepFirst(&AggregationError{StudentID: id, Err: err})
		}
	}
	for _, id := range profileIDs {
		if err := svc.repo.RecalculateTeacherTotal(ctx, id); err != nil {
			keepFirst(&AggregationError{ProfileID: id, Err: err})
		}
	}
	return firstErr
}
