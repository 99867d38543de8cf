package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/ebdplacar/backend/core"
	"github.com/ebdplacar/backend/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateSession(ctx context.Context, sess attendance.Session) (attendance.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.sessions {
		if existing.ClassID == sess.ClassID && existing.Date.Equal(sess.Date) {
			return attendance.Session{}, attendance.ErrSessionExists
		}
	}
	sess.ID = newPK()
	repo.db.sessions[sess.ID] = &sess
	return sess, nil
}

func (repo *attendanceRepository) GetSession(ctx context.Context, id string) (attendance.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sess, ok := repo.db.sessions[id]; ok {
		return *sess, nil
	}
	return attendance.Session{}, attendance.ErrSessionNotFound
}

func (repo *attendanceRepository) GetSessionByClassDate(ctx context.Context, classID string, date time.Time) (attendance.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	date = core.DateOnly(date)
	for _, sess := range repo.db.sessions {
		if sess.ClassID == classID && sess.Date.Equal(date) {
			return *sess, nil
		}
	}
	return attendance.Session{}, attendance.ErrSessionNotFound
}

func (repo *attendanceRepository) QuerySessionsByClass(ctx context.Context, classID string, ordering ...core.DBOrdering) ([]attendance.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var sessions []attendance.Session
	for _, sess := range repo.db.sessions {
		if sess.ClassID == classID {
			sessions = append(sessions, *sess)
		}
	}
	asc := true
	if len(ordering) > 0 {
		asc = ordering[0].Ascending
	}
	sort.Slice(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if !asc {
			a, b = b, a
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})
	return sessions, nil
}

func (repo *attendanceRepository) DeleteSessionsByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.sessions[id]; ok {
			repo.db.deleteSession(id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *attendanceRepository) QuerySessionOwnerIDs(ctx context.Context, sessionID string) (studentIDs, profileIDs []string, err error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, rec := range repo.db.studentRecords {
		if rec.SessionID == sessionID {
			studentIDs = append(studentIDs, rec.StudentID)
		}
	}
	for _, rec := range repo.db.teacherRecords {
		if rec.SessionID == sessionID {
			profileIDs = append(profileIDs, rec.TeacherProfileID)
		}
	}
	return studentIDs, profileIDs, nil
}

func (repo *attendanceRepository) QueryTeacherProfileIDsForClass(ctx context.Context, classID string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	seen := make(map[string]struct{})
	for _, rec := range repo.db.teacherRecords {
		sess, ok := repo.db.sessions[rec.SessionID]
		if !ok || sess.ClassID != classID {
			continue
		}
		seen[rec.TeacherProfileID] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (repo *attendanceRepository) CreateStudentRecord(ctx context.Context, rec attendance.StudentRecord) (attendance.StudentRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.studentRecords {
		if existing.SessionID == rec.SessionID && existing.StudentID == rec.StudentID {
			return attendance.StudentRecord{}, attendance.ErrRecordExists
		}
	}
	rec.ID = newPK()
	repo.db.studentRecords[rec.ID] = &rec
	return rec, nil
}

func (repo *attendanceRepository) GetStudentRecord(ctx context.Context, id string) (attendance.StudentRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.studentRecords[id]; ok {
		return *rec, nil
	}
	return attendance.StudentRecord{}, attendance.ErrRecordNotFound
}

func (repo *attendanceRepository) QueryStudentRecordsBySession(ctx context.Context, sessionID string) ([]attendance.StudentRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var recs []attendance.StudentRecord
	for _, rec := range repo.db.studentRecords {
		if rec.SessionID == sessionID {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		a, b := repo.db.students[recs[i].StudentID], repo.db.students[recs[j].StudentID]
		if a != nil && b != nil && a.FullName != b.FullName {
			return a.FullName < b.FullName
		}
		return recs[i].ID < recs[j].ID
	})
	return recs, nil
}

func (repo *attendanceRepository) UpdateStudentRecord(ctx context.Context, rec attendance.StudentRecord) (attendance.StudentRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.studentRecords[rec.ID]
	if !ok {
		return attendance.StudentRecord{}, attendance.ErrRecordNotFound
	}
	orig.StudentChecklist = rec.StudentChecklist
	orig.PointsEarned = rec.PointsEarned
	return *orig, nil
}

func (repo *attendanceRepository) CreateTeacherRecord(ctx context.Context, rec attendance.TeacherRecord) (attendance.TeacherRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.teacherRecords {
		if existing.SessionID == rec.SessionID && existing.TeacherProfileID == rec.TeacherProfileID {
			return attendance.TeacherRecord{}, attendance.ErrRecordExists
		}
	}
	rec.ID = newPK()
	repo.db.teacherRecords[rec.ID] = &rec
	return rec, nil
}

func (repo *attendanceRepository) GetTeacherRecord(ctx context.Context, id string) (attendance.TeacherRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.teacherRecords[id]; ok {
		return *rec, nil
	}
	return attendance.TeacherRecord{}, attendance.ErrRecordNotFound
}

func (repo *attendanceRepository) QueryTeacherRecordsBySession(ctx context.Context, sessionID string) ([]attendance.TeacherRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var recs []attendance.TeacherRecord
	for _, rec := range repo.db.teacherRecords {
		if rec.SessionID == sessionID {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		ni, nj := repo.teacherName(recs[i].TeacherProfileID), repo.teacherName(recs[j].TeacherProfileID)
		if ni != nj {
			return ni < nj
		}
		return recs[i].ID < recs[j].ID
	})
	return recs, nil
}

func (repo *attendanceRepository) teacherName(profileID string) string {
	if p, ok := repo.db.profiles[profileID]; ok {
		if u, ok := repo.db.users[p.UserID]; ok {
			return u.Name
		}
	}
	return ""
}

func (repo *attendanceRepository) UpdateTeacherRecord(ctx context.Context, rec attendance.TeacherRecord) (attendance.TeacherRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.teacherRecords[rec.ID]
	if !ok {
		return attendance.TeacherRecord{}, attendance.ErrRecordNotFound
	}
	orig.TeacherChecklist = rec.TeacherChecklist
	orig.PointsEarned = rec.PointsEarned
	return *orig, nil
}

func (repo *attendanceRepository) RecalculateStudentTotal(ctx context.Context, studentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	std, ok := repo.db.students[studentID]
	if !ok {
		return nil
	}
	var total int
	for _, rec := range repo.db.studentRecords {
		if rec.StudentID == studentID {
			total += rec.PointsEarned
		}
	}
	std.TotalPoints = total
	return nil
}

func (repo *attendanceRepository) RecalculateTeacherTotal(ctx context.Context, profileID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	profile, ok := repo.db.profiles[profileID]
	if !ok {
		return nil
	}
	var total int
	for _, rec := range repo.db.teacherRecords {
		if rec.TeacherProfileID == profileID {
			total += rec.PointsEarned
		}
	}
	profile.TotalPoints = total
	return nil
}
