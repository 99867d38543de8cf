package dummydb

import (
	"context"
	"sort"

	"github.com/ebdplacar/backend/core/report"
)

type reportRepository struct {
	db *DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *DB) report.Repository {
	return &reportRepository{db: db}
}

// windowedStudentPoints sums record points per student over sessions inside
// `w`. Caller must hold at least a read lock.
func (repo *reportRepository) windowedStudentPoints(w report.Window) map[string]int {
	points := make(map[string]int)
	for _, rec := range repo.db.studentRecords {
		sess, ok := repo.db.sessions[rec.SessionID]
		if !ok || !w.Contains(sess.Date) {
			continue
		}
		points[rec.StudentID] += rec.PointsEarned
	}
	return points
}

func (repo *reportRepository) RankStudents(ctx context.Context, w report.Window, limit int) ([]report.RankedStudent, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var ranked []report.RankedStudent
	for sid, pts := range repo.windowedStudentPoints(w) {
		if pts <= 0 {
			continue
		}
		std, ok := repo.db.students[sid]
		if !ok {
			continue
		}
		ranked = append(ranked, report.RankedStudent{
			StudentID: std.ID,
			FullName:  std.FullName,
			ClassID:   std.ClassID,
			Points:    pts,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.FullName != b.FullName {
			return a.FullName < b.FullName
		}
		return a.StudentID < b.StudentID
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (repo *reportRepository) RankClasses(ctx context.Context, w report.Window) ([]report.RankedClass, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	points := repo.windowedStudentPoints(w)
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, std := range repo.db.students {
		counts[std.ClassID]++
		sums[std.ClassID] += points[std.ID]
	}

	var ranked []report.RankedClass
	for cid, sum := range sums {
		if sum <= 0 {
			continue
		}
		cls, ok := repo.db.classes[cid]
		if !ok {
			continue
		}
		ranked = append(ranked, report.RankedClass{
			ClassID: cid,
			Name:    cls.Name,
			Average: float64(sum) / float64(counts[cid]),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Average != b.Average {
			return a.Average > b.Average
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ClassID < b.ClassID
	})
	return ranked, nil
}

func (repo *reportRepository) RankTeachers(ctx context.Context, w report.Window) ([]report.RankedTeacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	points := make(map[string]int)
	for _, rec := range repo.db.teacherRecords {
		sess, ok := repo.db.sessions[rec.SessionID]
		if !ok || !w.Contains(sess.Date) {
			continue
		}
		points[rec.TeacherProfileID] += rec.PointsEarned
	}

	var ranked []report.RankedTeacher
	for pid, pts := range points {
		if pts <= 0 {
			continue
		}
		profile, ok := repo.db.profiles[pid]
		if !ok {
			continue
		}
		var name string
		if usr, ok := repo.db.users[profile.UserID]; ok {
			name = usr.Name
		}
		ranked = append(ranked, report.RankedTeacher{
			ProfileID: pid,
			UserID:    profile.UserID,
			Name:      name,
			Points:    pts,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ProfileID < b.ProfileID
	})
	return ranked, nil
}

func (repo *reportRepository) QueryStudentEntries(ctx context.Context, studentID string, w report.Window) ([]report.StudentReportEntry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var entries []report.StudentReportEntry
	for _, rec := range repo.db.studentRecords {
		if rec.StudentID != studentID {
			continue
		}
		sess, ok := repo.db.sessions[rec.SessionID]
		if !ok || !w.Contains(sess.Date) {
			continue
		}
		entries = append(entries, report.StudentReportEntry{StudentRecord: *rec, Date: sess.Date})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (repo *reportRepository) QueryTeacherEntries(ctx context.Context, profileID string, w report.Window) ([]report.TeacherReportEntry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var entries []report.TeacherReportEntry
	for _, rec := range repo.db.teacherRecords {
		if rec.TeacherProfileID != profileID {
			continue
		}
		sess, ok := repo.db.sessions[rec.SessionID]
		if !ok || !w.Contains(sess.Date) {
			continue
		}
		entries = append(entries, report.TeacherReportEntry{TeacherRecord: *rec, Date: sess.Date})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}
