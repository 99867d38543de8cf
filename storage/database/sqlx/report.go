package sqlxrepos

import (
	"context"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ebdplacar/backend/core/report"
)

type reportRepository struct {
	db *sqlx.DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *sqlx.DB) *reportRepository {
	return &reportRepository{db: db}
}

// windowConds appends the inclusive session-date bounds of `w`, if any.
func windowConds(cb *condBuilder, col string, w report.Window) {
	if w.From.Valid {
		cb.add(col+" >= ?", w.From.Time)
	}
	if w.To.Valid {
		cb.add(col+" <= ?", w.To.Time)
	}
}

func (repo reportRepository) RankStudents(ctx context.Context, w report.Window, limit int) ([]report.RankedStudent, error) {
	var cb condBuilder
	windowConds(&cb, "sess.date", w)

	q := `SELECT s.id AS student_id, s.full_name, s.class_id, SUM(sr.points_earned) AS points
	      FROM student s
	      JOIN student_record sr ON sr.student_id = s.id
	      JOIN session sess ON sess.id = sr.session_id` +
		cb.where() + `
	      GROUP BY s.id, s.full_name, s.class_id
	      HAVING SUM(sr.points_earned) > 0
	      ORDER BY points DESC, s.full_name ASC, s.id ASC`
	if limit > 0 {
		q += " LIMIT " + strconv.Itoa(limit)
	}

	var ranked []report.RankedStudent
	if err := repo.db.SelectContext(ctx, &ranked, q, cb.args...); err != nil {
		return nil, errors.Wrap(err, "ranking students")
	}
	return ranked, nil
}

func (repo reportRepository) RankClasses(ctx context.Context, w report.Window) ([]report.RankedClass, error) {
	var cb condBuilder
	windowConds(&cb, "sess.date", w)

	// Windowed points per student first, then averaged per class over every
	// enrolled student so absentees still weigh the denominator.
	q := `SELECT c.id AS class_id, c.name,
	             COALESCE(SUM(pts.points), 0)::float / COUNT(s.id) AS average
	      FROM class c
	      JOIN student s ON s.class_id = c.id
	      LEFT JOIN (
	          SELECT sr.student_id, SUM(sr.points_earned) AS points
	          FROM student_record sr
	          JOIN session sess ON sess.id = sr.session_id` +
		cb.where() + `
	          GROUP BY sr.student_id
	      ) pts ON pts.student_id = s.id
	      GROUP BY c.id, c.name
	      HAVING COALESCE(SUM(pts.points), 0) > 0
	      ORDER BY average DESC, c.name ASC, c.id ASC`

	var ranked []report.RankedClass
	if err := repo.db.SelectContext(ctx, &ranked, q, cb.args...); err != nil {
		return nil, errors.Wrap(err, "ranking classes")
	}
	return ranked, nil
}

func (repo reportRepository) RankTeachers(ctx context.Context, w report.Window) ([]report.RankedTeacher, error) {
	var cb condBuilder
	windowConds(&cb, "sess.date", w)

	q := `SELECT p.id AS profile_id, u.id AS user_id, u.name, SUM(tr.points_earned) AS points
	      FROM teacher_profile p
	      JOIN "user" u ON u.id = p.user_id
	      JOIN teacher_record tr ON tr.teacher_profile_id = p.id
	      JOIN session sess ON sess.id = tr.session_id` +
		cb.where() + `
	      GROUP BY p.id, u.id, u.name
	      HAVING SUM(tr.points_earned) > 0
	      ORDER BY points DESC, u.name ASC, p.id ASC`

	var ranked []report.RankedTeacher
	if err := repo.db.SelectContext(ctx, &ranked, q, cb.args...); err != nil {
		return nil, errors.Wrap(err, "ranking teachers")
	}
	return ranked, nil
}

type studentEntryRow struct {
	studentRecordRow
	Date time.Time `db:"date"`
}

func (repo reportRepository) QueryStudentEntries(ctx context.Context, studentID string, w report.Window) ([]report.StudentReportEntry, error) {
	cb := condBuilder{args: []interface{}{studentID}}
	windowConds(&cb, "sess.date", w)

	q := `SELECT sr.*, sess.date
	      FROM student_record sr
	      JOIN session sess ON sess.id = sr.session_id
	      WHERE sr.student_id = $1` +
		cb.and() + `
	      ORDER BY sess.date DESC`

	var rows []studentEntryRow
	if err := repo.db.SelectContext(ctx, &rows, q, cb.args...); err != nil {
		return nil, errors.Wrap(err, "querying student report entries")
	}
	entries := make([]report.StudentReportEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, report.StudentReportEntry{StudentRecord: row.domain(), Date: row.Date})
	}
	return entries, nil
}

type teacherEntryRow struct {
	teacherRecordRow
	Date time.Time `db:"date"`
}

func (repo reportRepository) QueryTeacherEntries(ctx context.Context, profileID string, w report.Window) ([]report.TeacherReportEntry, error) {
	cb := condBuilder{args: []interface{}{profileID}}
	windowConds(&cb, "sess.date", w)

	q := `SELECT tr.*, sess.date
	      FROM teacher_record tr
	      JOIN session sess ON sess.id = tr.session_id
	      WHERE tr.teacher_profile_id = $1` +
		cb.and() + `
	      ORDER BY sess.date DESC`

	var rows []teacherEntryRow
	if err := repo.db.SelectContext(ctx, &rows, q, cb.args...); err != nil {
		return nil, errors.Wrap(err, "querying teacher report entries")
	}
	entries := make([]report.TeacherReportEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, report.TeacherReportEntry{TeacherRecord: row.domain(), Date: row.Date})
	}
	return entries, nil
}
