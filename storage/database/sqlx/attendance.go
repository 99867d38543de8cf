package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ebdplacar/backend/core"
	"github.com/ebdplacar/backend/core/attendance"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

type sessionRow struct {
	ID        string      `db:"id"`
	ClassID   string      `db:"class_id"`
	Date      time.Time   `db:"date"`
	CreatedBy null.String `db:"created_by"`
}

func (r sessionRow) domain() attendance.Session {
	return attendance.Session{ID: r.ID, ClassID: r.ClassID, Date: core.DateOnly(r.Date), CreatedBy: r.CreatedBy}
}

type studentRecordRow struct {
	ID           string `db:"id"`
	SessionID    string `db:"session_id"`
	StudentID    string `db:"student_id"`
	Presence     bool   `db:"presence"`
	Bible        bool   `db:"bible"`
	Scripture    bool   `db:"scripture"`
	Guest        bool   `db:"guest"`
	Offering     bool   `db:"offering"`
	Activities   bool   `db:"activities"`
	Magazine     bool   `db:"magazine"`
	PointsEarned int    `db:"points_earned"`
}

func (r studentRecordRow) domain() attendance.StudentRecord {
	return attendance.StudentRecord{
		ID:        r.ID,
		SessionID: r.SessionID,
		StudentID: r.StudentID,
		StudentChecklist: attendance.StudentChecklist{
			Presence:   r.Presence,
			Bible:      r.Bible,
			Scripture:  r.Scripture,
			Guest:      r.Guest,
			Offering:   r.Offering,
			Activities: r.Activities,
			Magazine:   r.Magazine,
		},
		PointsEarned: r.PointsEarned,
	}
}

type teacherRecordRow struct {
	ID               string `db:"id"`
	SessionID        string `db:"session_id"`
	TeacherProfileID string `db:"teacher_profile_id"`
	Presence         bool   `db:"presence"`
	Bible            bool   `db:"bible"`
	Magazine         bool   `db:"magazine"`
	Offering         bool   `db:"offering"`
	Guest            bool   `db:"guest"`
	PointsEarned     int    `db:"points_earned"`
}

func (r teacherRecordRow) domain() attendance.TeacherRecord {
	return attendance.TeacherRecord{
		ID:               r.ID,
		SessionID:        r.SessionID,
		TeacherProfileID: r.TeacherProfileID,
		TeacherChecklist: attendance.TeacherChecklist{
			Presence: r.Presence,
			Bible:    r.Bible,
			Magazine: r.Magazine,
			Offering: r.Offering,
			Guest:    r.Guest,
		},
		PointsEarned: r.PointsEarned,
	}
}

func (repo attendanceRepository) CreateSession(ctx context.Context, sess attendance.Session) (attendance.Session, error) {
	sess.ID = uuid.New().String()
	q := `INSERT INTO session (id, class_id, date, created_by) VALUES ($1, $2, $3, $4)`
	if _, err := repo.db.ExecContext(ctx, q, sess.ID, sess.ClassID, sess.Date, sess.CreatedBy); err != nil {
		if isUniqueViolation(err) {
			return attendance.Session{}, attendance.ErrSessionExists
		}
		return attendance.Session{}, errors.Wrap(err, "inserting session")
	}
	return sess, nil
}

func (repo attendanceRepository) GetSession(ctx context.Context, id string) (attendance.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.Session{}, attendance.ErrSessionNotFound
	}
	var row sessionRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM session WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return attendance.Session{}, attendance.ErrSessionNotFound
	}
	if err != nil {
		return attendance.Session{}, errors.Wrap(err, "finding session")
	}
	return row.domain(), nil
}

func (repo attendanceRepository) GetSessionByClassDate(ctx context.Context, classID string, date time.Time) (attendance.Session, error) {
	var row sessionRow
	q := `SELECT * FROM session WHERE class_id = $1 AND date = $2`
	err := repo.db.GetContext(ctx, &row, q, classID, core.DateOnly(date))
	if err == sql.ErrNoRows {
		return attendance.Session{}, attendance.ErrSessionNotFound
	}
	if err != nil {
		return attendance.Session{}, errors.Wrap(err, "finding session by class and date")
	}
	return row.domain(), nil
}

func (repo attendanceRepository) QuerySessionsByClass(ctx context.Context, classID string, ordering ...core.DBOrdering) ([]attendance.Session, error) {
	var rows []sessionRow
	q := `SELECT * FROM session WHERE class_id = $1` + orderBy(ordering)
	if err := repo.db.SelectContext(ctx, &rows, q, classID); err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	sessions := make([]attendance.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.domain())
	}
	return sessions, nil
}

func (repo attendanceRepository) DeleteSessionsByID(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM session WHERE id = ANY($1)`, pq.StringArray(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting sessions")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}

func (repo attendanceRepository) QuerySessionOwnerIDs(ctx context.Context, sessionID string) (studentIDs, profileIDs []string, err error) {
	q := `SELECT student_id FROM student_record WHERE session_id = $1`
	if err = repo.db.SelectContext(ctx, &studentIDs, q, sessionID); err != nil {
		return nil, nil, errors.Wrap(err, "querying session student owners")
	}
	q = `SELECT teacher_profile_id FROM teacher_record WHERE session_id = $1`
	if err = repo.db.SelectContext(ctx, &profileIDs, q, sessionID); err != nil {
		return nil, nil, errors.Wrap(err, "querying session teacher owners")
	}
	return studentIDs, profileIDs, nil
}

func (repo attendanceRepository) QueryTeacherProfileIDsForClass(ctx context.Context, classID string) ([]string, error) {
	var ids []string
	q := `SELECT DISTINCT tr.teacher_profile_id
	      FROM teacher_record tr
	      JOIN session s ON s.id = tr.session_id
	      WHERE s.class_id = $1`
	if err := repo.db.SelectContext(ctx, &ids, q, classID); err != nil {
		return nil, errors.Wrap(err, "querying class teacher profiles")
	}
	return ids, nil
}

func (repo attendanceRepository) CreateStudentRecord(ctx context.Context, rec attendance.StudentRecord) (attendance.StudentRecord, error) {
	rec.ID = uuid.New().String()
	q := `INSERT INTO student_record
	      (id, session_id, student_id, presence, bible, scripture, guest, offering, activities, magazine, points_earned)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := repo.db.ExecContext(ctx, q,
		rec.ID, rec.SessionID, rec.StudentID,
		rec.Presence, rec.Bible, rec.Scripture, rec.Guest, rec.Offering, rec.Activities, rec.Magazine,
		rec.PointsEarned,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.StudentRecord{}, attendance.ErrRecordExists
		}
		return attendance.StudentRecord{}, errors.Wrap(err, "inserting student record")
	}
	return rec, nil
}

func (repo attendanceRepository) GetStudentRecord(ctx context.Context, id string) (attendance.StudentRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.StudentRecord{}, attendance.ErrRecordNotFound
	}
	var row studentRecordRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM student_record WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return attendance.StudentRecord{}, attendance.ErrRecordNotFound
	}
	if err != nil {
		return attendance.StudentRecord{}, errors.Wrap(err, "finding student record")
	}
	return row.domain(), nil
}

func (repo attendanceRepository) QueryStudentRecordsBySession(ctx context.Context, sessionID string) ([]attendance.StudentRecord, error) {
	var rows []studentRecordRow
	q := `SELECT sr.* FROM student_record sr
	      JOIN student s ON s.id = sr.student_id
	      WHERE sr.session_id = $1
	      ORDER BY s.full_name ASC`
	if err := repo.db.SelectContext(ctx, &rows, q, sessionID); err != nil {
		return nil, errors.Wrap(err, "querying student records")
	}
	recs := make([]attendance.StudentRecord, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.domain())
	}
	return recs, nil
}

func (repo attendanceRepository) UpdateStudentRecord(ctx context.Context, rec attendance.StudentRecord) (attendance.StudentRecord, error) {
	q := `UPDATE student_record
	      SET presence = $1, bible = $2, scripture = $3, guest = $4, offering = $5, activities = $6, magazine = $7,
	          points_earned = $8
	      WHERE id = $9`
	res, err := repo.db.ExecContext(ctx, q,
		rec.Presence, rec.Bible, rec.Scripture, rec.Guest, rec.Offering, rec.Activities, rec.Magazine,
		rec.PointsEarned, rec.ID,
	)
	if err != nil {
		return attendance.StudentRecord{}, errors.Wrap(err, "updating student record")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return attendance.StudentRecord{}, attendance.ErrRecordNotFound
	}
	return rec, nil
}

func (repo attendanceRepository) CreateTeacherRecord(ctx context.Context, rec attendance.TeacherRecord) (attendance.TeacherRecord, error) {
	rec.ID = uuid.New().String()
	q := `INSERT INTO teacher_record
	      (id, session_id, teacher_profile_id, presence, bible, magazine, offering, guest, points_earned)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		rec.ID, rec.SessionID, rec.TeacherProfileID,
		rec.Presence, rec.Bible, rec.Magazine, rec.Offering, rec.Guest,
		rec.PointsEarned,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.TeacherRecord{}, attendance.ErrRecordExists
		}
		return attendance.TeacherRecord{}, errors.Wrap(err, "inserting teacher record")
	}
	return rec, nil
}

func (repo attendanceRepository) GetTeacherRecord(ctx context.Context, id string) (attendance.TeacherRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.TeacherRecord{}, attendance.ErrRecordNotFound
	}
	var row teacherRecordRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM teacher_record WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return attendance.TeacherRecord{}, attendance.ErrRecordNotFound
	}
	if err != nil {
		return attendance.TeacherRecord{}, errors.Wrap(err, "finding teacher record")
	}
	return row.domain(), nil
}

func (repo attendanceRepository) QueryTeacherRecordsBySession(ctx context.Context, sessionID string) ([]attendance.TeacherRecord, error) {
	var rows []teacherRecordRow
	q := `SELECT tr.* FROM teacher_record tr
	      JOIN teacher_profile p ON p.id = tr.teacher_profile_id
	      JOIN "user" u ON u.id = p.user_id
	      WHERE tr.session_id = $1
	      ORDER BY u.name ASC`
	if err := repo.db.SelectContext(ctx, &rows, q, sessionID); err != nil {
		return nil, errors.Wrap(err, "querying teacher records")
	}
	recs := make([]attendance.TeacherRecord, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.domain())
	}
	return recs, nil
}

func (repo attendanceRepository) UpdateTeacherRecord(ctx context.Context, rec attendance.TeacherRecord) (attendance.TeacherRecord, error) {
	q := `UPDATE teacher_record
	      SET presence = $1, bible = $2, magazine = $3, offering = $4, guest = $5, points_earned = $6
	      WHERE id = $7`
	res, err := repo.db.ExecContext(ctx, q,
		rec.Presence, rec.Bible, rec.Magazine, rec.Offering, rec.Guest, rec.PointsEarned, rec.ID,
	)
	if err != nil {
		return attendance.TeacherRecord{}, errors.Wrap(err, "updating teacher record")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return attendance.TeacherRecord{}, attendance.ErrRecordNotFound
	}
	return rec, nil
}

// RecalculateStudentTotal overwrites the student's cached total with a fresh
// aggregation in a single statement; nothing else on the row is touched.
func (repo attendanceRepository) RecalculateStudentTotal(ctx context.Context, studentID string) error {
	q := `UPDATE student
	      SET total_points = COALESCE((SELECT SUM(points_earned) FROM student_record WHERE student_id = $1), 0)
	      WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, q, studentID); err != nil {
		return errors.Wrap(err, "recalculating student total")
	}
	return nil
}

func (repo attendanceRepository) RecalculateTeacherTotal(ctx context.Context, profileID string) error {
	q := `UPDATE teacher_profile
	      SET total_points = COALESCE((SELECT SUM(points_earned) FROM teacher_record WHERE teacher_profile_id = $1), 0)
	      WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, q, profileID); err != nil {
		return errors.Wrap(err, "recalculating teacher total")
	}
	return nil
}
