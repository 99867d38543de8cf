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
	"github.com/ebdplacar/backend/core/class"
	"github.com/ebdplacar/backend/core/user"
)

type classRepository struct {
	db *sqlx.DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *sqlx.DB) *classRepository {
	return &classRepository{db: db}
}

type classRow struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

func (r classRow) domain() class.Class {
	return class.Class{ID: r.ID, Name: r.Name}
}

type studentRow struct {
	ID          string      `db:"id"`
	UserID      null.String `db:"user_id"`
	FullName    string      `db:"full_name"`
	ClassID     string      `db:"class_id"`
	TotalPoints int         `db:"total_points"`
	CreatedAt   time.Time   `db:"created_at"`
}

func (r studentRow) domain() class.Student {
	return class.Student{
		ID:          r.ID,
		UserID:      r.UserID,
		FullName:    r.FullName,
		ClassID:     r.ClassID,
		TotalPoints: r.TotalPoints,
		CreatedAt:   r.CreatedAt,
	}
}

func (repo classRepository) CheckNameUniqueness(ctx context.Context, name string, excludedClasses ...class.Class) error {
	var cb condBuilder
	cb.add("name = ?", name)
	if len(excludedClasses) > 0 {
		ids := make([]string, 0, len(excludedClasses))
		for _, cls := range excludedClasses {
			ids = append(ids, cls.ID)
		}
		cb.add("NOT (id = ANY(?))", pq.StringArray(ids))
	}

	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM class` + cb.where() + `)`
	if err := repo.db.GetContext(ctx, &exists, q, cb.args...); err != nil {
		return errors.Wrap(err, "checking class uniqueness")
	}
	if exists {
		return class.ErrNameExists
	}
	return nil
}

func (repo classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	cls.ID = uuid.New().String()
	if _, err := repo.db.ExecContext(ctx, `INSERT INTO class (id, name) VALUES ($1, $2)`, cls.ID, cls.Name); err != nil {
		if isUniqueViolation(err) {
			return class.Class{}, class.ErrNameExists
		}
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	return cls, nil
}

func (repo classRepository) GetClass(ctx context.Context, id string) (class.Class, error) {
	if _, err := uuid.Parse(id); err != nil {
		return class.Class{}, class.ErrNotFound
	}
	var row classRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM class WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return class.Class{}, class.ErrNotFound
	}
	if err != nil {
		return class.Class{}, errors.Wrap(err, "finding class")
	}
	return row.domain(), nil
}

func (repo classRepository) QueryClasses(ctx context.Context, ordering ...core.DBOrdering) ([]class.Class, error) {
	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM class`+orderBy(ordering)); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]class.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, row.domain())
	}
	return classes, nil
}

func (repo classRepository) UpdateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE class SET name = $1 WHERE id = $2`, cls.Name, cls.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return class.Class{}, class.ErrNameExists
		}
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return class.Class{}, class.ErrNotFound
	}
	return cls, nil
}

func (repo classRepository) DeleteClassesByID(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM class WHERE id = ANY($1)`, pq.StringArray(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting classes")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}

func (repo classRepository) AssignTeacher(ctx context.Context, classID, userID string) error {
	q := `INSERT INTO class_teacher (class_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, q, classID, userID); err != nil {
		return errors.Wrap(err, "assigning teacher")
	}
	return nil
}

func (repo classRepository) UnassignTeacher(ctx context.Context, classID, userID string) error {
	q := `DELETE FROM class_teacher WHERE class_id = $1 AND user_id = $2`
	if _, err := repo.db.ExecContext(ctx, q, classID, userID); err != nil {
		return errors.Wrap(err, "unassigning teacher")
	}
	return nil
}

func (repo classRepository) QueryClassTeachers(ctx context.Context, classID string) ([]user.User, error) {
	q := `SELECT u.* FROM "user" u
	      JOIN class_teacher ct ON ct.user_id = u.id
	      WHERE ct.class_id = $1
	      ORDER BY u.name ASC`
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, q, classID); err != nil {
		return nil, errors.Wrap(err, "querying class teachers")
	}
	teachers := make([]user.User, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, row.domain())
	}
	return teachers, nil
}

func (repo classRepository) QueryTeacherClassIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	q := `SELECT class_id FROM class_teacher WHERE user_id = $1`
	if err := repo.db.SelectContext(ctx, &ids, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying teacher class IDs")
	}
	return ids, nil
}

func (repo classRepository) CreateStudent(ctx context.Context, std class.Student) (class.Student, error) {
	std.ID = uuid.New().String()
	q := `INSERT INTO student (id, user_id, full_name, class_id, total_points, created_at)
	      VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, q, std.ID, std.UserID, std.FullName, std.ClassID, std.TotalPoints, std.CreatedAt)
	if err != nil {
		return class.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo classRepository) GetStudent(ctx context.Context, id string) (class.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return class.Student{}, class.ErrStudentNotFound
	}
	var row studentRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return class.Student{}, class.ErrStudentNotFound
	}
	if err != nil {
		return class.Student{}, errors.Wrap(err, "finding student")
	}
	return row.domain(), nil
}

func (repo classRepository) GetStudentByUserID(ctx context.Context, userID string) (class.Student, error) {
	var row studentRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return class.Student{}, class.ErrStudentNotFound
	}
	if err != nil {
		return class.Student{}, errors.Wrap(err, "finding student by user")
	}
	return row.domain(), nil
}

func (repo classRepository) QueryStudentsByClass(ctx context.Context, classID string, ordering ...core.DBOrdering) ([]class.Student, error) {
	var rows []studentRow
	q := `SELECT * FROM student WHERE class_id = $1` + orderBy(ordering)
	if err := repo.db.SelectContext(ctx, &rows, q, classID); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]class.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.domain())
	}
	return students, nil
}

func (repo classRepository) UpdateStudent(ctx context.Context, std class.Student) (class.Student, error) {
	q := `UPDATE student SET full_name = $1, class_id = $2 WHERE id = $3`
	res, err := repo.db.ExecContext(ctx, q, std.FullName, std.ClassID, std.ID)
	if err != nil {
		return class.Student{}, errors.Wrap(err, "updating student")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return class.Student{}, class.ErrStudentNotFound
	}
	return std, nil
}

func (repo classRepository) DeleteStudentsByID(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM student WHERE id = ANY($1)`, pq.StringArray(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting students")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}
