package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ebdplacar/backend/core"
	"github.com/ebdplacar/backend/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

type userRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Username     null.String `db:"username"`
	Email        null.String `db:"email"`
	Role         string      `db:"role"`
	IsActive     bool        `db:"is_active"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func (r userRow) domain() user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username.String,
		Email:        r.Email.String,
		Role:         user.Role(r.Role),
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	var cb condBuilder
	cb.add("(username = ? OR email = ?)", username, email)
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		cb.add("NOT (id = ANY(?))", pq.StringArray(ids))
	}

	var taken struct {
		Username null.String `db:"username"`
		Email    null.String `db:"email"`
	}
	q := `SELECT username, email FROM "user"` + cb.where() + ` LIMIT 1`
	err := repo.db.GetContext(ctx, &taken, q, cb.args...)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if username != "" && taken.Username.String == username {
		return user.ErrUsernameExists
	}
	return user.ErrEmailExists
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	q := `INSERT INTO "user" (id, name, username, email, role, is_active, password_hash, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		usr.ID, usr.Name,
		null.NewString(usr.Username, usr.Username != ""),
		null.NewString(usr.Email, usr.Email != ""),
		string(usr.Role), usr.IsActive, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var cb condBuilder
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		cb.add("id = ?", filter.ID)
	case filter.Username != "":
		cb.add("username = ?", filter.Username)
	case filter.Email != "":
		cb.add("email = ?", filter.Email)
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM "user"`+cb.where(), cb.args...)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user")
	}
	return row.domain(), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	var cb condBuilder
	if filter != nil {
		// users with Name, Username or Email matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			cb.add("(name ILIKE ? OR username ILIKE ? OR email ILIKE ?)", val, val, val)
		}
		if filter.Role != "" {
			cb.add("role = ?", string(filter.Role))
		}
		if filter.IsActive != nil {
			cb.add("is_active = ?", *filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			cb.add("created_at >= ?", filter.CreatedFrom.UTC())
		}
		if !filter.CreatedTo.IsZero() {
			cb.add("created_at <= ?", filter.CreatedTo.UTC())
		}
	}

	q := `SELECT * FROM "user"` + cb.where() + orderBy(ordering)
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, q, cb.args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.domain())
	}
	return users, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	var cb condBuilder
	if usr.Name != "" {
		cb.add("name = ?", usr.Name)
	}
	if usr.Username != "" {
		cb.add("username = ?", usr.Username)
	}
	if usr.Email != "" {
		cb.add("email = ?", usr.Email)
	}
	if usr.Role != "" {
		cb.add("role = ?", string(usr.Role))
	}
	if len(usr.PasswordHash) > 0 {
		cb.add("password_hash = ?", usr.PasswordHash)
	}
	if !usr.UpdatedAt.IsZero() {
		cb.add("updated_at = ?", usr.UpdatedAt.UTC())
	}
	if !usr.LastLogin.IsZero() {
		cb.add("last_login = ?", usr.LastLogin.UTC())
	}
	if isActive != nil {
		cb.add("is_active = ?", *isActive)
	}
	if len(cb.conds) == 0 {
		return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
	}

	cb.args = append(cb.args, usr.ID)
	q := `UPDATE "user" SET ` + strings.Join(cb.conds, ", ") + ` WHERE id = $` + strconv.Itoa(len(cb.args))
	res, err := repo.db.ExecContext(ctx, q, cb.args...)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE id = ANY($1)`, pq.StringArray(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}

type profileRow struct {
	ID          string `db:"id"`
	UserID      string `db:"user_id"`
	TotalPoints int    `db:"total_points"`
}

func (r profileRow) domain() user.TeacherProfile {
	return user.TeacherProfile{ID: r.ID, UserID: r.UserID, TotalPoints: r.TotalPoints}
}

func (repo userRepository) CreateTeacherProfile(ctx context.Context, profile user.TeacherProfile) (user.TeacherProfile, error) {
	profile.ID = uuid.New().String()
	q := `INSERT INTO teacher_profile (id, user_id, total_points) VALUES ($1, $2, $3)`
	if _, err := repo.db.ExecContext(ctx, q, profile.ID, profile.UserID, profile.TotalPoints); err != nil {
		if isUniqueViolation(err) {
			return user.TeacherProfile{}, user.ErrProfileExists
		}
		return user.TeacherProfile{}, errors.Wrap(err, "inserting teacher profile")
	}
	return profile, nil
}

func (repo userRepository) GetTeacherProfile(ctx context.Context, filter user.ProfileGetFilter) (user.TeacherProfile, error) {
	var cb condBuilder
	switch {
	case filter.ID != "":
		cb.add("id = ?", filter.ID)
	case filter.UserID != "":
		cb.add("user_id = ?", filter.UserID)
	default:
		return user.TeacherProfile{}, user.ErrProfileNotFound
	}

	var row profileRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM teacher_profile`+cb.where(), cb.args...)
	if err == sql.ErrNoRows {
		return user.TeacherProfile{}, user.ErrProfileNotFound
	}
	if err != nil {
		return user.TeacherProfile{}, errors.Wrap(err, "finding teacher profile")
	}
	return row.domain(), nil
}
