package user

import (
	"context"
	"errors"
	"time"

	"github.com/ebdplacar/backend/core"
)

var (
	// errors
	ErrNotFound        = errors.New("user not found")
	ErrUsernameExists  = errors.New("a user with this username already exists")
	ErrEmailExists     = errors.New("a user with this email already exists")
	ErrProfileNotFound = errors.New("teacher profile not found")
	ErrProfileExists   = errors.New("a teacher profile already exists for this user")
)

type Repository interface {
	CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error
	CreateUser(ctx context.Context, usr User) (User, error)
	GetUser(ctx context.Context, filter GetFilter) (User, error)
	QueryUsers(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]User, error)
	// UpdateUser applies the non-zero fields of `usr`; isActive is passed
	// apart so an explicit false is distinguishable from "not provided".
	UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
	DeleteUsersByID(ctx context.Context, ids ...string) (int, error)

	CreateTeacherProfile(ctx context.Context, profile TeacherProfile) (TeacherProfile, error)
	GetTeacherProfile(ctx context.Context, filter ProfileGetFilter) (TeacherProfile, error)
}

type Service struct {
	repo Repository
	log  core.Logger
}

func NewService(repo Repository, log core.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// CheckUniqueness maps repo uniqueness errors to per-field validation errors.
func (svc *Service) CheckUniqueness(ctx context.Context, uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, email, exclUsers...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Username:  nu.Username,
		Email:     nu.Email,
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}

	// a teacher gets their score profile up front
	if usr.IsTeacher() {
		if _, err := svc.EnsureTeacherProfile(ctx, usr.ID); err != nil {
			return User{}, err
		}
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Username: core.CleanString(uname, true /* lower */)})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]User, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryUsers(ctx, filter, core.DBOrdering{Field: "name", Ascending: true})
}

func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		Name:      uu.Name,
		Username:  uu.Username,
		Email:     uu.Email,
		Role:      uu.Role,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	usr, err := svc.repo.UpdateUser(ctx, usr, uu.IsActive)
	if err != nil {
		return User{}, err
	}
	if usr.IsTeacher() {
		if _, err := svc.EnsureTeacherProfile(ctx, usr.ID); err != nil {
			return User{}, err
		}
	}
	return usr, nil
}

// Delete removes users; the store cascades to their specialization profiles
// and attendance records.
func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteUsersByID(ctx, ids...)
	return err
}

// EnsureTeacherProfile returns the user's TeacherProfile, creating it when
// missing. Safe to call concurrently: a create lost to a concurrent one falls
// back to a fetch.
func (svc *Service) EnsureTeacherProfile(ctx context.Context, userID string) (TeacherProfile, error) {
	profile, err := svc.repo.GetTeacherProfile(ctx, ProfileGetFilter{UserID: userID})
	if err == nil {
		return profile, nil
	}
	if err != ErrProfileNotFound {
		return TeacherProfile{}, err
	}

	profile, err = svc.repo.CreateTeacherProfile(ctx, TeacherProfile{UserID: userID})
	if err == ErrProfileExists {
		return svc.repo.GetTeacherProfile(ctx, ProfileGetFilter{UserID: userID})
	}
	return profile, err
}

// Profile returns the TeacherProfile attached to the given user.
func (svc *Service) Profile(ctx context.Context, userID string) (TeacherProfile, error) {
	return svc.repo.GetTeacherProfile(ctx, ProfileGetFilter{UserID: userID})
}
