// Package testutil provides shared fixtures for repository and service tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/ebdplacar/backend/core/class"
	"github.com/ebdplacar/backend/core/user"
)

// Logger discards everything. Tests assert behavior, not log output.
type Logger struct{}

func (Logger) Debug(msg string, args ...interface{}) {}
func (Logger) Info(msg string, args ...interface{})  {}
func (Logger) Warn(msg string, args ...interface{})  {}
func (Logger) Error(msg string, args ...interface{}) {}
func (Logger) Fatal(msg string, args ...interface{}) {}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	role user.Role,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateTeacher creates an active teacher user with their score profile.
func CreateTeacher(t *testing.T, repo user.Repository, name string) (user.User, user.TeacherProfile) {
	t.Helper()

	usr := CreateUser(t, repo, name, "", "", "", user.RoleTeacher, true)
	profile, err := repo.CreateTeacherProfile(context.Background(), user.TeacherProfile{UserID: usr.ID})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return usr, profile
}

func CreateClass(t *testing.T, repo class.Repository, name string) class.Class {
	t.Helper()

	cls, err := repo.CreateClass(context.Background(), class.Class{Name: name})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateStudent(t *testing.T, repo class.Repository, classID, fullName string, userID ...string) class.Student {
	t.Helper()

	std := class.Student{
		FullName:  fullName,
		ClassID:   classID,
		CreatedAt: time.Now().UTC(),
	}
	if len(userID) > 0 && userID[0] != "" {
		std.UserID.SetValid(userID[0])
	}
	std, err := repo.CreateStudent(context.Background(), std)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}
