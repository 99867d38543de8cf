// Package dummydb is an in-memory implementation of the domain repositories
// for tests and local hacking. It mirrors the Postgres schema's behavior,
// including the ON DELETE cascades, under a single lock.
package dummydb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ebdplacar/backend/core/attendance"
	"github.com/ebdplacar/backend/core/class"
	"github.com/ebdplacar/backend/core/user"
)

type DB struct {
	sync.RWMutex

	users    map[string]*user.User
	profiles map[string]*user.TeacherProfile

	classes       map[string]*class.Class
	classTeachers map[string]map[string]struct{} // classID -> set of teacher userIDs
	students      map[string]*class.Student

	sessions       map[string]*attendance.Session
	studentRecords map[string]*attendance.StudentRecord
	teacherRecords map[string]*attendance.TeacherRecord
}

func Open() (*DB, error) {
	db := &DB{
		users:          make(map[string]*user.User),
		profiles:       make(map[string]*user.TeacherProfile),
		classes:        make(map[string]*class.Class),
		classTeachers:  make(map[string]map[string]struct{}),
		students:       make(map[string]*class.Student),
		sessions:       make(map[string]*attendance.Session),
		studentRecords: make(map[string]*attendance.StudentRecord),
		teacherRecords: make(map[string]*attendance.TeacherRecord),
	}
	return db, nil
}

func newPK() string { return uuid.New().String() }

// deleteUser removes a user and everything hanging off them, like the
// schema's cascades would. Caller must hold the write lock.
func (db *DB) deleteUser(id string) {
	delete(db.users, id)

	for pid, p := range db.profiles {
		if p.UserID == id {
			db.deleteProfile(pid)
		}
	}
	for sid, s := range db.students {
		if s.UserID.Valid && s.UserID.String == id {
			db.deleteStudent(sid)
		}
	}
	for _, set := range db.classTeachers {
		delete(set, id)
	}
	for _, sess := range db.sessions {
		if sess.CreatedBy.Valid && sess.CreatedBy.String == id {
			sess.CreatedBy.Valid = false
			sess.CreatedBy.String = ""
		}
	}
}

func (db *DB) deleteProfile(id string) {
	delete(db.profiles, id)
	for rid, rec := range db.teacherRecords {
		if rec.TeacherProfileID == id {
			delete(db.teacherRecords, rid)
		}
	}
}

func (db *DB) deleteStudent(id string) {
	delete(db.students, id)
	for rid, rec := range db.studentRecords {
		if rec.StudentID == id {
			delete(db.studentRecords, rid)
		}
	}
}

func (db *DB) deleteClass(id string) {
	delete(db.classes, id)
	delete(db.classTeachers, id)

	for sid, s := range db.students {
		if s.ClassID == id {
			db.deleteStudent(sid)
		}
	}
	for sid, sess := range db.sessions {
		if sess.ClassID == id {
			db.deleteSession(sid)
		}
	}
}

func (db *DB) deleteSession(id string) {
	delete(db.sessions, id)
	for rid, rec := range db.studentRecords {
		if rec.SessionID == id {
			delete(db.studentRecords, rid)
		}
	}
	for rid, rec := range db.teacherRecords {
		if rec.SessionID == id {
			delete(db.teacherRecords, rid)
		}
	}
}
