package access

import (
	"errors"

	"github.com/ebdplacar/backend/core"
	"github.com/ebdplacar/backend/core/user"
)

// ErrForbidden is returned whenever the policy denies an action. It is
// distinct from the domain ErrNotFound sentinels so callers can message the
// two cases apart; a denial is never downgraded to a silent no-op.
var ErrForbidden = errors.New("forbidden")

type Action string

const (
	// ActionRead covers reports, rankings and record listings.
	ActionRead Action = "read"
	// ActionWrite covers session provisioning, checklist saves and session deletion.
	ActionWrite Action = "write"
	// ActionManage covers lifecycle of classes, students and users. Supervisor only.
	ActionManage Action = "manage"
)

type Kind string

const (
	KindClass         Kind = "class"
	KindSession       Kind = "session"
	KindStudentRecord Kind = "student_record"
	KindTeacherRecord Kind = "teacher_record"
	KindStudentReport Kind = "student_report"
	KindTeacherReport Kind = "teacher_report"
	KindUser          Kind = "user"
	KindRanking       Kind = "ranking"
)

// Resource identifies what an action is aimed at, carrying just enough
// ownership context for the predicates: the class it belongs to and/or the
// person owning it.
type Resource struct {
	Kind             Kind
	ClassID          string
	StudentID        string
	TeacherProfileID string
	UserID           string
}

func ClassResource(classID string) Resource {
	return Resource{Kind: KindClass, ClassID: classID}
}

func SessionResource(classID string) Resource {
	return Resource{Kind: KindSession, ClassID: classID}
}

func StudentRecordResource(classID, studentID string) Resource {
	return Resource{Kind: KindStudentRecord, ClassID: classID, StudentID: studentID}
}

func TeacherRecordResource(classID, profileID string) Resource {
	return Resource{Kind: KindTeacherRecord, ClassID: classID, TeacherProfileID: profileID}
}

func StudentReportResource(classID, studentID string) Resource {
	return Resource{Kind: KindStudentReport, ClassID: classID, StudentID: studentID}
}

func TeacherReportResource(profileID string) Resource {
	return Resource{Kind: KindTeacherReport, TeacherProfileID: profileID}
}

func UserResource(userID string) Resource {
	return Resource{Kind: KindUser, UserID: userID}
}

// RankingResource is a program-wide aggregate view; ClassID narrows it to one
// class's aggregates.
func RankingResource(classID ...string) Resource {
	res := Resource{Kind: KindRanking}
	if len(classID) > 0 {
		res.ClassID = classID[0]
	}
	return res
}

// Actor is a login identity with its role context resolved once per request:
// the classes a teacher is assigned to, or the student row a student login is
// linked to. Predicates run on this snapshot, never back to the store.
type Actor struct {
	UserID           string
	Role             user.Role
	ClassIDs         []string // teacher: assigned classes
	TeacherProfileID string   // teacher: own profile
	StudentID        string   // student: own student row
	StudentClassID   string   // student: own class
}

// Can reports whether the actor may perform the action on the resource.
// Role precedence, first match wins:
//  1. supervisor: always allowed
//  2. teacher: allowed on resources of an assigned class, and on their own
//     records and reports; never ActionManage
//  3. student: read-only on their own records/report and on their own class's
//     aggregates
//  4. anyone else: denied
// Returns nil or ErrForbidden.
func Can(actor Actor, res Resource, act Action) error {
	switch actor.Role {
	case user.RoleSupervisor:
		return nil
	case user.RoleTeacher:
		if act == ActionManage {
			return ErrForbidden
		}
		if res.ClassID != "" && core.ContainsString(actor.ClassIDs, res.ClassID) {
			return nil
		}
		if ownsTeacherResource(actor, res) {
			return nil
		}
		return ErrForbidden
	case user.RoleStudent:
		if act != ActionRead {
			return ErrForbidden
		}
		if ownsStudentResource(actor, res) {
			return nil
		}
		if classAggregate(res) && res.ClassID != "" && res.ClassID == actor.StudentClassID {
			return nil
		}
		return ErrForbidden
	}
	return ErrForbidden
}

func ownsTeacherResource(actor Actor, res Resource) bool {
	if actor.TeacherProfileID == "" {
		return false
	}
	switch res.Kind {
	case KindTeacherRecord, KindTeacherReport:
		return res.TeacherProfileID == actor.TeacherProfileID
	}
	return false
}

func ownsStudentResource(actor Actor, res Resource) bool {
	if actor.StudentID == "" {
		return false
	}
	switch res.Kind {
	case KindStudentRecord, KindStudentReport:
		return res.StudentID == actor.StudentID
	}
	return false
}

// classAggregate reports whether the resource is an aggregate view a student
// may see for their own class.
func classAggregate(res Resource) bool {
	return res.Kind == KindClass || res.Kind == KindRanking
}
