package access

import (
	"testing"

	"github.com/ebdplacar/backend/core/user"
)

func TestCan(t *testing.T) {
	supervisor := Actor{UserID: "sup", Role: user.RoleSupervisor}
	teacher := Actor{
		UserID:           "tch",
		Role:             user.RoleTeacher,
		ClassIDs:         []string{"c1", "c2"},
		TeacherProfileID: "p1",
	}
	student := Actor{
		UserID:         "std",
		Role:           user.RoleStudent,
		StudentID:      "s1",
		StudentClassID: "c1",
	}
	// student login never linked to a student row
	orphan := Actor{UserID: "orp", Role: user.RoleStudent}
	unknown := Actor{UserID: "x", Role: "visitor"}

	tests := []struct {
		name  string
		actor Actor
		res   Resource
		act   Action
		want  error
	}{
		// supervisor does anything
		{name: "supervisor manages users", actor: supervisor, res: UserResource("any"), act: ActionManage},
		{name: "supervisor deletes sessions", actor: supervisor, res: SessionResource("c9"), act: ActionWrite},

		// teacher scope
		{name: "teacher writes own class session", actor: teacher, res: SessionResource("c1"), act: ActionWrite},
		{name: "teacher reads own class ranking", actor: teacher, res: RankingResource("c2"), act: ActionRead},
		{name: "teacher writes other class session", actor: teacher, res: SessionResource("c9"), act: ActionWrite, want: ErrForbidden},
		{name: "teacher reads student record in own class", actor: teacher, res: StudentRecordResource("c1", "s1"), act: ActionRead},
		{name: "teacher reads own report", actor: teacher, res: TeacherReportResource("p1"), act: ActionRead},
		{name: "teacher reads another teacher's report", actor: teacher, res: TeacherReportResource("p2"), act: ActionRead, want: ErrForbidden},
		{name: "teacher never manages", actor: teacher, res: ClassResource("c1"), act: ActionManage, want: ErrForbidden},

		// student scope
		{name: "student reads own report", actor: student, res: StudentReportResource("c1", "s1"), act: ActionRead},
		{name: "student reads own record", actor: student, res: StudentRecordResource("c1", "s1"), act: ActionRead},
		{name: "student reads classmate's record", actor: student, res: StudentRecordResource("c1", "s2"), act: ActionRead, want: ErrForbidden},
		{name: "student reads own class ranking", actor: student, res: RankingResource("c1"), act: ActionRead},
		{name: "student reads own class", actor: student, res: ClassResource("c1"), act: ActionRead},
		{name: "student reads other class ranking", actor: student, res: RankingResource("c2"), act: ActionRead, want: ErrForbidden},
		{name: "student reads global ranking", actor: student, res: RankingResource(), act: ActionRead, want: ErrForbidden},
		{name: "student writes own record", actor: student, res: StudentRecordResource("c1", "s1"), act: ActionWrite, want: ErrForbidden},

		// degenerate actors
		{name: "unlinked student login", actor: orphan, res: StudentReportResource("c1", "s1"), act: ActionRead, want: ErrForbidden},
		{name: "unknown role", actor: unknown, res: RankingResource(), act: ActionRead, want: ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Can(tt.actor, tt.res, tt.act); err != tt.want {
				t.Errorf("Can() error = %v, want %v", err, tt.want)
			}
		})
	}
}
