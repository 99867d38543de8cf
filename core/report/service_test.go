package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebdplacar/backend/core/attendance"
	"github.com/ebdplacar/backend/core/class"
	"github.com/ebdplacar/backend/core/report"
	"github.com/ebdplacar/backend/core/user"
	dummydb "github.com/ebdplacar/backend/storage/database/dummy"
	testutil "github.com/ebdplacar/backend/tests"
)

type fixture struct {
	userRepo  user.Repository
	classRepo class.Repository
	attSvc    *attendance.Service
	svc       *report.Service

	cls1, cls2       class.Class
	s1, s2, s3       class.Student
	teacher          user.User
	profile          user.TeacherProfile
	week1, week2     time.Time
	sess1w1, sess1w2 attendance.Session
}

// newFixture seeds two classes over two weeks:
//
//	week1: s1 scores 2, s2 scores 4, s3 (cls2) scores 1, teacher scores 2
//	week2: s2 scores 5, everyone else blank
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := dummydb.Open()
	require.NoError(t, err)

	f := &fixture{
		userRepo:  dummydb.NewUserRepository(db),
		classRepo: dummydb.NewClassRepository(db),
		week1:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		week2:     time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC),
	}
	f.attSvc = attendance.NewService(dummydb.NewAttendanceRepository(db), f.classRepo, f.userRepo, testutil.Logger{})
	f.svc = report.NewService(dummydb.NewReportRepository(db), f.classRepo, f.userRepo)

	f.cls1 = testutil.CreateClass(t, f.classRepo, "Juniores")
	f.cls2 = testutil.CreateClass(t, f.classRepo, "Juvenis")
	f.s1 = testutil.CreateStudent(t, f.classRepo, f.cls1.ID, "Ana Costa")
	f.s2 = testutil.CreateStudent(t, f.classRepo, f.cls1.ID, "Bruno Dias")
	f.s3 = testutil.CreateStudent(t, f.classRepo, f.cls2.ID, "Eva Pinto")
	f.teacher, f.profile = testutil.CreateTeacher(t, f.userRepo, "Carla Mota")
	require.NoError(t, f.classRepo.AssignTeacher(ctx, f.cls1.ID, f.teacher.ID))

	mark := func(sessID, studentID string, cl attendance.StudentChecklist) {
		recs, _, err := f.attSvc.Records(ctx, sessID)
		require.NoError(t, err)
		for _, rec := range recs {
			if rec.StudentID == studentID {
				_, err = f.attSvc.RecordStudentChecklist(ctx, rec.ID, cl)
				require.NoError(t, err)
				return
			}
		}
		t.Fatalf("no record for student %s in session %s", studentID, sessID)
	}

	f.sess1w1, err = f.attSvc.EnsureSession(ctx, f.cls1.ID, f.week1, f.teacher)
	require.NoError(t, err)
	mark(f.sess1w1.ID, f.s1.ID, attendance.StudentChecklist{Presence: true, Bible: true})
	mark(f.sess1w1.ID, f.s2.ID, attendance.StudentChecklist{Presence: true, Bible: true, Scripture: true, Offering: true})

	_, tchrRecs, err := f.attSvc.Records(ctx, f.sess1w1.ID)
	require.NoError(t, err)
	require.Len(t, tchrRecs, 1)
	_, err = f.attSvc.RecordTeacherChecklist(ctx, tchrRecs[0].ID, attendance.TeacherChecklist{Presence: true, Bible: true})
	require.NoError(t, err)

	sess2w1, err := f.attSvc.EnsureSession(ctx, f.cls2.ID, f.week1, f.teacher)
	require.NoError(t, err)
	mark(sess2w1.ID, f.s3.ID, attendance.StudentChecklist{Presence: true})

	f.sess1w2, err = f.attSvc.EnsureSession(ctx, f.cls1.ID, f.week2, f.teacher)
	require.NoError(t, err)
	mark(f.sess1w2.ID, f.s2.ID, attendance.StudentChecklist{Presence: true, Bible: true, Scripture: true, Offering: true, Activities: true})

	return f
}

func TestRankStudents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ranked, err := f.svc.RankStudents(ctx, report.Window{})
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, f.s2.ID, ranked[0].StudentID)
	assert.Equal(t, 9, ranked[0].Points)
	assert.Equal(t, f.s1.ID, ranked[1].StudentID)
	assert.Equal(t, 2, ranked[1].Points)
	assert.Equal(t, f.s3.ID, ranked[2].StudentID)
	assert.Equal(t, 1, ranked[2].Points)

	// top-N
	top, err := f.svc.RankStudents(ctx, report.Window{}, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, f.s2.ID, top[0].StudentID)

	// windowed to week2 only s2 scored
	w := report.Between(f.week2, f.week2)
	ranked, err = f.svc.RankStudents(ctx, w)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, f.s2.ID, ranked[0].StudentID)
	assert.Equal(t, 5, ranked[0].Points)
}

func TestRankStudentsExcludesZero(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// a brand new student with blank records never ranks
	testutil.CreateStudent(t, f.classRepo, f.cls1.ID, "Zeca Lima")
	_, err := f.attSvc.EnsureSession(ctx, f.cls1.ID, f.week2, f.teacher)
	require.NoError(t, err)

	ranked, err := f.svc.RankStudents(ctx, report.Window{})
	require.NoError(t, err)
	assert.Len(t, ranked, 3)
}

func TestRankClasses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ranked, err := f.svc.RankClasses(ctx, report.Window{})
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	// cls1: (2 + 9) / 2 students; cls2: 1 / 1 student
	assert.Equal(t, f.cls1.ID, ranked[0].ClassID)
	assert.InDelta(t, 5.5, ranked[0].Average, 0.001)
	assert.Equal(t, f.cls2.ID, ranked[1].ClassID)
	assert.InDelta(t, 1.0, ranked[1].Average, 0.001)
}

func TestRankTeachers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ranked, err := f.svc.RankTeachers(ctx, report.Window{})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, f.profile.ID, ranked[0].ProfileID)
	assert.Equal(t, f.teacher.Name, ranked[0].Name)
	assert.Equal(t, 2, ranked[0].Points)

	// week2: the teacher's record stayed blank
	ranked, err = f.svc.RankTeachers(ctx, report.Between(f.week2, f.week2))
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestStudentReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rpt, err := f.svc.StudentReport(ctx, f.s2.ID, report.Window{})
	require.NoError(t, err)
	assert.Equal(t, f.s2.ID, rpt.Student.ID)
	require.Len(t, rpt.Entries, 2)
	// newest first
	assert.Equal(t, f.week2, rpt.Entries[0].Date)
	assert.Equal(t, 5, rpt.Entries[0].PointsEarned)
	assert.Equal(t, 2, rpt.PresentCount)
	assert.Equal(t, 0, rpt.AbsentCount)
	assert.Equal(t, 9, rpt.TotalPoints)

	// s1 was blank (absent) in week2
	rpt, err = f.svc.StudentReport(ctx, f.s1.ID, report.Window{})
	require.NoError(t, err)
	require.Len(t, rpt.Entries, 2)
	assert.Equal(t, 1, rpt.PresentCount)
	assert.Equal(t, 1, rpt.AbsentCount)
	assert.Equal(t, 2, rpt.TotalPoints)

	// windowing trims entries but keeps the lifetime total
	rpt, err = f.svc.StudentReport(ctx, f.s2.ID, report.Between(f.week1, f.week1))
	require.NoError(t, err)
	require.Len(t, rpt.Entries, 1)
	assert.Equal(t, 9, rpt.TotalPoints)

	_, err = f.svc.StudentReport(ctx, "nope", report.Window{})
	assert.Equal(t, class.ErrStudentNotFound, err)
}

func TestTeacherReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rpt, err := f.svc.TeacherReport(ctx, f.profile.ID, report.Window{})
	require.NoError(t, err)
	assert.Equal(t, f.teacher.ID, rpt.User.ID)
	require.Len(t, rpt.Entries, 2)
	assert.Equal(t, 1, rpt.PresentCount)
	assert.Equal(t, 1, rpt.AbsentCount)
	assert.Equal(t, 2, rpt.TotalPoints)

	_, err = f.svc.TeacherReport(ctx, "nope", report.Window{})
	assert.Equal(t, user.ErrProfileNotFound, err)
}
