package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebdplacar/backend/core"
	"github.com/ebdplacar/backend/core/user"
	dummydb "github.com/ebdplacar/backend/storage/database/dummy"
	testutil "github.com/ebdplacar/backend/tests"
)

func newService(t *testing.T) (*user.Service, user.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewUserRepository(db)
	return user.NewService(repo, testutil.Logger{}), repo
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	usr, err := svc.Create(ctx, user.NewUser{
		Name:     "Carla Mota",
		Username: "carlamota",
		Email:    "carla@test.test",
		Password: "LePassword007!",
		Role:     user.RoleTeacher,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.True(t, usr.IsActive)
	assert.NoError(t, usr.CheckPassword("LePassword007!"))

	// a teacher gets a profile on creation
	profile, err := svc.Profile(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, usr.ID, profile.UserID)
	assert.Zero(t, profile.TotalPoints)

	// a supervisor does not
	sup, err := svc.Create(ctx, user.NewUser{Name: "Sup", Username: "supervisora", Password: "LePassword007!", Role: user.RoleSupervisor})
	require.NoError(t, err)
	_, err = svc.Profile(ctx, sup.ID)
	assert.Equal(t, user.ErrProfileNotFound, err)
}

func TestCheckUniqueness(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	usr := testutil.CreateUser(t, repo, "Carla Mota", "carlamota", "carla@test.test", "", user.RoleTeacher, true)

	tests := []struct {
		name      string
		uname     string
		email     string
		wantField string
	}{
		{name: "free", uname: "davireis", email: "davi@test.test"},
		{name: "username taken", uname: "carlamota", email: "davi@test.test", wantField: "username"},
		{name: "email taken", uname: "davireis", email: "carla@test.test", wantField: "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CheckUniqueness(ctx, tt.uname, tt.email)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Len(t, vErr.Fields, 1)
			assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
		})
	}

	// the owner is excluded when editing themselves
	assert.NoError(t, svc.CheckUniqueness(ctx, "carlamota", "carla@test.test", usr))
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	usr := testutil.CreateUser(t, repo, "Carla Mota", "carlamota", "carla@test.test", "", user.RoleTeacher, true)

	got, err := svc.GetByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	got, err = svc.GetByUsername(ctx, " CarlaMota ")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	got, err = svc.GetByEmail(ctx, "carla@test.test")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	_, err = svc.GetByID(ctx, "nope")
	assert.Equal(t, user.ErrNotFound, err)
}

func TestQuery(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	testutil.CreateUser(t, repo, "Carla Mota", "carlamota", "carla@test.test", "", user.RoleTeacher, true, old)
	testutil.CreateUser(t, repo, "Ana Costa", "anacosta", "ana@test.test", "", user.RoleStudent, true)
	testutil.CreateUser(t, repo, "Davi Reis", "davireis", "davi@test.test", "", user.RoleTeacher, false)

	isActive := true
	tests := []struct {
		name      string
		filter    *user.QueryFilter
		wantNames []string
	}{
		{name: "all ordered by name", wantNames: []string{"Ana Costa", "Carla Mota", "Davi Reis"}},
		{name: "by role", filter: &user.QueryFilter{Role: user.RoleTeacher}, wantNames: []string{"Carla Mota", "Davi Reis"}},
		{name: "active teachers", filter: &user.QueryFilter{Role: user.RoleTeacher, IsActive: &isActive}, wantNames: []string{"Carla Mota"}},
		{name: "search", filter: &user.QueryFilter{Search: "costa"}, wantNames: []string{"Ana Costa"}},
		{name: "created since", filter: &user.QueryFilter{CreatedFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}, wantNames: []string{"Ana Costa", "Davi Reis"}},
		{name: "no match", filter: &user.QueryFilter{Search: "zzz"}, wantNames: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := svc.Query(ctx, tt.filter)
			require.NoError(t, err)
			names := make([]string, 0, len(users))
			for _, u := range users {
				names = append(names, u.Name)
			}
			if tt.wantNames == nil {
				assert.Empty(t, names)
			} else {
				assert.Equal(t, tt.wantNames, names)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	usr := testutil.CreateUser(t, repo, "Carla Mota", "carlamota", "carla@test.test", "", user.RoleStudent, true)

	inactive := false
	got, err := svc.Update(ctx, usr.ID, user.UpdateUser{Name: "Carla M. Mota", IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Carla M. Mota", got.Name)
	assert.False(t, got.IsActive)
	// untouched fields survive
	assert.Equal(t, "carlamota", got.Username)

	// promoting to teacher provisions the profile
	got, err = svc.Update(ctx, usr.ID, user.UpdateUser{Role: user.RoleTeacher})
	require.NoError(t, err)
	require.True(t, got.IsTeacher())
	_, err = svc.Profile(ctx, usr.ID)
	assert.NoError(t, err)
}

func TestEnsureTeacherProfile(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	usr := testutil.CreateUser(t, repo, "Carla Mota", "carlamota", "", "", user.RoleTeacher, true)

	profile, err := svc.EnsureTeacherProfile(ctx, usr.ID)
	require.NoError(t, err)
	require.NotEmpty(t, profile.ID)

	// idempotent
	again, err := svc.EnsureTeacherProfile(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	usr, err := svc.Create(ctx, user.NewUser{Name: "Carla Mota", Username: "carlamota", Password: "LePassword007!", Role: user.RoleTeacher})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, usr.ID))
	_, err = svc.GetByID(ctx, usr.ID)
	assert.Equal(t, user.ErrNotFound, err)
	// the profile goes with the user
	_, err = svc.Profile(ctx, usr.ID)
	assert.Equal(t, user.ErrProfileNotFound, err)
}
