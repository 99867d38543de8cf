package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebdplacar/backend/core"
	"github.com/ebdplacar/backend/core/user"
)

func fieldNames(t *testing.T, err error) []string {
	t.Helper()

	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	names := make([]string, 0, len(vErr.Fields))
	for _, fld := range vErr.Fields {
		names = append(names, fld.Field)
	}
	return names
}

func TestNewUserValidate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	base := user.NewUser{
		Name:            "Carla Mota",
		Username:        "carlamota",
		Password:        "LeTirelipimpon007!",
		PasswordConfirm: "LeTirelipimpon007!",
		Role:            user.RoleTeacher,
	}

	tests := []struct {
		name     string
		mutate   func(*user.NewUser)
		wantFlds []string
	}{
		{name: "ok", mutate: func(nu *user.NewUser) {}},
		{name: "ok email only", mutate: func(nu *user.NewUser) { nu.Username = ""; nu.Email = "carla@test.test" }},
		{name: "name required", mutate: func(nu *user.NewUser) { nu.Name = "  " }, wantFlds: []string{"name"}},
		{
			name:     "username or email required",
			mutate:   func(nu *user.NewUser) { nu.Username = ""; nu.Email = "" },
			wantFlds: []string{"username", "email"},
		},
		{name: "username too short", mutate: func(nu *user.NewUser) { nu.Username = "carla" }, wantFlds: []string{"username"}},
		{name: "username bad chars", mutate: func(nu *user.NewUser) { nu.Username = "carla!mota" }, wantFlds: []string{"username"}},
		{name: "bad email", mutate: func(nu *user.NewUser) { nu.Email = "nope" }, wantFlds: []string{"email"}},
		{name: "bad role", mutate: func(nu *user.NewUser) { nu.Role = "principal" }, wantFlds: []string{"role"}},
		{
			name:     "password confirm mismatch",
			mutate:   func(nu *user.NewUser) { nu.PasswordConfirm = "something else" },
			wantFlds: []string{"password_confirm"},
		},
		{
			name:     "password too short",
			mutate:   func(nu *user.NewUser) { nu.Password = "Ab1!"; nu.PasswordConfirm = "Ab1!" },
			wantFlds: []string{"password"},
		},
		{
			name:     "password with whitespace",
			mutate:   func(nu *user.NewUser) { nu.Password = "Le Pass 007!"; nu.PasswordConfirm = "Le Pass 007!" },
			wantFlds: []string{"password"},
		},
		{
			name:     "password all numeric",
			mutate:   func(nu *user.NewUser) { nu.Password = "20260301007"; nu.PasswordConfirm = "20260301007" },
			wantFlds: []string{"password"},
		},
		{
			name:     "password not complex enough",
			mutate:   func(nu *user.NewUser) { nu.Password = "lepassword007"; nu.PasswordConfirm = "lepassword007" },
			wantFlds: []string{"password"},
		},
		{
			name:     "password similar to username",
			mutate:   func(nu *user.NewUser) { nu.Password = "Carlamota1!"; nu.PasswordConfirm = "Carlamota1!" },
			wantFlds: []string{"password"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := base
			tt.mutate(&nu)
			err := nu.Validate(ctx, svc)
			if tt.wantFlds == nil {
				assert.NoError(t, err)
				return
			}
			assert.ElementsMatch(t, tt.wantFlds, fieldNames(t, err))
		})
	}
}

func TestNewUserValidateUniqueness(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	nu := user.NewUser{
		Name:            "Carla Mota",
		Username:        "carlamota",
		Password:        "LeTirelipimpon007!",
		PasswordConfirm: "LeTirelipimpon007!",
		Role:            user.RoleTeacher,
	}
	require.NoError(t, nu.Validate(ctx, svc))
	_, err := svc.Create(ctx, nu)
	require.NoError(t, err)

	dup := nu
	err = dup.Validate(ctx, svc)
	assert.Equal(t, []string{"username"}, fieldNames(t, err))
}

func TestUpdateUserValidate(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	orig := user.User{Name: "Carla Mota", Username: "carlamota", Email: "carla@test.test"}
	orig, err := repo.CreateUser(ctx, orig)
	require.NoError(t, err)

	// empty fields fall back to the original values
	uu := user.UpdateUser{}
	require.NoError(t, uu.Validate(ctx, orig, svc))
	assert.Equal(t, "Carla Mota", uu.Name)
	assert.Equal(t, "carlamota", uu.Username)

	// password policy only kicks in when a password is provided
	uu = user.UpdateUser{Password: "weak", PasswordConfirm: "weak"}
	err = uu.Validate(ctx, orig, svc)
	assert.ElementsMatch(t, []string{"password"}, fieldNames(t, err))
}
