package class_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebdplacar/backend/core"
	"github.com/ebdplacar/backend/core/class"
	testutil "github.com/ebdplacar/backend/tests"
)

func TestNewClassValidate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.CreateClass(t, f.classRepo, "Juniores")

	tests := []struct {
		name     string
		nc       class.NewClass
		wantFld  string
		wantName string
	}{
		{name: "ok", nc: class.NewClass{Name: "  Juvenis "}, wantName: "Juvenis"},
		{name: "empty", nc: class.NewClass{Name: "   "}, wantFld: "name"},
		{name: "too long", nc: class.NewClass{Name: strings.Repeat("a", 101)}, wantFld: "name"},
		{name: "taken", nc: class.NewClass{Name: "Juniores"}, wantFld: "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nc.Validate(ctx, f.svc)
			if tt.wantFld == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantName, tt.nc.Name)
				return
			}
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Len(t, vErr.Fields, 1)
			assert.Equal(t, tt.wantFld, vErr.Fields[0].Field)
		})
	}
}

func TestUpdateClassValidate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cls := testutil.CreateClass(t, f.classRepo, "Juniores")
	testutil.CreateClass(t, f.classRepo, "Juvenis")

	// keeping its own name is not a collision
	uc := class.UpdateClass{}
	require.NoError(t, uc.Validate(ctx, cls, f.svc))
	assert.Equal(t, "Juniores", uc.Name)

	uc = class.UpdateClass{Name: "Juvenis"}
	var vErr *core.ValidationError
	require.ErrorAs(t, uc.Validate(ctx, cls, f.svc), &vErr)
}

func TestNewStudentValidate(t *testing.T) {
	tests := []struct {
		name    string
		ns      class.NewStudent
		wantFld string
	}{
		{name: "ok", ns: class.NewStudent{FullName: "Ana Costa", ClassID: "c1"}},
		{
			name: "ok with login",
			ns:   class.NewStudent{FullName: "Ana Costa", ClassID: "c1", UserID: "7d444840-9dc0-41a8-a6aa-984a38162d73"},
		},
		{name: "missing name", ns: class.NewStudent{ClassID: "c1"}, wantFld: "full_name"},
		{name: "missing class", ns: class.NewStudent{FullName: "Ana Costa"}, wantFld: "class_id"},
		{
			name:    "bad user id",
			ns:      class.NewStudent{FullName: "Ana Costa", ClassID: "c1", UserID: "nope"},
			wantFld: "user_id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ns.Validate()
			if tt.wantFld == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Len(t, vErr.Fields, 1)
			assert.Equal(t, tt.wantFld, vErr.Fields[0].Field)
		})
	}
}
