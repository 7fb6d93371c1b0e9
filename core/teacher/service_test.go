package teacher_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/teacher"
	"github.com/trezcool/lmsadmin/testutil"
)

func TestService_Unique(t *testing.T) {
	env := testutil.NewEnv(t)
	fx := env.Seed(t) // grace@school.test, T-001
	ctx := context.Background()
	admin := testutil.Admin()

	tests := []struct {
		name    string
		number  string
		email   string
		wantMsg string
	}{
		{"duplicate email", "T-002", "grace@school.test", "a teacher with this email already exists"},
		{"duplicate email, other case", "T-002", "  GRACE@School.test ", "a teacher with this email already exists"},
		{"duplicate employee number", "T-001", "linus@school.test", "a teacher with this employee number already exists"},
		{"unique", "T-002", "linus@school.test", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := env.Services.Teachers.Create(ctx, admin, teacher.NewTeacher{
				EmployeeNumber: tc.number, FirstName: "Linus", LastName: "Torvalds", Email: tc.email,
			})
			if tc.wantMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, "linus@school.test", got.Email)
				assert.Equal(t, teacher.StatusActive, got.Status)
				return
			}
			require.True(t, core.IsConflict(err), "got %v", err)
			assert.Equal(t, tc.wantMsg, err.Error())
		})
	}

	// a teacher keeps their own email on update
	ut := teacher.UpdateTeacher{
		EmployeeNumber: "T-001", FirstName: "Grace", LastName: "Hopper", Email: "grace@school.test", Status: teacher.StatusOnLeave,
	}
	got, err := env.Services.Teachers.Update(ctx, admin, fx.Teacher.ID, ut)
	require.NoError(t, err)
	assert.Equal(t, teacher.StatusOnLeave, got.Status)

	ut.Email = "linus@school.test"
	_, err = env.Services.Teachers.Update(ctx, admin, fx.Teacher.ID, ut)
	require.True(t, core.IsConflict(err), "got %v", err)
}

func TestService_Recipients(t *testing.T) {
	env := testutil.NewEnv(t)
	fx := env.Seed(t)
	ctx := context.Background()

	_, err := env.Services.Teachers.Create(ctx, testutil.Admin(), teacher.NewTeacher{
		EmployeeNumber: "T-002", FirstName: "Edsger", LastName: "Dijkstra", Email: "edsger@school.test",
		Status: teacher.StatusInactive,
	})
	require.NoError(t, err)

	addrs, err := env.Services.Teachers.Recipients(ctx)
	require.NoError(t, err)
	require.Len(t, addrs, 1, "inactive teachers get no mail")
	assert.Equal(t, fx.Teacher.Email, addrs[0].Address)
	assert.Equal(t, "Grace Hopper", addrs[0].Name)
}
