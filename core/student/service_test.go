package student_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/student"
	"github.com/trezcool/lmsadmin/testutil"
)

func validStudent() student.NewStudent {
	return student.NewStudent{
		StudentNumber: "S-100",
		FirstName:     "Katherine",
		LastName:      "Johnson",
		Email:         "Katherine@School.test ",
		BirthDate:     core.NewDate(2010, time.August, 26),
		GradeLevel:    "8",
		Section:       "A",
	}
}

func TestService_CreateRequiresFirstName(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	ns := validStudent()
	ns.FirstName = "  "
	_, err := env.Services.Students.Create(ctx, testutil.Admin(), ns)
	require.Error(t, err)

	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr), "got %T", err)
	assert.Contains(t, vErr.Error(), "first name")

	count, err := env.Services.Students.Count(ctx, testutil.Admin())
	require.NoError(t, err)
	assert.Zero(t, count, "nothing is stored")
}

func TestService_CreateListsEveryMissingField(t *testing.T) {
	env := testutil.NewEnv(t)

	_, err := env.Services.Students.Create(context.Background(), testutil.Admin(), student.NewStudent{})
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))

	var fields []string
	for _, fe := range vErr.Fields {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"student_number", "first_name", "last_name", "email"}, fields)
	assert.ElementsMatch(t, fields, env.Services.Students.Schema().Create)
}

func TestService_RoundTrip(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	admin := testutil.Admin()

	created, err := env.Services.Students.Create(ctx, admin, validStudent())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, "katherine@school.test", created.Email)
	assert.Equal(t, student.StatusActive, created.Status)

	got, err := env.Services.Students.Get(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	us := student.UpdateStudent(validStudent())
	us.Section = "B"
	us.Status = student.StatusGraduated
	updated, err := env.Services.Students.Update(ctx, admin, created.ID, us)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "B", updated.Section)
	assert.Equal(t, student.StatusGraduated, updated.Status)

	require.NoError(t, env.Services.Students.Delete(ctx, admin, created.ID))
	_, err = env.Services.Students.Get(ctx, admin, created.ID)
	assert.True(t, core.IsNotFound(err))
}

func TestService_Uniqueness(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	admin := testutil.Admin()

	first, err := env.Services.Students.Create(ctx, admin, validStudent())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(ns *student.NewStudent)
	}{
		{"same email", func(ns *student.NewStudent) { ns.StudentNumber = "S-101" }},
		{"same student number", func(ns *student.NewStudent) { ns.Email = "other@school.test" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ns := validStudent()
			tc.mutate(&ns)
			_, err := env.Services.Students.Create(ctx, admin, ns)
			assert.True(t, core.IsConflict(err), "got %v", err)
		})
	}

	// a record never conflicts with itself
	_, err = env.Services.Students.Update(ctx, admin, first.ID, student.UpdateStudent(validStudent()))
	assert.NoError(t, err)
}

func TestService_ListAndOptions(t *testing.T) {
	env := testutil.NewEnv(t)
	fx := env.Seed(t)
	ctx := context.Background()
	admin := testutil.Admin()

	page, err := env.Services.Students.List(ctx, admin, crud.ListParams{Search: "turing"})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, fx.Students[1].ID, page.Rows[0].ID)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.Filtered)

	opts, err := env.Services.Students.Options(ctx, admin)
	require.NoError(t, err)
	require.Len(t, opts, 2)
	assert.Equal(t, crud.Option{Value: fx.Students[0].ID, Label: "Lovelace, Ada (S-001)"}, opts[0])

	_, err = env.Services.Students.List(ctx, testutil.Student(fx.Students[0].ID), crud.ListParams{})
	assert.Equal(t, core.ErrUnauthorized, err)
}

func TestService_Recipients(t *testing.T) {
	env := testutil.NewEnv(t)
	fx := env.Seed(t)
	ctx := context.Background()

	us := student.UpdateStudent(student.NewStudent{
		StudentNumber: fx.Students[1].StudentNumber,
		FirstName:     fx.Students[1].FirstName,
		LastName:      fx.Students[1].LastName,
		Email:         fx.Students[1].Email,
		Status:        student.StatusInactive,
	})
	_, err := env.Services.Students.Update(ctx, testutil.Admin(), fx.Students[1].ID, us)
	require.NoError(t, err)

	addrs, err := env.Services.Students.Recipients(ctx)
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.Equal(t, "ada@school.test", addrs[0].Address)
	assert.Equal(t, "Ada Lovelace", addrs[0].Name)
}
