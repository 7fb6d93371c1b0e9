package school_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/grade"
	"github.com/trezcool/lmsadmin/core/perm"
	"github.com/trezcool/lmsadmin/core/submission"
	"github.com/trezcool/lmsadmin/testutil"
)

func TestServices_Dashboard(t *testing.T) {
	env := testutil.NewEnv(t)
	fx := env.Seed(t)
	ctx := context.Background()

	counts, err := env.Services.Dashboard(ctx, testutil.Admin())
	require.NoError(t, err)
	assert.Len(t, counts, len(perm.Entities))
	assert.Equal(t, 2, counts[perm.Students])
	assert.Equal(t, 1, counts[perm.Teachers])
	assert.Equal(t, 0, counts[perm.Grades])

	counts, err = env.Services.Dashboard(ctx, testutil.Student(fx.Students[0].ID))
	require.NoError(t, err)
	assert.NotContains(t, counts, perm.Students)
	assert.NotContains(t, counts, perm.Teachers)
	assert.Contains(t, counts, perm.Grades)

	_, err = env.Services.Dashboard(ctx, crud.Caller{})
	assert.Equal(t, core.ErrUnauthenticated, err)
}

func TestServices_ReferencedRowsCannotBeDeleted(t *testing.T) {
	env := testutil.NewEnv(t)
	fx := env.Seed(t)
	ctx := context.Background()
	admin := testutil.Admin()
	env.Activity(t, fx, "Essay", core.NewDate(time.Now().Year(), time.March, 1), 10)

	err := env.Services.Subjects.Delete(ctx, admin, fx.Subject.ID)
	assert.True(t, core.IsConflict(err), "got %v", err)
	assert.Contains(t, err.Error(), "this subject is still in use")

	err = env.Services.Semesters.Delete(ctx, admin, fx.Semester.ID)
	assert.True(t, core.IsConflict(err), "the grading period uses it: %v", err)

	require.NoError(t, env.Services.Teachers.Delete(ctx, admin, fx.Teacher.ID), "unused teacher")
}

func TestServices_StudentDeleteCascades(t *testing.T) {
	env := testutil.NewEnv(t)
	fx := env.Seed(t)
	ctx := context.Background()
	admin := testutil.Admin()
	ada := fx.Students[0]
	a := env.Activity(t, fx, "Essay", core.NewDate(time.Now().Year()+1, time.March, 1), 10)

	_, err := env.Services.Grades.Create(ctx, admin, grade.NewGrade{
		StudentID: ada.ID, SubjectID: fx.Subject.ID, SemesterID: fx.Semester.ID, GradingPeriodID: fx.GradingPeriod.ID,
	})
	require.NoError(t, err)
	_, err = env.Services.Submissions.Create(ctx, testutil.Student(ada.ID), submission.NewSubmission{ActivityID: a.ID, Content: "x"})
	require.NoError(t, err)

	require.NoError(t, env.Services.Students.Delete(ctx, admin, ada.ID))

	for _, counter := range []interface {
		Count(ctx context.Context, c crud.Caller) (int, error)
	}{env.Services.Grades, env.Services.Submissions} {
		n, err := counter.Count(ctx, admin)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
}
