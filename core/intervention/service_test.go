package intervention_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/intervention"
	"github.com/trezcool/lmsadmin/testutil"
)

func TestService_Dates(t *testing.T) {
	env := testutil.NewEnv(t)
	fx := env.Seed(t)
	ctx := context.Background()
	year := time.Now().Year()

	tests := []struct {
		name    string
		start   core.Date
		end     core.Date
		wantErr bool
	}{
		{"no dates", core.Date{}, core.Date{}, false},
		{"open ended", core.NewDate(year, time.March, 1), core.Date{}, false},
		{"same day", core.NewDate(year, time.March, 1), core.NewDate(year, time.March, 1), false},
		{"two weeks", core.NewDate(year, time.March, 1), core.NewDate(year, time.March, 15), false},
		{"end before start", core.NewDate(year, time.March, 15), core.NewDate(year, time.March, 1), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			i, err := env.Services.Interventions.Create(ctx, testutil.Admin(), intervention.NewIntervention{
				StudentID: fx.Students[0].ID, SubjectID: fx.Subject.ID, Reason: "Falling behind",
				StartDate: tc.start, EndDate: tc.end,
			})
			if !tc.wantErr {
				require.NoError(t, err)
				assert.Equal(t, intervention.StatusOpen, i.Status)
				assert.Equal(t, "Ada Lovelace", i.StudentName)
				return
			}
			require.True(t, core.IsValidation(err), "got %v", err)
			verr := err.(*core.ValidationError)
			assert.Equal(t, "end_date", verr.Fields[0].Field)
			assert.Equal(t, "end date cannot be before start date", verr.Fields[0].Error)
		})
	}
}

func TestService_Teacher(t *testing.T) {
	env := testutil.NewEnv(t)
	fx := env.Seed(t)
	ctx := context.Background()
	in := intervention.NewIntervention{StudentID: fx.Students[1].ID, SubjectID: fx.Subject.ID, Reason: "Missed quizzes"}

	i, err := env.Services.Interventions.Create(ctx, testutil.Teacher(fx.Teacher.ID), in)
	require.NoError(t, err)
	assert.Equal(t, fx.Teacher.ID, i.TeacherID, "teachers own the interventions they open")

	i, err = env.Services.Interventions.Create(ctx, testutil.Admin(), in)
	require.NoError(t, err)
	assert.Empty(t, i.TeacherID)

	in.TeacherID = fx.Students[0].ID
	_, err = env.Services.Interventions.Create(ctx, testutil.Admin(), in)
	require.True(t, core.IsValidation(err), "got %v", err)
	assert.Equal(t, "teacher_id", err.(*core.ValidationError).Fields[0].Field)

	_, err = env.Services.Interventions.Create(ctx, testutil.Student(fx.Students[1].ID), in)
	assert.Equal(t, core.ErrUnauthorized, err)
}
