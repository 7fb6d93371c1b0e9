package gradingperiod_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/gradingperiod"
	"github.com/trezcool/lmsadmin/testutil"
)

func TestService_Dates(t *testing.T) {
	env := testutil.NewEnv(t)
	fx := env.Seed(t)
	ctx := context.Background()
	year := time.Now().Year()

	tests := []struct {
		name      string
		start     core.Date
		end       core.Date
		wantField string
	}{
		{"inside the semester", core.NewDate(year, time.July, 1), core.NewDate(year, time.September, 30), ""},
		{"whole semester", core.NewDate(year, time.January, 1), core.NewDate(year, time.December, 31), ""},
		{"end before start", core.NewDate(year, time.September, 30), core.NewDate(year, time.July, 1), "end_date"},
		{"same day", core.NewDate(year, time.July, 1), core.NewDate(year, time.July, 1), "end_date"},
		{"starts before the semester", core.NewDate(year-1, time.December, 1), core.NewDate(year, time.February, 1), "start_date"},
		{"ends after the semester", core.NewDate(year, time.October, 1), core.NewDate(year+1, time.January, 31), "start_date"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gp, err := env.Services.GradingPeriods.Create(ctx, testutil.Admin(), gradingperiod.NewGradingPeriod{
				Name: "Q", SemesterID: fx.Semester.ID, StartDate: tc.start, EndDate: tc.end,
			})
			if tc.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, gradingperiod.StatusUpcoming, gp.Status)
				assert.Equal(t, "First Semester", gp.SemesterName)
				return
			}
			require.True(t, core.IsValidation(err), "got %v", err)
			assert.Equal(t, tc.wantField, err.(*core.ValidationError).Fields[0].Field)
		})
	}
}

func TestService_Options(t *testing.T) {
	env := testutil.NewEnv(t)
	fx := env.Seed(t)

	opts, err := env.Services.GradingPeriods.Options(context.Background(), testutil.Student(fx.Students[0].ID))
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Equal(t, "Q1 - First Semester", opts[0].Label)
}
