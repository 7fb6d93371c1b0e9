package gradingperiod

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
	"github.com/trezcool/lmsadmin/core/semester"
)

type Service struct {
	*crud.Entity[GradingPeriod]
	semesters crud.Store[semester.Semester]
}

var _ crud.Service[GradingPeriod, NewGradingPeriod, UpdateGradingPeriod] = (*Service)(nil) // interface compliance check

func NewService(store crud.Store[GradingPeriod], semesters crud.Store[semester.Semester], validate *core.Validator) *Service {
	e := &crud.Entity[GradingPeriod]{
		Name:         perm.GradingPeriods,
		Label:        "Grading period",
		Store:        store,
		Validator:    validate,
		SearchFields: []string{"name", "semester_name"},
		SortFields:   []string{"name", "semester_name", "start_date", "end_date", "status", "created_at"},
		FilterFields: []string{"semester_id", "status"},
		DateField:    "start_date",
		DefaultOrder: []core.DBOrdering{{Field: "start_date", Ascending: true}},
		OptionLabel: func(gp GradingPeriod) string {
			if gp.SemesterName == "" {
				return gp.Name
			}
			return gp.Name + " - " + gp.SemesterName
		},
	}
	e.SetSchema(NewGradingPeriod{}, UpdateGradingPeriod{})
	return &Service{Entity: e, semesters: semesters}
}

func (svc *Service) mutation(in NewGradingPeriod) crud.Mutation[GradingPeriod] {
	return crud.Mutation[GradingPeriod]{
		Input: in,
		Refs:  []crud.Ref{{Field: "semester_id", ID: in.SemesterID, In: svc.semesters}},
		Build: func(gp *GradingPeriod) error {
			gp.Name = in.Name
			gp.SemesterID = in.SemesterID
			gp.StartDate = in.StartDate
			gp.EndDate = in.EndDate
			gp.Status = in.Status
			if gp.Status == "" {
				gp.Status = StatusUpcoming
			}
			return nil
		},
		Check: svc.check,
	}
}

// check keeps the period ordered and inside its semester.
func (svc *Service) check(ctx context.Context, gp GradingPeriod) error {
	if !gp.StartDate.Before(gp.EndDate) {
		return core.NewValidationError(nil, core.FieldError{Field: "end_date", Error: "end date must be after start date"})
	}
	sem, err := svc.semesters.Get(ctx, gp.SemesterID)
	if err != nil {
		return errors.Wrap(err, "getting semester")
	}
	if gp.StartDate.Before(sem.StartDate) || gp.EndDate.After(sem.EndDate) {
		return core.NewValidationError(nil, core.FieldError{
			Field: "start_date",
			Error: "grading period must fall within the semester (" + sem.StartDate.String() + " to " + sem.EndDate.String() + ")",
		})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, c crud.Caller, ng NewGradingPeriod) (GradingPeriod, error) {
	ng.Clean()
	return svc.Entity.Create(ctx, c, svc.mutation(ng))
}

func (svc *Service) Update(ctx context.Context, c crud.Caller, id string, ug UpdateGradingPeriod) (GradingPeriod, error) {
	ug.Clean()
	return svc.Entity.Update(ctx, c, id, svc.mutation(NewGradingPeriod(ug)))
}
