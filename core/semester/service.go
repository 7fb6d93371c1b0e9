package semester

import (
	"context"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
)

type Service struct {
	*crud.Entity[Semester]
}

var _ crud.Service[Semester, NewSemester, UpdateSemester] = (*Service)(nil) // interface compliance check

func NewService(store crud.Store[Semester], validate *core.Validator) *Service {
	e := &crud.Entity[Semester]{
		Name:         perm.Semesters,
		Label:        "Semester",
		Store:        store,
		Validator:    validate,
		SearchFields: []string{"name", "school_year"},
		SortFields:   []string{"name", "school_year", "start_date", "end_date", "status", "created_at"},
		FilterFields: []string{"school_year", "status"},
		DateField:    "start_date",
		DefaultOrder: []core.DBOrdering{{Field: "start_date", Ascending: false}},
		OptionLabel:  func(s Semester) string { return s.Name + " (" + s.SchoolYear + ")" },
	}
	e.SetSchema(NewSemester{}, UpdateSemester{})
	return &Service{Entity: e}
}

func mutation(in NewSemester) crud.Mutation[Semester] {
	return crud.Mutation[Semester]{
		Input: in,
		Build: func(s *Semester) error {
			s.Name = in.Name
			s.SchoolYear = in.SchoolYear
			s.StartDate = in.StartDate
			s.EndDate = in.EndDate
			s.Status = in.Status
			if s.Status == "" {
				s.Status = StatusUpcoming
			}
			return nil
		},
		Check: func(_ context.Context, s Semester) error {
			if !s.StartDate.Before(s.EndDate) {
				return core.NewValidationError(nil, core.FieldError{Field: "end_date", Error: "end date must be after start date"})
			}
			return nil
		},
	}
}

func (svc *Service) Create(ctx context.Context, c crud.Caller, ns NewSemester) (Semester, error) {
	ns.Clean()
	return svc.Entity.Create(ctx, c, mutation(ns))
}

func (svc *Service) Update(ctx context.Context, c crud.Caller, id string, us UpdateSemester) (Semester, error) {
	us.Clean()
	return svc.Entity.Update(ctx, c, id, mutation(NewSemester(us)))
}
