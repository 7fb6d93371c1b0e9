package activity

import (
	"context"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
)

type Service struct {
	*crud.Entity[Activity]
	subjects crud.Checker
	periods  crud.Checker
}

var _ crud.Service[Activity, NewActivity, UpdateActivity] = (*Service)(nil) // interface compliance check

func NewService(store crud.Store[Activity], subjects, periods crud.Checker, validate *core.Validator) *Service {
	e := &crud.Entity[Activity]{
		Name:         perm.Activities,
		Label:        "Activity",
		Store:        store,
		Validator:    validate,
		SearchFields: []string{"title", "description", "subject_name"},
		SortFields:   []string{"title", "subject_name", "grading_period_name", "due_date", "max_score", "status", "created_at"},
		FilterFields: []string{"subject_id", "grading_period_id", "status"},
		DateField:    "due_date",
		DefaultOrder: []core.DBOrdering{{Field: "due_date", Ascending: false}},
		Scope:        crud.HideDrafts("status", StatusDraft),
		OptionLabel:  func(a Activity) string { return a.Title },
	}
	e.SetSchema(NewActivity{}, UpdateActivity{})
	return &Service{Entity: e, subjects: subjects, periods: periods}
}

func (svc *Service) mutation(in NewActivity) crud.Mutation[Activity] {
	return crud.Mutation[Activity]{
		Input: in,
		Refs: []crud.Ref{
			{Field: "subject_id", ID: in.SubjectID, In: svc.subjects},
			{Field: "grading_period_id", ID: in.GradingPeriodID, In: svc.periods},
		},
		Build: func(a *Activity) error {
			a.Title = in.Title
			a.SubjectID = in.SubjectID
			a.GradingPeriodID = in.GradingPeriodID
			a.DueDate = in.DueDate
			a.MaxScore = in.MaxScore
			a.Description = in.Description
			a.Status = in.Status
			if a.Status == "" {
				a.Status = StatusPublished
			}
			return nil
		},
	}
}

func (svc *Service) Create(ctx context.Context, c crud.Caller, na NewActivity) (Activity, error) {
	na.Clean()
	return svc.Entity.Create(ctx, c, svc.mutation(na))
}

func (svc *Service) Update(ctx context.Context, c crud.Caller, id string, ua UpdateActivity) (Activity, error) {
	ua.Clean()
	return svc.Entity.Update(ctx, c, id, svc.mutation(NewActivity(ua)))
}

func (svc *Service) SetAttachment(ctx context.Context, c crud.Caller, id, path string) (Activity, error) {
	return svc.Attach(ctx, c, id, func(a *Activity) { a.Attachment = path })
}
