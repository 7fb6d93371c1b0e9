package intervention

import (
	"context"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
)

type Service struct {
	*crud.Entity[Intervention]
	students crud.Checker
	subjects crud.Checker
	periods  crud.Checker
	teachers crud.Checker
}

var _ crud.Service[Intervention, NewIntervention, UpdateIntervention] = (*Service)(nil) // interface compliance check

func NewService(store crud.Store[Intervention], students, subjects, periods, teachers crud.Checker, validate *core.Validator) *Service {
	e := &crud.Entity[Intervention]{
		Name:         perm.Interventions,
		Label:        "Intervention",
		Store:        store,
		Validator:    validate,
		SearchFields: []string{"student_name", "subject_name", "reason", "action_plan"},
		SortFields:   []string{"student_name", "subject_name", "status", "start_date", "end_date", "created_at"},
		FilterFields: []string{"student_id", "subject_id", "grading_period_id", "teacher_id", "status"},
		DateField:    "start_date",
		DefaultOrder: []core.DBOrdering{{Field: "created_at", Ascending: false}},
		OptionLabel:  func(i Intervention) string { return i.StudentName + " - " + i.SubjectName },
	}
	e.SetSchema(NewIntervention{}, UpdateIntervention{})
	return &Service{Entity: e, students: students, subjects: subjects, periods: periods, teachers: teachers}
}

func (svc *Service) mutation(c crud.Caller, in NewIntervention) crud.Mutation[Intervention] {
	return crud.Mutation[Intervention]{
		Input: in,
		Refs: []crud.Ref{
			{Field: "student_id", ID: in.StudentID, In: svc.students},
			{Field: "subject_id", ID: in.SubjectID, In: svc.subjects},
			{Field: "grading_period_id", ID: in.GradingPeriodID, In: svc.periods},
			{Field: "teacher_id", ID: in.TeacherID, In: svc.teachers},
		},
		Build: func(i *Intervention) error {
			i.StudentID = in.StudentID
			i.SubjectID = in.SubjectID
			i.GradingPeriodID = in.GradingPeriodID
			i.TeacherID = in.TeacherID
			if i.TeacherID == "" && c.Caps().IsTeacher() {
				i.TeacherID = c.ProfileID
			}
			i.Reason = in.Reason
			i.ActionPlan = in.ActionPlan
			i.Status = in.Status
			if i.Status == "" {
				i.Status = StatusOpen
			}
			i.StartDate = in.StartDate
			i.EndDate = in.EndDate
			return nil
		},
		Check: func(_ context.Context, i Intervention) error {
			if !i.StartDate.IsZero() && !i.EndDate.IsZero() && i.EndDate.Before(i.StartDate) {
				return core.NewValidationError(nil, core.FieldError{Field: "end_date", Error: "end date cannot be before start date"})
			}
			return nil
		},
	}
}

func (svc *Service) Create(ctx context.Context, c crud.Caller, ni NewIntervention) (Intervention, error) {
	ni.Clean()
	return svc.Entity.Create(ctx, c, svc.mutation(c, ni))
}

func (svc *Service) Update(ctx context.Context, c crud.Caller, id string, ui UpdateIntervention) (Intervention, error) {
	ui.Clean()
	return svc.Entity.Update(ctx, c, id, svc.mutation(c, NewIntervention(ui)))
}
