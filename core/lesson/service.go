package lesson

import (
	"context"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
)

type Service struct {
	*crud.Entity[Lesson]
	subjects crud.Checker
	periods  crud.Checker
	teachers crud.Checker
}

var _ crud.Service[Lesson, NewLesson, UpdateLesson] = (*Service)(nil) // interface compliance check

func NewService(store crud.Store[Lesson], subjects, periods, teachers crud.Checker, validate *core.Validator) *Service {
	e := &crud.Entity[Lesson]{
		Name:         perm.Lessons,
		Label:        "Lesson",
		Store:        store,
		Validator:    validate,
		SearchFields: []string{"title", "content", "subject_name", "teacher_name"},
		SortFields:   []string{"title", "subject_name", "teacher_name", "status", "created_at"},
		FilterFields: []string{"subject_id", "grading_period_id", "teacher_id", "status"},
		DefaultOrder: []core.DBOrdering{{Field: "created_at", Ascending: false}},
		Scope:        crud.HideDrafts("status", StatusDraft),
		OptionLabel:  func(l Lesson) string { return l.Title },
	}
	e.SetSchema(NewLesson{}, UpdateLesson{})
	return &Service{Entity: e, subjects: subjects, periods: periods, teachers: teachers}
}

func (svc *Service) mutation(c crud.Caller, in NewLesson) crud.Mutation[Lesson] {
	return crud.Mutation[Lesson]{
		Input: in,
		Refs: []crud.Ref{
			{Field: "subject_id", ID: in.SubjectID, In: svc.subjects},
			{Field: "grading_period_id", ID: in.GradingPeriodID, In: svc.periods},
			{Field: "teacher_id", ID: in.TeacherID, In: svc.teachers},
		},
		Build: func(l *Lesson) error {
			l.Title = in.Title
			l.SubjectID = in.SubjectID
			l.GradingPeriodID = in.GradingPeriodID
			l.TeacherID = in.TeacherID
			if l.TeacherID == "" && c.Caps().IsTeacher() {
				l.TeacherID = c.ProfileID
			}
			l.Content = in.Content
			l.Status = in.Status
			if l.Status == "" {
				l.Status = StatusPublished
			}
			return nil
		},
	}
}

func (svc *Service) Create(ctx context.Context, c crud.Caller, nl NewLesson) (Lesson, error) {
	nl.Clean()
	return svc.Entity.Create(ctx, c, svc.mutation(c, nl))
}

func (svc *Service) Update(ctx context.Context, c crud.Caller, id string, ul UpdateLesson) (Lesson, error) {
	ul.Clean()
	return svc.Entity.Update(ctx, c, id, svc.mutation(c, NewLesson(ul)))
}

// SetFile stores the path of an uploaded PDF on the lesson.
func (svc *Service) SetFile(ctx context.Context, c crud.Caller, id, path string) (Lesson, error) {
	return svc.Attach(ctx, c, id, func(l *Lesson) { l.File = path })
}
