package exam

import (
	"context"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
	"github.com/trezcool/lmsadmin/core/question"
)

type Service struct {
	*crud.Entity[Exam]
	Questions question.Owner
	subjects  crud.Checker
	periods   crud.Checker
}

var _ crud.Service[Exam, NewExam, UpdateExam] = (*Service)(nil) // interface compliance check

func NewService(store crud.Store[Exam], questions *question.Service, subjects, periods crud.Checker, validate *core.Validator) *Service {
	e := &crud.Entity[Exam]{
		Name:         perm.Exams,
		Label:        "Exam",
		Store:        store,
		Validator:    validate,
		SearchFields: []string{"title", "description", "subject_name"},
		SortFields: []string{
			"title", "subject_name", "exam_date", "duration", "passing_score", "question_count", "total_points", "status", "created_at",
		},
		FilterFields: []string{"subject_id", "grading_period_id", "status"},
		DateField:    "exam_date",
		DefaultOrder: []core.DBOrdering{{Field: "exam_date", Ascending: false}},
		Scope:        crud.HideDrafts("status", StatusDraft),
		OptionLabel:  func(ex Exam) string { return ex.Title + " (" + ex.ExamDate.String() + ")" },
		BeforeDelete: func(ctx context.Context, ex Exam) error {
			_, err := questions.DeleteForParent(ctx, question.ParentExam, ex.ID)
			return err
		},
	}
	e.SetSchema(NewExam{}, UpdateExam{})
	svc := &Service{Entity: e, subjects: subjects, periods: periods}
	svc.Questions = question.Owner{
		ParentType: question.ParentExam,
		Entity:     perm.Exams,
		Questions:  questions,
		Find: func(ctx context.Context, id string) error {
			_, err := svc.Fetch(ctx, id)
			return err
		},
	}
	return svc
}

func (svc *Service) mutation(in NewExam) crud.Mutation[Exam] {
	return crud.Mutation[Exam]{
		Input: in,
		Refs: []crud.Ref{
			{Field: "subject_id", ID: in.SubjectID, In: svc.subjects},
			{Field: "grading_period_id", ID: in.GradingPeriodID, In: svc.periods},
		},
		Build: func(ex *Exam) error {
			ex.Title = in.Title
			ex.SubjectID = in.SubjectID
			ex.GradingPeriodID = in.GradingPeriodID
			ex.ExamDate = in.ExamDate
			ex.Duration = in.Duration
			ex.PassingScore = in.PassingScore
			ex.Description = in.Description
			ex.Status = in.Status
			if ex.Status == "" {
				ex.Status = StatusScheduled
			}
			return nil
		},
	}
}

func (svc *Service) Create(ctx context.Context, c crud.Caller, ne NewExam) (Exam, error) {
	ne.Clean()
	return svc.Entity.Create(ctx, c, svc.mutation(ne))
}

func (svc *Service) Update(ctx context.Context, c crud.Caller, id string, ue UpdateExam) (Exam, error) {
	ue.Clean()
	return svc.Entity.Update(ctx, c, id, svc.mutation(NewExam(ue)))
}
