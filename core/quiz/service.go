package quiz

import (
	"context"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
	"github.com/trezcool/lmsadmin/core/question"
)

type Service struct {
	*crud.Entity[Quiz]
	Questions question.Owner
	subjects  crud.Checker
	periods   crud.Checker
}

var _ crud.Service[Quiz, NewQuiz, UpdateQuiz] = (*Service)(nil) // interface compliance check

func NewService(store crud.Store[Quiz], questions *question.Service, subjects, periods crud.Checker, validate *core.Validator) *Service {
	e := &crud.Entity[Quiz]{
		Name:         perm.Quizzes,
		Label:        "Quiz",
		Store:        store,
		Validator:    validate,
		SearchFields: []string{"title", "description", "subject_name"},
		SortFields:   []string{"title", "subject_name", "time_limit", "question_count", "total_points", "status", "created_at"},
		FilterFields: []string{"subject_id", "grading_period_id", "status"},
		DefaultOrder: []core.DBOrdering{{Field: "created_at", Ascending: false}},
		Scope:        crud.HideDrafts("status", StatusDraft),
		OptionLabel:  func(q Quiz) string { return q.Title },
		BeforeDelete: func(ctx context.Context, q Quiz) error {
			_, err := questions.DeleteForParent(ctx, question.ParentQuiz, q.ID)
			return err
		},
	}
	e.SetSchema(NewQuiz{}, UpdateQuiz{})
	svc := &Service{Entity: e, subjects: subjects, periods: periods}
	svc.Questions = question.Owner{
		ParentType: question.ParentQuiz,
		Entity:     perm.Quizzes,
		Questions:  questions,
		Find: func(ctx context.Context, id string) error {
			_, err := svc.Fetch(ctx, id)
			return err
		},
	}
	return svc
}

func (svc *Service) mutation(in NewQuiz) crud.Mutation[Quiz] {
	return crud.Mutation[Quiz]{
		Input: in,
		Refs: []crud.Ref{
			{Field: "subject_id", ID: in.SubjectID, In: svc.subjects},
			{Field: "grading_period_id", ID: in.GradingPeriodID, In: svc.periods},
		},
		Build: func(q *Quiz) error {
			q.Title = in.Title
			q.SubjectID = in.SubjectID
			q.GradingPeriodID = in.GradingPeriodID
			q.Description = in.Description
			q.TimeLimit = in.TimeLimit
			q.Status = in.Status
			if q.Status == "" {
				q.Status = StatusDraft
			}
			return nil
		},
	}
}

func (svc *Service) Create(ctx context.Context, c crud.Caller, nq NewQuiz) (Quiz, error) {
	nq.Clean()
	return svc.Entity.Create(ctx, c, svc.mutation(nq))
}

func (svc *Service) Update(ctx context.Context, c crud.Caller, id string, uq UpdateQuiz) (Quiz, error) {
	uq.Clean()
	return svc.Entity.Update(ctx, c, id, svc.mutation(NewQuiz(uq)))
}
