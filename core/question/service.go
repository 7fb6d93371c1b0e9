package question

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

var nowFunc = time.Now // mockable

// Service manages the questions owned by quizzes and exams.
// Callers are authorized by the owning entity before reaching it.
type Service struct {
	store    crud.Store[Question]
	validate *core.Validator
}

func NewService(store crud.Store[Question], validate *core.Validator) *Service {
	return &Service{store: store, validate: validate}
}

func parentFilters(parentType, parentID string) []crud.Filter {
	return []crud.Filter{crud.Eq("parent_type", parentType), crud.Eq("parent_id", parentID)}
}

// ForParent returns the questions of a parent in position order. An unknown parent has none.
func (svc *Service) ForParent(ctx context.Context, parentType, parentID string) ([]Question, error) {
	page, err := svc.store.Query(ctx, crud.Query{
		Scope: parentFilters(parentType, parentID),
		Orderings: []core.DBOrdering{
			{Field: "position", Ascending: true},
			{Field: "created_at", Ascending: true},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	if page.Rows == nil {
		return []Question{}, nil
	}
	return page.Rows, nil
}

// checkRules enforces the per-type rules of a question.
func checkRules(in Input) error {
	switch in.Type {
	case TypeMultipleChoice:
		if len(in.Choices) < 2 {
			return core.NewConflictError("a multiple choice question needs at least 2 choices")
		}
		var correct int
		for _, ch := range in.Choices {
			if ch.Correct {
				correct++
			}
		}
		if correct == 0 {
			return core.NewConflictError("a multiple choice question needs at least one correct choice")
		}
	case TypeTrueFalse:
		if a := strings.ToLower(in.Answer); a != "true" && a != "false" {
			return core.NewConflictError("the answer of a true/false question must be true or false")
		}
	}
	return nil
}

// Save creates the question, or updates it when in.ID is set.
// The parent must exist; this is checked by the owner.
func (svc *Service) Save(ctx context.Context, parentType, parentID string, in Input) (Question, error) {
	in.Clean()
	if err := svc.validate.Struct(in); err != nil {
		return Question{}, err
	}
	if err := checkRules(in); err != nil {
		return Question{}, err
	}

	q := Question{
		ParentType: parentType,
		ParentID:   parentID,
		Text:       in.Text,
		Type:       in.Type,
		Points:     in.Points,
		Answer:     in.Answer,
		Position:   in.Position,
	}
	switch in.Type {
	case TypeMultipleChoice:
		q.Choices = in.Choices
	case TypeTrueFalse:
		q.Answer = strings.ToLower(in.Answer)
	}

	if in.ID == "" {
		q.ID = uuid.NewString()
		q.CreatedAt = nowFunc().UTC()
		created, err := svc.store.Insert(ctx, q)
		return created, errors.Wrap(err, "inserting question")
	}

	existing, err := svc.get(ctx, parentType, parentID, in.ID)
	if err != nil {
		return Question{}, err
	}
	q.Base = existing.Base
	updated, err := svc.store.Update(ctx, q)
	return updated, errors.Wrap(err, "updating question")
}

func (svc *Service) get(ctx context.Context, parentType, parentID, id string) (Question, error) {
	q, err := svc.store.Get(ctx, id)
	if err != nil {
		if errors.Cause(err) == crud.ErrNoRecord {
			return q, core.NewNotFoundError("Question")
		}
		return q, errors.Wrap(err, "getting question")
	}
	if q.ParentType != parentType || q.ParentID != parentID {
		return Question{}, core.NewNotFoundError("Question")
	}
	return q, nil
}

func (svc *Service) Delete(ctx context.Context, parentType, parentID, id string) error {
	if _, err := svc.get(ctx, parentType, parentID, id); err != nil {
		return err
	}
	return errors.Wrap(svc.store.Delete(ctx, id), "deleting question")
}

// DeleteForParent removes every question of a parent.
func (svc *Service) DeleteForParent(ctx context.Context, parentType, parentID string) (int, error) {
	n, err := svc.store.DeleteWhere(ctx, parentFilters(parentType, parentID)...)
	return n, errors.Wrap(err, "deleting questions")
}
