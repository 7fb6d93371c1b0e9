package question

import (
	"context"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

// Owner exposes the questions of one parent entity to the callers allowed to edit it.
type Owner struct {
	ParentType string
	Entity     string // permission entity of the parent
	Questions  *Service
	// Find returns a NotFoundError when the parent does not exist.
	Find func(ctx context.Context, id string) error
}

func (o Owner) authorize(c crud.Caller) error {
	if !c.IsAuthenticated() {
		return core.ErrUnauthenticated
	}
	if !c.Caps().CanEdit(o.Entity) {
		return core.ErrUnauthorized
	}
	return nil
}

// List returns an empty list for parents that no longer exist.
func (o Owner) List(ctx context.Context, c crud.Caller, parentID string) ([]Question, error) {
	if err := o.authorize(c); err != nil {
		return nil, err
	}
	return o.Questions.ForParent(ctx, o.ParentType, core.CleanString(parentID))
}

func (o Owner) Save(ctx context.Context, c crud.Caller, parentID string, in Input) (Question, error) {
	if err := o.authorize(c); err != nil {
		return Question{}, err
	}
	parentID = core.CleanString(parentID)
	if err := o.Find(ctx, parentID); err != nil {
		return Question{}, err
	}
	return o.Questions.Save(ctx, o.ParentType, parentID, in)
}

func (o Owner) Delete(ctx context.Context, c crud.Caller, parentID, id string) error {
	if err := o.authorize(c); err != nil {
		return err
	}
	return o.Questions.Delete(ctx, o.ParentType, core.CleanString(parentID), core.CleanString(id))
}
