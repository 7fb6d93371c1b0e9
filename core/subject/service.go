package subject

import (
	"context"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
)

type Service struct {
	*crud.Entity[Subject]
}

var _ crud.Service[Subject, NewSubject, UpdateSubject] = (*Service)(nil) // interface compliance check

func NewService(store crud.Store[Subject], validate *core.Validator) *Service {
	e := &crud.Entity[Subject]{
		Name:         perm.Subjects,
		Label:        "Subject",
		Store:        store,
		Validator:    validate,
		SearchFields: []string{"code", "name", "description"},
		SortFields:   []string{"code", "name", "created_at"},
		DefaultOrder: []core.DBOrdering{{Field: "code", Ascending: true}},
		OptionLabel:  func(s Subject) string { return s.Code + " - " + s.Name },
	}
	e.SetSchema(NewSubject{}, UpdateSubject{})
	return &Service{Entity: e}
}

func (svc *Service) mutation(id string, in NewSubject) crud.Mutation[Subject] {
	return crud.Mutation[Subject]{
		Input: in,
		Build: func(s *Subject) error {
			s.Code = in.Code
			s.Name = in.Name
			s.Description = in.Description
			return nil
		},
		Check: func(ctx context.Context, s Subject) error {
			return svc.Unique(ctx, id, "code", s.Code, "a subject with this code already exists")
		},
	}
}

func (svc *Service) Create(ctx context.Context, c crud.Caller, ns NewSubject) (Subject, error) {
	ns.Clean()
	return svc.Entity.Create(ctx, c, svc.mutation("", ns))
}

func (svc *Service) Update(ctx context.Context, c crud.Caller, id string, us UpdateSubject) (Subject, error) {
	us.Clean()
	return svc.Entity.Update(ctx, c, id, svc.mutation(id, NewSubject(us)))
}
