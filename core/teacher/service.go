package teacher

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
)

type Service struct {
	*crud.Entity[Teacher]
}

var _ crud.Service[Teacher, NewTeacher, UpdateTeacher] = (*Service)(nil) // interface compliance check

func NewService(store crud.Store[Teacher], validate *core.Validator) *Service {
	e := &crud.Entity[Teacher]{
		Name:         perm.Teachers,
		Label:        "Teacher",
		Store:        store,
		Validator:    validate,
		SearchFields: []string{"employee_number", "first_name", "last_name", "email", "department"},
		SortFields:   []string{"employee_number", "first_name", "last_name", "email", "department", "status", "created_at"},
		FilterFields: []string{"department", "status"},
		DefaultOrder: []core.DBOrdering{{Field: "last_name", Ascending: true}, {Field: "first_name", Ascending: true}},
		OptionLabel:  func(t Teacher) string { return t.LastName + ", " + t.FirstName },
	}
	e.SetSchema(NewTeacher{}, UpdateTeacher{})
	return &Service{Entity: e}
}

func (svc *Service) mutation(id string, in NewTeacher) crud.Mutation[Teacher] {
	return crud.Mutation[Teacher]{
		Input: in,
		Build: func(t *Teacher) error {
			t.EmployeeNumber = in.EmployeeNumber
			t.FirstName = in.FirstName
			t.LastName = in.LastName
			t.Email = in.Email
			t.Department = in.Department
			t.Specialization = in.Specialization
			t.Phone = in.Phone
			t.Status = in.Status
			if t.Status == "" {
				t.Status = StatusActive
			}
			return nil
		},
		Check: func(ctx context.Context, t Teacher) error {
			if err := svc.Unique(ctx, id, "email", t.Email, "a teacher with this email already exists"); err != nil {
				return err
			}
			return svc.Unique(ctx, id, "employee_number", t.EmployeeNumber, "a teacher with this employee number already exists")
		},
	}
}

func (svc *Service) Create(ctx context.Context, c crud.Caller, nt NewTeacher) (Teacher, error) {
	nt.Clean()
	return svc.Entity.Create(ctx, c, svc.mutation("", nt))
}

func (svc *Service) Update(ctx context.Context, c crud.Caller, id string, ut UpdateTeacher) (Teacher, error) {
	ut.Clean()
	return svc.Entity.Update(ctx, c, id, svc.mutation(id, NewTeacher(ut)))
}

func (svc *Service) SetProfilePicture(ctx context.Context, c crud.Caller, id, path string) (Teacher, error) {
	return svc.Attach(ctx, c, id, func(t *Teacher) { t.ProfilePicture = path })
}

// Recipients returns the addresses of every active teacher.
func (svc *Service) Recipients(ctx context.Context) ([]mail.Address, error) {
	page, err := svc.Store.Query(ctx, crud.Query{Filters: []crud.Filter{crud.Eq("status", StatusActive)}})
	if err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	addrs := make([]mail.Address, 0, len(page.Rows))
	for _, t := range page.Rows {
		addrs = append(addrs, mail.Address{Name: t.Name(), Address: t.Email})
	}
	return addrs, nil
}
