package student

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
)

type Service struct {
	*crud.Entity[Student]
}

var _ crud.Service[Student, NewStudent, UpdateStudent] = (*Service)(nil) // interface compliance check

func NewService(store crud.Store[Student], validate *core.Validator) *Service {
	e := &crud.Entity[Student]{
		Name:         perm.Students,
		Label:        "Student",
		Store:        store,
		Validator:    validate,
		SearchFields: []string{"student_number", "first_name", "last_name", "email", "section"},
		SortFields:   []string{"student_number", "first_name", "last_name", "email", "grade_level", "section", "status", "created_at"},
		FilterFields: []string{"grade_level", "section", "status", "gender"},
		DefaultOrder: []core.DBOrdering{{Field: "last_name", Ascending: true}, {Field: "first_name", Ascending: true}},
		OptionLabel:  func(s Student) string { return s.LastName + ", " + s.FirstName + " (" + s.StudentNumber + ")" },
	}
	e.SetSchema(NewStudent{}, UpdateStudent{})
	return &Service{Entity: e}
}

func (svc *Service) mutation(id string, in NewStudent) crud.Mutation[Student] {
	return crud.Mutation[Student]{
		Input: in,
		Build: func(s *Student) error {
			s.StudentNumber = in.StudentNumber
			s.FirstName = in.FirstName
			s.LastName = in.LastName
			s.Email = in.Email
			s.Gender = in.Gender
			s.BirthDate = in.BirthDate
			s.GradeLevel = in.GradeLevel
			s.Section = in.Section
			s.GuardianName = in.GuardianName
			s.GuardianContact = in.GuardianContact
			s.Status = in.Status
			if s.Status == "" {
				s.Status = StatusActive
			}
			return nil
		},
		Check: func(ctx context.Context, s Student) error {
			if err := svc.Unique(ctx, id, "email", s.Email, "a student with this email already exists"); err != nil {
				return err
			}
			return svc.Unique(ctx, id, "student_number", s.StudentNumber, "a student with this student number already exists")
		},
	}
}

func (svc *Service) Create(ctx context.Context, c crud.Caller, ns NewStudent) (Student, error) {
	ns.Clean()
	return svc.Entity.Create(ctx, c, svc.mutation("", ns))
}

func (svc *Service) Update(ctx context.Context, c crud.Caller, id string, us UpdateStudent) (Student, error) {
	us.Clean()
	return svc.Entity.Update(ctx, c, id, svc.mutation(id, NewStudent(us)))
}

// SetProfilePicture stores the path of an uploaded picture on the student.
func (svc *Service) SetProfilePicture(ctx context.Context, c crud.Caller, id, path string) (Student, error) {
	return svc.Attach(ctx, c, id, func(s *Student) { s.ProfilePicture = path })
}

// Recipients returns the addresses of every active student.
func (svc *Service) Recipients(ctx context.Context) ([]mail.Address, error) {
	page, err := svc.Store.Query(ctx, crud.Query{Filters: []crud.Filter{crud.Eq("status", StatusActive)}})
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	addrs := make([]mail.Address, 0, len(page.Rows))
	for _, s := range page.Rows {
		addrs = append(addrs, mail.Address{Name: s.Name(), Address: s.Email})
	}
	return addrs, nil
}
