package student

import (
	"strings"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

const (
	StatusActive      = "active"
	StatusInactive    = "inactive"
	StatusGraduated   = "graduated"
	StatusTransferred = "transferred"
)

type Student struct {
	crud.Base
	StudentNumber   string    `json:"student_number" db:"student_number"`
	FirstName       string    `json:"first_name" db:"first_name"`
	LastName        string    `json:"last_name" db:"last_name"`
	Email           string    `json:"email" db:"email"`
	Gender          string    `json:"gender" db:"gender"`
	BirthDate       core.Date `json:"birth_date" db:"birth_date"`
	GradeLevel      string    `json:"grade_level" db:"grade_level"`
	Section         string    `json:"section" db:"section"`
	GuardianName    string    `json:"guardian_name" db:"guardian_name"`
	GuardianContact string    `json:"guardian_contact" db:"guardian_contact"`
	Status          string    `json:"status" db:"status"`
	ProfilePicture  string    `json:"profile_picture" db:"profile_picture"`
}

func (s Student) Name() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	StudentNumber   string    `json:"student_number" form:"student_number" validate:"required,max=30"`
	FirstName       string    `json:"first_name" form:"first_name" validate:"required,max=100"`
	LastName        string    `json:"last_name" form:"last_name" validate:"required,max=100"`
	Email           string    `json:"email" form:"email" validate:"required,email"`
	Gender          string    `json:"gender" form:"gender" validate:"omitempty,oneof=male female other"`
	BirthDate       core.Date `json:"birth_date" form:"birth_date"`
	GradeLevel      string    `json:"grade_level" form:"grade_level" validate:"max=20"`
	Section         string    `json:"section" form:"section" validate:"max=50"`
	GuardianName    string    `json:"guardian_name" form:"guardian_name" validate:"max=200"`
	GuardianContact string    `json:"guardian_contact" form:"guardian_contact" validate:"max=100"`
	Status          string    `json:"status" form:"status" validate:"omitempty,oneof=active inactive graduated transferred"`
}

func (ns *NewStudent) Clean() {
	ns.StudentNumber = core.CleanString(ns.StudentNumber)
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Gender = core.CleanString(ns.Gender, true /* lower */)
	ns.GradeLevel = core.CleanString(ns.GradeLevel)
	ns.Section = core.CleanString(ns.Section)
	ns.GuardianName = core.CleanString(ns.GuardianName)
	ns.GuardianContact = core.CleanString(ns.GuardianContact)
	ns.Status = core.CleanString(ns.Status, true /* lower */)
}

type UpdateStudent NewStudent

func (us *UpdateStudent) Clean() { (*NewStudent)(us).Clean() }
