package teacher

import (
	"strings"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusOnLeave  = "on_leave"
)

type Teacher struct {
	crud.Base
	EmployeeNumber string `json:"employee_number" db:"employee_number"`
	FirstName      string `json:"first_name" db:"first_name"`
	LastName       string `json:"last_name" db:"last_name"`
	Email          string `json:"email" db:"email"`
	Department     string `json:"department" db:"department"`
	Specialization string `json:"specialization" db:"specialization"`
	Phone          string `json:"phone" db:"phone"`
	Status         string `json:"status" db:"status"`
	ProfilePicture string `json:"profile_picture" db:"profile_picture"`
}

func (t Teacher) Name() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// NewTeacher contains information needed to create a new Teacher.
type NewTeacher struct {
	EmployeeNumber string `json:"employee_number" form:"employee_number" validate:"required,max=30"`
	FirstName      string `json:"first_name" form:"first_name" validate:"required,max=100"`
	LastName       string `json:"last_name" form:"last_name" validate:"required,max=100"`
	Email          string `json:"email" form:"email" validate:"required,email"`
	Department     string `json:"department" form:"department" validate:"max=100"`
	Specialization string `json:"specialization" form:"specialization" validate:"max=100"`
	Phone          string `json:"phone" form:"phone" validate:"max=30"`
	Status         string `json:"status" form:"status" validate:"omitempty,oneof=active inactive on_leave"`
}

func (nt *NewTeacher) Clean() {
	nt.EmployeeNumber = core.CleanString(nt.EmployeeNumber)
	nt.FirstName = core.CleanString(nt.FirstName)
	nt.LastName = core.CleanString(nt.LastName)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Department = core.CleanString(nt.Department)
	nt.Specialization = core.CleanString(nt.Specialization)
	nt.Phone = core.CleanString(nt.Phone)
	nt.Status = core.CleanString(nt.Status, true /* lower */)
}

type UpdateTeacher NewTeacher

func (ut *UpdateTeacher) Clean() { (*NewTeacher)(ut).Clean() }
