package semester

import (
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

const (
	StatusUpcoming  = "upcoming"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

type Semester struct {
	crud.Base
	Name       string    `json:"name" db:"name"`
	SchoolYear string    `json:"school_year" db:"school_year"`
	StartDate  core.Date `json:"start_date" db:"start_date"`
	EndDate    core.Date `json:"end_date" db:"end_date"`
	Status     string    `json:"status" db:"status"`
}

// NewSemester contains information needed to create a new Semester.
type NewSemester struct {
	Name       string    `json:"name" form:"name" validate:"required,max=100"`
	SchoolYear string    `json:"school_year" form:"school_year" validate:"required,max=20"`
	StartDate  core.Date `json:"start_date" form:"start_date" validate:"required"`
	EndDate    core.Date `json:"end_date" form:"end_date" validate:"required"`
	Status     string    `json:"status" form:"status" validate:"omitempty,oneof=upcoming active completed"`
}

func (ns *NewSemester) Clean() {
	ns.Name = core.CleanString(ns.Name)
	ns.SchoolYear = core.CleanString(ns.SchoolYear)
	ns.Status = core.CleanString(ns.Status, true /* lower */)
}

type UpdateSemester NewSemester

func (us *UpdateSemester) Clean() { (*NewSemester)(us).Clean() }
