package gradingperiod

import (
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

const (
	StatusUpcoming = "upcoming"
	StatusOpen     = "open"
	StatusClosed   = "closed"
)

type GradingPeriod struct {
	crud.Base
	Name       string    `json:"name" db:"name"`
	SemesterID string    `json:"semester_id" db:"semester_id"`
	StartDate  core.Date `json:"start_date" db:"start_date"`
	EndDate    core.Date `json:"end_date" db:"end_date"`
	Status     string    `json:"status" db:"status"`

	SemesterName string `json:"semester_name" db:"semester_name"` // derived
}

// NewGradingPeriod contains information needed to create a new GradingPeriod.
type NewGradingPeriod struct {
	Name       string    `json:"name" form:"name" validate:"required,max=100"`
	SemesterID string    `json:"semester_id" form:"semester_id" validate:"required,uuid"`
	StartDate  core.Date `json:"start_date" form:"start_date" validate:"required"`
	EndDate    core.Date `json:"end_date" form:"end_date" validate:"required"`
	Status     string    `json:"status" form:"status" validate:"omitempty,oneof=upcoming open closed"`
}

func (ng *NewGradingPeriod) Clean() {
	ng.Name = core.CleanString(ng.Name)
	ng.SemesterID = core.CleanString(ng.SemesterID)
	ng.Status = core.CleanString(ng.Status, true /* lower */)
}

type UpdateGradingPeriod NewGradingPeriod

func (ug *UpdateGradingPeriod) Clean() { (*NewGradingPeriod)(ug).Clean() }
