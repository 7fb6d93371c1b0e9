package intervention

import (
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

type Intervention struct {
	crud.Base
	StudentID       string    `json:"student_id" db:"student_id"`
	SubjectID       string    `json:"subject_id" db:"subject_id"`
	GradingPeriodID string    `json:"grading_period_id" db:"grading_period_id"`
	TeacherID       string    `json:"teacher_id" db:"teacher_id"`
	Reason          string    `json:"reason" db:"reason"`
	ActionPlan      string    `json:"action_plan" db:"action_plan"`
	Status          string    `json:"status" db:"status"`
	StartDate       core.Date `json:"start_date" db:"start_date"`
	EndDate         core.Date `json:"end_date" db:"end_date"`

	StudentName string `json:"student_name" db:"student_name"` // derived
	SubjectName string `json:"subject_name" db:"subject_name"` // derived
}

// NewIntervention contains information needed to create a new Intervention.
type NewIntervention struct {
	StudentID       string    `json:"student_id" form:"student_id" validate:"required,uuid"`
	SubjectID       string    `json:"subject_id" form:"subject_id" validate:"required,uuid"`
	GradingPeriodID string    `json:"grading_period_id" form:"grading_period_id" validate:"omitempty,uuid"`
	TeacherID       string    `json:"teacher_id" form:"teacher_id" validate:"omitempty,uuid"`
	Reason          string    `json:"reason" form:"reason" validate:"required,max=1000"`
	ActionPlan      string    `json:"action_plan" form:"action_plan"`
	Status          string    `json:"status" form:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	StartDate       core.Date `json:"start_date" form:"start_date"`
	EndDate         core.Date `json:"end_date" form:"end_date"`
}

func (ni *NewIntervention) Clean() {
	ni.StudentID = core.CleanString(ni.StudentID)
	ni.SubjectID = core.CleanString(ni.SubjectID)
	ni.GradingPeriodID = core.CleanString(ni.GradingPeriodID)
	ni.TeacherID = core.CleanString(ni.TeacherID)
	ni.Reason = core.CleanString(ni.Reason)
	ni.ActionPlan = core.CleanString(ni.ActionPlan)
	ni.Status = core.CleanString(ni.Status, true /* lower */)
}

type UpdateIntervention NewIntervention

func (ui *UpdateIntervention) Clean() { (*NewIntervention)(ui).Clean() }
