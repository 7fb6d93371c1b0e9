package activity

import (
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusClosed    = "closed"
)

type Activity struct {
	crud.Base
	Title           string    `json:"title" db:"title"`
	SubjectID       string    `json:"subject_id" db:"subject_id"`
	GradingPeriodID string    `json:"grading_period_id" db:"grading_period_id"`
	DueDate         core.Date `json:"due_date" db:"due_date"`
	MaxScore        float64   `json:"max_score" db:"max_score"`
	Description     string    `json:"description" db:"description"`
	Status          string    `json:"status" db:"status"`
	Attachment      string    `json:"attachment" db:"attachment"`

	SubjectName       string `json:"subject_name" db:"subject_name"`               // derived
	GradingPeriodName string `json:"grading_period_name" db:"grading_period_name"` // derived
}

// NewActivity contains information needed to create a new Activity.
type NewActivity struct {
	Title           string    `json:"title" form:"title" validate:"required,max=200"`
	SubjectID       string    `json:"subject_id" form:"subject_id" validate:"required,uuid"`
	GradingPeriodID string    `json:"grading_period_id" form:"grading_period_id" validate:"required,uuid"`
	DueDate         core.Date `json:"due_date" form:"due_date" validate:"required"`
	MaxScore        float64   `json:"max_score" form:"max_score" validate:"required,gt=0,lte=1000"`
	Description     string    `json:"description" form:"description"`
	Status          string    `json:"status" form:"status" validate:"omitempty,oneof=draft published closed"`
}

func (na *NewActivity) Clean() {
	na.Title = core.CleanString(na.Title)
	na.SubjectID = core.CleanString(na.SubjectID)
	na.GradingPeriodID = core.CleanString(na.GradingPeriodID)
	na.Description = core.CleanString(na.Description)
	na.Status = core.CleanString(na.Status, true /* lower */)
}

type UpdateActivity NewActivity

func (ua *UpdateActivity) Clean() { (*NewActivity)(ua).Clean() }
