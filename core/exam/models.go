package exam

import (
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
)

type Exam struct {
	crud.Base
	Title           string    `json:"title" db:"title"`
	SubjectID       string    `json:"subject_id" db:"subject_id"`
	GradingPeriodID string    `json:"grading_period_id" db:"grading_period_id"`
	ExamDate        core.Date `json:"exam_date" db:"exam_date"`
	Duration        int       `json:"duration" db:"duration"` // minutes
	PassingScore    float64   `json:"passing_score" db:"passing_score"`
	Description     string    `json:"description" db:"description"`
	Status          string    `json:"status" db:"status"`

	SubjectName   string  `json:"subject_name" db:"subject_name"`     // derived
	QuestionCount int     `json:"question_count" db:"question_count"` // derived
	TotalPoints   float64 `json:"total_points" db:"total_points"`     // derived
}

// NewExam contains information needed to create a new Exam.
type NewExam struct {
	Title           string    `json:"title" form:"title" validate:"required,max=200"`
	SubjectID       string    `json:"subject_id" form:"subject_id" validate:"required,uuid"`
	GradingPeriodID string    `json:"grading_period_id" form:"grading_period_id" validate:"required,uuid"`
	ExamDate        core.Date `json:"exam_date" form:"exam_date" validate:"required"`
	Duration        int       `json:"duration" form:"duration" validate:"required,gt=0,max=600"`
	PassingScore    float64   `json:"passing_score" form:"passing_score" validate:"min=0,max=100"`
	Description     string    `json:"description" form:"description"`
	Status          string    `json:"status" form:"status" validate:"omitempty,oneof=draft scheduled completed"`
}

func (ne *NewExam) Clean() {
	ne.Title = core.CleanString(ne.Title)
	ne.SubjectID = core.CleanString(ne.SubjectID)
	ne.GradingPeriodID = core.CleanString(ne.GradingPeriodID)
	ne.Description = core.CleanString(ne.Description)
	ne.Status = core.CleanString(ne.Status, true /* lower */)
}

type UpdateExam NewExam

func (ue *UpdateExam) Clean() { (*NewExam)(ue).Clean() }
