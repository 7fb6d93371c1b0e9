package quiz

import (
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusClosed    = "closed"
)

type Quiz struct {
	crud.Base
	Title           string `json:"title" db:"title"`
	SubjectID       string `json:"subject_id" db:"subject_id"`
	GradingPeriodID string `json:"grading_period_id" db:"grading_period_id"`
	Description     string `json:"description" db:"description"`
	TimeLimit       int    `json:"time_limit" db:"time_limit"` // minutes, 0 = untimed
	Status          string `json:"status" db:"status"`

	SubjectName   string  `json:"subject_name" db:"subject_name"`     // derived
	QuestionCount int     `json:"question_count" db:"question_count"` // derived
	TotalPoints   float64 `json:"total_points" db:"total_points"`     // derived
}

// NewQuiz contains information needed to create a new Quiz.
type NewQuiz struct {
	Title           string `json:"title" form:"title" validate:"required,max=200"`
	SubjectID       string `json:"subject_id" form:"subject_id" validate:"required,uuid"`
	GradingPeriodID string `json:"grading_period_id" form:"grading_period_id" validate:"required,uuid"`
	Description     string `json:"description" form:"description"`
	TimeLimit       int    `json:"time_limit" form:"time_limit" validate:"min=0,max=600"`
	Status          string `json:"status" form:"status" validate:"omitempty,oneof=draft published closed"`
}

func (nq *NewQuiz) Clean() {
	nq.Title = core.CleanString(nq.Title)
	nq.SubjectID = core.CleanString(nq.SubjectID)
	nq.GradingPeriodID = core.CleanString(nq.GradingPeriodID)
	nq.Description = core.CleanString(nq.Description)
	nq.Status = core.CleanString(nq.Status, true /* lower */)
}

type UpdateQuiz NewQuiz

func (uq *UpdateQuiz) Clean() { (*NewQuiz)(uq).Clean() }
