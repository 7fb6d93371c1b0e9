package lesson

import (
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

type Lesson struct {
	crud.Base
	Title           string `json:"title" db:"title"`
	SubjectID       string `json:"subject_id" db:"subject_id"`
	GradingPeriodID string `json:"grading_period_id" db:"grading_period_id"`
	TeacherID       string `json:"teacher_id" db:"teacher_id"`
	Content         string `json:"content" db:"content"`
	Status          string `json:"status" db:"status"`
	File            string `json:"file" db:"file"`

	SubjectName string `json:"subject_name" db:"subject_name"` // derived
	TeacherName string `json:"teacher_name" db:"teacher_name"` // derived
}

// NewLesson contains information needed to create a new Lesson.
type NewLesson struct {
	Title           string `json:"title" form:"title" validate:"required,max=200"`
	SubjectID       string `json:"subject_id" form:"subject_id" validate:"required,uuid"`
	GradingPeriodID string `json:"grading_period_id" form:"grading_period_id" validate:"omitempty,uuid"`
	TeacherID       string `json:"teacher_id" form:"teacher_id" validate:"omitempty,uuid"`
	Content         string `json:"content" form:"content"`
	Status          string `json:"status" form:"status" validate:"omitempty,oneof=draft published"`
}

func (nl *NewLesson) Clean() {
	nl.Title = core.CleanString(nl.Title)
	nl.SubjectID = core.CleanString(nl.SubjectID)
	nl.GradingPeriodID = core.CleanString(nl.GradingPeriodID)
	nl.TeacherID = core.CleanString(nl.TeacherID)
	nl.Content = core.CleanString(nl.Content)
	nl.Status = core.CleanString(nl.Status, true /* lower */)
}

type UpdateLesson NewLesson

func (ul *UpdateLesson) Clean() { (*NewLesson)(ul).Clean() }
