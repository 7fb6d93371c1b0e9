package grade

import (
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

type Grade struct {
	crud.Base
	StudentID       string   `json:"student_id" db:"student_id"`
	SubjectID       string   `json:"subject_id" db:"subject_id"`
	SemesterID      string   `json:"semester_id" db:"semester_id"`
	GradingPeriodID string   `json:"grading_period_id" db:"grading_period_id"`
	ActivityScore   *float64 `json:"activity_score" db:"activity_score"`
	QuizScore       *float64 `json:"quiz_score" db:"quiz_score"`
	ExamScore       *float64 `json:"exam_score" db:"exam_score"`
	FinalGrade      float64  `json:"final_grade" db:"final_grade"`
	Status          string   `json:"status" db:"status"`
	Remarks         string   `json:"remarks" db:"remarks"`

	StudentName       string `json:"student_name" db:"student_name"`               // derived
	SubjectName       string `json:"subject_name" db:"subject_name"`               // derived
	GradingPeriodName string `json:"grading_period_name" db:"grading_period_name"` // derived
}

// NewGrade contains information needed to create a new Grade.
type NewGrade struct {
	StudentID       string   `json:"student_id" form:"student_id" validate:"required,uuid"`
	SubjectID       string   `json:"subject_id" form:"subject_id" validate:"required,uuid"`
	SemesterID      string   `json:"semester_id" form:"semester_id" validate:"required,uuid"`
	GradingPeriodID string   `json:"grading_period_id" form:"grading_period_id" validate:"required,uuid"`
	ActivityScore   *float64 `json:"activity_score" form:"activity_score" validate:"omitempty,min=0,max=100"`
	QuizScore       *float64 `json:"quiz_score" form:"quiz_score" validate:"omitempty,min=0,max=100"`
	ExamScore       *float64 `json:"exam_score" form:"exam_score" validate:"omitempty,min=0,max=100"`
	Remarks         string   `json:"remarks" form:"remarks" validate:"max=500"`
}

func (ng *NewGrade) Clean() {
	ng.StudentID = core.CleanString(ng.StudentID)
	ng.SubjectID = core.CleanString(ng.SubjectID)
	ng.SemesterID = core.CleanString(ng.SemesterID)
	ng.GradingPeriodID = core.CleanString(ng.GradingPeriodID)
	ng.Remarks = core.CleanString(ng.Remarks)
}

// UpdateGrade leaves out the subject, semester and grading period, which are fixed at creation.
type UpdateGrade struct {
	StudentID     string   `json:"student_id" form:"student_id" validate:"required,uuid"`
	ActivityScore *float64 `json:"activity_score" form:"activity_score" validate:"omitempty,min=0,max=100"`
	QuizScore     *float64 `json:"quiz_score" form:"quiz_score" validate:"omitempty,min=0,max=100"`
	ExamScore     *float64 `json:"exam_score" form:"exam_score" validate:"omitempty,min=0,max=100"`
	Remarks       string   `json:"remarks" form:"remarks" validate:"max=500"`
}

func (ug *UpdateGrade) Clean() {
	ug.StudentID = core.CleanString(ug.StudentID)
	ug.Remarks = core.CleanString(ug.Remarks)
}
