package submission

import (
	"time"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

const (
	StatusSubmitted = "submitted"
	StatusLate      = "late"
	StatusGraded    = "graded"
)

type Submission struct {
	crud.Base
	ActivityID  string    `json:"activity_id" db:"activity_id"`
	StudentID   string    `json:"student_id" db:"student_id"`
	Content     string    `json:"content" db:"content"`
	File        string    `json:"file" db:"file"`
	Status      string    `json:"status" db:"status"`
	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
	Score       *float64  `json:"score" db:"score"`
	Feedback    string    `json:"feedback" db:"feedback"`

	StudentName   string `json:"student_name" db:"student_name"`     // derived
	ActivityTitle string `json:"activity_title" db:"activity_title"` // derived
}

// NewSubmission contains information needed to create a new Submission.
// StudentID is ignored for students, who always submit as themselves.
type NewSubmission struct {
	ActivityID string `json:"activity_id" form:"activity_id" validate:"required,uuid"`
	StudentID  string `json:"student_id" form:"student_id" validate:"omitempty,uuid"`
	Content    string `json:"content" form:"content" validate:"required_without=File"`
	File       string `json:"file" form:"file"`
}

func (ns *NewSubmission) Clean() {
	ns.ActivityID = core.CleanString(ns.ActivityID)
	ns.StudentID = core.CleanString(ns.StudentID)
	ns.Content = core.CleanString(ns.Content)
	ns.File = core.CleanString(ns.File)
}

// UpdateSubmission grades a submission or corrects its content.
type UpdateSubmission struct {
	Content  string   `json:"content" form:"content"`
	Score    *float64 `json:"score" form:"score" validate:"omitempty,min=0"`
	Feedback string   `json:"feedback" form:"feedback" validate:"max=2000"`
}

func (us *UpdateSubmission) Clean() {
	us.Content = core.CleanString(us.Content)
	us.Feedback = core.CleanString(us.Feedback)
}
