package attendance

import (
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

type Attendance struct {
	crud.Base
	StudentID string    `json:"student_id" db:"student_id"`
	SubjectID string    `json:"subject_id" db:"subject_id"`
	Date      core.Date `json:"date" db:"date"`
	Status    string    `json:"status" db:"status"`
	Remarks   string    `json:"remarks" db:"remarks"`

	StudentName string `json:"student_name" db:"student_name"` // derived
	SubjectName string `json:"subject_name" db:"subject_name"` // derived
}

// NewAttendance contains information needed to create a new Attendance.
type NewAttendance struct {
	StudentID string    `json:"student_id" form:"student_id" validate:"required,uuid"`
	SubjectID string    `json:"subject_id" form:"subject_id" validate:"required,uuid"`
	Date      core.Date `json:"date" form:"date" validate:"required"`
	Status    string    `json:"status" form:"status" validate:"required,oneof=present absent late excused"`
	Remarks   string    `json:"remarks" form:"remarks" validate:"max=500"`
}

func (na *NewAttendance) Clean() {
	na.StudentID = core.CleanString(na.StudentID)
	na.SubjectID = core.CleanString(na.SubjectID)
	na.Status = core.CleanString(na.Status, true /* lower */)
	na.Remarks = core.CleanString(na.Remarks)
}

type UpdateAttendance NewAttendance

func (ua *UpdateAttendance) Clean() { (*NewAttendance)(ua).Clean() }

// Mark is one line of a bulk marking.
type Mark struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	Status    string `json:"status" validate:"required,oneof=present absent late excused"`
	Remarks   string `json:"remarks" validate:"max=500"`
}

// BulkMark records the attendance of several students for one subject and day.
type BulkMark struct {
	SubjectID string    `json:"subject_id" validate:"required,uuid"`
	Date      core.Date `json:"date" validate:"required"`
	Marks     []Mark    `json:"marks" validate:"required,min=1,dive"`
}

func (bm *BulkMark) Clean() {
	bm.SubjectID = core.CleanString(bm.SubjectID)
	for i := range bm.Marks {
		bm.Marks[i].StudentID = core.CleanString(bm.Marks[i].StudentID)
		bm.Marks[i].Status = core.CleanString(bm.Marks[i].Status, true /* lower */)
		bm.Marks[i].Remarks = core.CleanString(bm.Marks[i].Remarks)
	}
}

// BulkResult counts the rows written by a bulk marking.
type BulkResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}
