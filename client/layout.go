package client

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/trezcool/lmsadmin/core/perm"
)

// Row is one record of a listing as decoded from JSON.
type Row map[string]interface{}

// String renders the field of r as text. Missing fields render as "".
func (r Row) String(field string) string {
	switch v := r[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprint(v)
	}
}

// Renderer formats one cell.
type Renderer func(r Row) string

type Column struct {
	Field    string   `json:"data"`
	Title    string   `json:"title"`
	Width    string   `json:"width,omitempty"`
	Sortable bool     `json:"orderable"`
	Render   Renderer `json:"-"`
}

// Cell renders the column of r.
func (col Column) Cell(r Row) string {
	if col.Render != nil {
		return col.Render(r)
	}
	return r.String(col.Field)
}

type Sort struct {
	Field     string
	Ascending bool
}

func (s Sort) Param() string {
	if s.Ascending {
		return s.Field
	}
	return "-" + s.Field
}

// Layout is what a grid shows for one caller.
type Layout struct {
	Entity  string
	Columns []Column
	Sort    Sort
	Actions []ActionSpec
}

func text(field, title string) Column {
	return Column{Field: field, Title: title, Sortable: true}
}

func fixed(field, title, width string) Column {
	return Column{Field: field, Title: title, Width: width, Sortable: true}
}

func score(field, title string) Column {
	return Column{Field: field, Title: title, Width: "80px", Sortable: true, Render: func(r Row) string {
		if r[field] == nil {
			return "-"
		}
		f, ok := r[field].(float64)
		if !ok {
			return r.String(field)
		}
		return strconv.FormatFloat(f, 'f', 2, 64)
	}}
}

func badge(field, title string) Column {
	return Column{Field: field, Title: title, Width: "100px", Sortable: true, Render: func(r Row) string {
		s := r.String(field)
		if s == "" {
			return ""
		}
		return strings.ToUpper(s[:1]) + strings.ReplaceAll(s[1:], "_", " ")
	}}
}

func fullName(title string) Column {
	return Column{Field: "last_name", Title: title, Sortable: true, Render: func(r Row) string {
		return strings.TrimSpace(r.String("first_name") + " " + r.String("last_name"))
	}}
}

func link(field, title string) Column {
	return Column{Field: field, Title: title, Width: "60px", Render: func(r Row) string {
		if r.String(field) == "" {
			return ""
		}
		return "view"
	}}
}

// Columns returns the columns of the entity grid for a caller with caps.
// It depends on nothing but its arguments.
func Columns(entity string, caps perm.Capabilities) []Column {
	owner := caps.IsOwnerScoped(entity)
	var cols []Column
	switch entity {
	case perm.Subjects:
		cols = []Column{fixed("code", "Code", "100px"), text("name", "Name"), text("description", "Description")}
	case perm.Semesters:
		cols = []Column{
			text("name", "Name"), fixed("school_year", "School Year", "110px"),
			fixed("start_date", "Start", "110px"), fixed("end_date", "End", "110px"), badge("status", "Status"),
		}
	case perm.GradingPeriods:
		cols = []Column{
			text("name", "Name"), text("semester_name", "Semester"),
			fixed("start_date", "Start", "110px"), fixed("end_date", "End", "110px"), badge("status", "Status"),
		}
	case perm.Students:
		cols = []Column{
			fixed("student_number", "Number", "110px"), fullName("Name"), text("email", "Email"),
			fixed("grade_level", "Grade", "80px"), fixed("section", "Section", "80px"),
		}
		if caps.IsAdmin() {
			cols = append(cols, text("guardian_name", "Guardian"), text("guardian_contact", "Guardian Contact"))
		}
		cols = append(cols, badge("status", "Status"))
	case perm.Teachers:
		cols = []Column{
			fixed("employee_number", "Number", "110px"), fullName("Name"), text("email", "Email"),
			text("department", "Department"), text("specialization", "Specialization"),
		}
		if caps.IsAdmin() {
			cols = append(cols, text("phone", "Phone"))
		}
		cols = append(cols, badge("status", "Status"))
	case perm.Activities:
		cols = []Column{
			text("title", "Title"), text("subject_name", "Subject"), text("grading_period_name", "Period"),
			fixed("due_date", "Due", "110px"), score("max_score", "Max"), badge("status", "Status"),
			link("attachment", "File"),
		}
	case perm.Quizzes:
		cols = []Column{
			text("title", "Title"), text("subject_name", "Subject"), fixed("time_limit", "Time (min)", "90px"),
			fixed("question_count", "Questions", "90px"), score("total_points", "Points"), badge("status", "Status"),
		}
	case perm.Exams:
		cols = []Column{
			text("title", "Title"), text("subject_name", "Subject"), fixed("exam_date", "Date", "110px"),
			fixed("duration", "Duration", "90px"), fixed("question_count", "Questions", "90px"),
			score("total_points", "Points"), score("passing_score", "Passing"), badge("status", "Status"),
		}
	case perm.Grades:
		if !owner {
			cols = append(cols, text("student_name", "Student"))
		}
		cols = append(cols,
			text("subject_name", "Subject"), text("grading_period_name", "Period"),
			score("activity_score", "Activity"), score("quiz_score", "Quiz"), score("exam_score", "Exam"),
			score("final_grade", "Final"), badge("status", "Status"),
		)
	case perm.Lessons:
		cols = []Column{
			text("title", "Title"), text("subject_name", "Subject"), text("teacher_name", "Teacher"),
			badge("status", "Status"), link("file", "PDF"),
		}
	case perm.Interventions:
		cols = []Column{
			text("student_name", "Student"), text("subject_name", "Subject"), text("reason", "Reason"),
			fixed("start_date", "Start", "110px"), fixed("end_date", "End", "110px"), badge("status", "Status"),
		}
	case perm.Announcements:
		cols = []Column{
			text("title", "Title"), badge("audience", "Audience"), badge("priority", "Priority"),
			text("author_name", "Author"), fixed("published_at", "Published", "150px"),
			fixed("expires_at", "Expires", "150px"),
		}
	case perm.Attendance:
		if !owner {
			cols = append(cols, text("student_name", "Student"))
		}
		cols = append(cols,
			text("subject_name", "Subject"), fixed("date", "Date", "110px"), badge("status", "Status"),
			text("remarks", "Remarks"),
		)
	case perm.Submissions:
		cols = []Column{text("activity_title", "Activity")}
		if !owner {
			cols = append(cols, text("student_name", "Student"))
		}
		cols = append(cols,
			fixed("submitted_at", "Submitted", "150px"), badge("status", "Status"),
			score("score", "Score"), text("feedback", "Feedback"), link("file", "File"),
		)
	}
	return cols
}

// DefaultSort is the sort a grid starts with.
func DefaultSort(entity string) Sort {
	switch entity {
	case perm.Subjects:
		return Sort{Field: "code", Ascending: true}
	case perm.Semesters, perm.GradingPeriods:
		return Sort{Field: "start_date"}
	case perm.Students, perm.Teachers:
		return Sort{Field: "last_name", Ascending: true}
	case perm.Activities:
		return Sort{Field: "due_date"}
	case perm.Exams:
		return Sort{Field: "exam_date"}
	case perm.Attendance:
		return Sort{Field: "date"}
	case perm.Announcements:
		return Sort{Field: "published_at"}
	case perm.Submissions:
		return Sort{Field: "submitted_at"}
	}
	return Sort{Field: "created_at"}
}

// LayoutFor returns the grid layout of entity for caps.
func LayoutFor(entity string, caps perm.Capabilities) Layout {
	return Layout{
		Entity:  entity,
		Columns: Columns(entity, caps),
		Sort:    DefaultSort(entity),
		Actions: Allowed(entity, caps),
	}
}
