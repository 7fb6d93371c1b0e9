// Package perm answers "may this role do that on this entity" questions.
// It is a pure function of the role; nothing here touches storage.
package perm

import (
	"sort"
	"strings"
)

type (
	Role   string
	Action string
)

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

const (
	View    Action = "view"
	ViewOwn Action = "view_own"
	Add     Action = "add"
	Edit    Action = "edit"
	Delete  Action = "delete"
)

// Entities
const (
	Subjects       = "subjects"
	Semesters      = "semesters"
	GradingPeriods = "grading_periods"
	Students       = "students"
	Teachers       = "teachers"
	Activities     = "activities"
	Quizzes        = "quizzes"
	Exams          = "exams"
	Grades         = "grades"
	Lessons        = "lessons"
	Interventions  = "interventions"
	Announcements  = "announcements"
	Attendance     = "attendance"
	Submissions    = "submissions"
)

var (
	Roles    = []Role{RoleAdmin, RoleTeacher, RoleStudent}
	Entities = []string{
		Subjects, Semesters, GradingPeriods, Students, Teachers, Activities, Quizzes, Exams,
		Grades, Lessons, Interventions, Announcements, Attendance, Submissions,
	}
	crudActions = []Action{View, Add, Edit, Delete}

	matrix = buildMatrix()
)

// Capability formats an (entity, action) pair as "entity:action".
func Capability(entity string, action Action) string {
	return entity + ":" + string(action)
}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, role := range Roles {
		if r == role {
			return r, true
		}
	}
	return "", false
}

func grantAll(entities ...string) []string {
	caps := make([]string, 0, len(entities)*len(crudActions))
	for _, e := range entities {
		for _, a := range crudActions {
			caps = append(caps, Capability(e, a))
		}
	}
	return caps
}

func grant(action Action, entities ...string) []string {
	caps := make([]string, 0, len(entities))
	for _, e := range entities {
		caps = append(caps, Capability(e, action))
	}
	return caps
}

func buildMatrix() map[Role][]string {
	m := map[Role][]string{
		RoleAdmin: grantAll(Entities...),
	}

	var teacher []string
	teacher = append(teacher, grant(View, Entities...)...)
	teacher = append(teacher, grantAll(
		Activities, Quizzes, Exams, Grades, Lessons, Interventions, Announcements, Attendance, Submissions,
	)...)
	m[RoleTeacher] = teacher

	var student []string
	student = append(student, grant(View, Activities, Quizzes, Exams, Lessons, Announcements, Semesters, GradingPeriods, Subjects)...)
	student = append(student, grant(ViewOwn, Grades, Submissions, Attendance)...)
	student = append(student, grant(Add, Submissions)...)
	m[RoleStudent] = student

	for role, caps := range m {
		m[role] = dedupe(caps)
	}
	return m
}

func dedupe(caps []string) []string {
	sort.Strings(caps)
	out := caps[:0]
	for i, c := range caps {
		if i == 0 || c != caps[i-1] {
			out = append(out, c)
		}
	}
	return out
}

// Can reports whether role holds the capability ("entity:action").
func Can(role Role, capability string) bool {
	caps := matrix[role]
	i := sort.SearchStrings(caps, capability)
	return i < len(caps) && caps[i] == capability
}

// Capabilities is the typed capability set of one caller, resolved once per request or page.
type Capabilities struct {
	Role   Role     `json:"role"`
	Grants []string `json:"grants"`
}

func For(role Role) Capabilities {
	grants := make([]string, len(matrix[role]))
	copy(grants, matrix[role])
	return Capabilities{Role: role, Grants: grants}
}

func (c Capabilities) Can(entity string, action Action) bool {
	capability := Capability(entity, action)
	i := sort.SearchStrings(c.Grants, capability)
	return i < len(c.Grants) && c.Grants[i] == capability
}

// CanView reports whether any row of entity is visible.
func (c Capabilities) CanView(entity string) bool {
	return c.Can(entity, View) || c.Can(entity, ViewOwn)
}

// IsOwnerScoped reports whether only the caller's own rows of entity are visible.
func (c Capabilities) IsOwnerScoped(entity string) bool {
	return !c.Can(entity, View) && c.Can(entity, ViewOwn)
}

func (c Capabilities) CanAdd(entity string) bool    { return c.Can(entity, Add) }
func (c Capabilities) CanEdit(entity string) bool   { return c.Can(entity, Edit) }
func (c Capabilities) CanDelete(entity string) bool { return c.Can(entity, Delete) }

func (c Capabilities) IsAdmin() bool   { return c.Role == RoleAdmin }
func (c Capabilities) IsTeacher() bool { return c.Role == RoleTeacher }
func (c Capabilities) IsStudent() bool { return c.Role == RoleStudent }

// Visible lists the entities the role may view, in menu order.
func (c Capabilities) Visible() []string {
	var out []string
	for _, e := range Entities {
		if c.CanView(e) {
			out = append(out, e)
		}
	}
	return out
}
