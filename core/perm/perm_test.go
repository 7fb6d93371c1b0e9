package perm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCan(t *testing.T) {
	tests := []struct {
		name string
		role Role
		cap  string
		want bool
	}{
		{name: "admin deletes students", role: RoleAdmin, cap: Capability(Students, Delete), want: true},
		{name: "teacher edits grades", role: RoleTeacher, cap: Capability(Grades, Edit), want: true},
		{name: "teacher cannot add students", role: RoleTeacher, cap: Capability(Students, Add)},
		{name: "teacher views students", role: RoleTeacher, cap: Capability(Students, View), want: true},
		{name: "student views lessons", role: RoleStudent, cap: Capability(Lessons, View), want: true},
		{name: "student cannot delete activities", role: RoleStudent, cap: Capability(Activities, Delete)},
		{name: "student adds submissions", role: RoleStudent, cap: Capability(Submissions, Add), want: true},
		{name: "student cannot view all grades", role: RoleStudent, cap: Capability(Grades, View)},
		{name: "unknown role", role: Role("janitor"), cap: Capability(Lessons, View)},
		{name: "unknown capability", role: RoleAdmin, cap: "lol:view"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.role, tt.cap))
		})
	}
}

func TestCapabilities(t *testing.T) {
	student := For(RoleStudent)
	assert.True(t, student.IsStudent())
	assert.True(t, student.IsOwnerScoped(Submissions))
	assert.True(t, student.CanView(Grades))
	assert.False(t, student.CanView(Students))
	assert.False(t, student.IsOwnerScoped(Lessons))
	assert.NotContains(t, student.Visible(), Students)

	teacher := For(RoleTeacher)
	assert.False(t, teacher.IsOwnerScoped(Submissions))
	assert.True(t, teacher.CanEdit(Submissions))
	assert.False(t, teacher.CanDelete(Subjects))

	admin := For(RoleAdmin)
	assert.Equal(t, Entities, admin.Visible())

	// callers cannot widen the shared matrix through their copy
	admin.Grants[0] = "x"
	assert.True(t, Can(RoleAdmin, Capability(Activities, Add)))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Teacher ")
	assert.True(t, ok)
	assert.Equal(t, RoleTeacher, r)

	_, ok = ParseRole("owner")
	assert.False(t, ok)
}
