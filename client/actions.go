package client

import (
	"context"

	"github.com/trezcool/lmsadmin/core/perm"
)

// ActionSpec describes a grid action. Whether it is shown depends only on the caller capabilities.
type ActionSpec struct {
	Name       string      `json:"name"`
	Label      string      `json:"label"`
	Icon       string      `json:"icon"`
	Capability perm.Action `json:"capability"`
	Row        bool        `json:"row"` // per-row button, else toolbar
}

// Allows reports whether caps grant the action on entity.
func (a ActionSpec) Allows(entity string, caps perm.Capabilities) bool {
	if a.Capability == perm.View {
		return caps.CanView(entity)
	}
	return caps.Can(entity, a.Capability)
}

var (
	actCreate    = ActionSpec{Name: "create", Label: "Add", Icon: "plus", Capability: perm.Add}
	actExport    = ActionSpec{Name: "export", Label: "Export", Icon: "download", Capability: perm.View}
	actEdit      = ActionSpec{Name: "edit", Label: "Edit", Icon: "pencil", Capability: perm.Edit, Row: true}
	actDelete    = ActionSpec{Name: "delete", Label: "Delete", Icon: "trash", Capability: perm.Delete, Row: true}
	actQuestions = ActionSpec{Name: "questions", Label: "Questions", Icon: "list", Capability: perm.Edit, Row: true}
	actUpload    = ActionSpec{Name: "upload", Label: "Upload", Icon: "upload", Capability: perm.Edit, Row: true}
	actBulkMark  = ActionSpec{Name: "bulk_mark", Label: "Mark Class", Icon: "check", Capability: perm.Add}
)

func specsOf(entity string) []ActionSpec {
	specs := []ActionSpec{actCreate, actExport, actEdit}
	switch entity {
	case perm.Quizzes, perm.Exams:
		specs = append(specs, actQuestions)
	case perm.Students, perm.Teachers, perm.Activities, perm.Lessons:
		specs = append(specs, actUpload)
	case perm.Submissions:
		// students attach files to their own submissions
		up := actUpload
		up.Capability = perm.Add
		specs = append(specs, up)
	case perm.Attendance:
		specs = append(specs, actBulkMark)
	}
	return append(specs, actDelete)
}

// Allowed lists the actions of entity granted by caps.
func Allowed(entity string, caps perm.Capabilities) []ActionSpec {
	var out []ActionSpec
	for _, spec := range specsOf(entity) {
		if spec.Allows(entity, caps) {
			out = append(out, spec)
		}
	}
	return out
}

// Handler runs an action on the record id ("" for toolbar actions).
type Handler func(ctx context.Context, id string) error

type Action struct {
	ActionSpec
	Handler Handler
}

// Bind pairs the allowed specs with their handlers. Specs without a handler are dropped.
func Bind(specs []ActionSpec, handlers map[string]Handler) []Action {
	var out []Action
	for _, spec := range specs {
		if h, ok := handlers[spec.Name]; ok && h != nil {
			out = append(out, Action{ActionSpec: spec, Handler: h})
		}
	}
	return out
}
