package crud

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/trezcool/lmsadmin/core"
)

// Schema lists the fields a client must fill before submitting a create or an update.
// It is read from the `validate:"required"` tags of the input structs, so the server
// validator and the client check share one source.
type Schema struct {
	Create []string `json:"create"`
	Update []string `json:"update"`
	Locked []string `json:"locked,omitempty"` // accepted on create, ignored on update
}

func NewSchema(create, update interface{}) Schema {
	s := Schema{Create: RequiredFields(create)}
	if update != nil {
		s.Update = RequiredFields(update)
		updatable := make(map[string]bool)
		for _, name := range jsonFields(update) {
			updatable[name] = true
		}
		for _, name := range jsonFields(create) {
			if !updatable[name] {
				s.Locked = append(s.Locked, name)
			}
		}
	}
	return s
}

func jsonFields(v interface{}) []string {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	var names []string
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// RequiredFields returns the json names of the fields of struct v tagged required.
func RequiredFields(v interface{}) []string {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	var names []string
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		for _, rule := range strings.Split(f.Tag.Get("validate"), ",") {
			if rule == "required" || rule == "notblank" {
				names = append(names, name)
				break
			}
		}
	}
	return names
}

// Missing returns one message per required field absent or blank in values.
func (s Schema) Missing(values map[string]interface{}, update bool) []string {
	fields := s.Create
	if update {
		fields = s.Update
	}
	var msgs []string
	for _, f := range fields {
		if isBlank(values[f]) {
			msgs = append(msgs, fmt.Sprintf("%s is required", core.Humanize(f)))
		}
	}
	return msgs
}

func isBlank(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []interface{}:
		return len(val) == 0
	}
	return false
}
