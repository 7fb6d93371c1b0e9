package crud

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/trezcool/lmsadmin/core/perm"
)

// Base carries the server-assigned columns every record has.
type Base struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (b *Base) Meta() *Base { return b }

// Meta returns the Base of r. Every record type embeds Base.
func Meta[R any](r *R) *Base {
	if m, ok := any(r).(interface{ Meta() *Base }); ok {
		return m.Meta()
	}
	panic("crud: record does not embed crud.Base")
}

// Caller is the authenticated identity a request runs as.
type Caller struct {
	ID        string    `json:"id"`
	Role      perm.Role `json:"role"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	ProfileID string    `json:"profile_id,omitempty"` // student or teacher record of the user
}

func (c Caller) Caps() perm.Capabilities { return perm.For(c.Role) }

func (c Caller) Name() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c Caller) IsAuthenticated() bool { return c.ID != "" }

type fieldInfo struct {
	name  string
	index []int
}

var fieldCache sync.Map // reflect.Type -> []fieldInfo

func fieldsOf(t reflect.Type) []fieldInfo {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]fieldInfo)
	}
	var infos []fieldInfo
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("db"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		infos = append(infos, fieldInfo{name: name, index: f.Index})
	}
	fieldCache.Store(t, infos)
	return infos
}

// Fields maps the `db` column names of a record struct to their values.
func Fields(rec interface{}) map[string]reflect.Value {
	v := reflect.Indirect(reflect.ValueOf(rec))
	infos := fieldsOf(v.Type())
	out := make(map[string]reflect.Value, len(infos))
	for _, fi := range infos {
		out[fi.name] = v.FieldByIndex(fi.index)
	}
	return out
}

// FieldValue returns the value of the `db` column `name` of rec.
func FieldValue(rec interface{}, name string) (interface{}, bool) {
	v := reflect.Indirect(reflect.ValueOf(rec))
	for _, fi := range fieldsOf(v.Type()) {
		if fi.name == name {
			return v.FieldByIndex(fi.index).Interface(), true
		}
	}
	return nil, false
}

// HasField reports whether the record type of rec has the `db` column `name`.
func HasField(rec interface{}, name string) bool {
	_, ok := FieldValue(rec, name)
	return ok
}
