package client

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/grade"
)

type FormState int

const (
	FormClosed FormState = iota
	FormCreating
	FormEditLoading
	FormEditing
	FormSubmitting
)

func (s FormState) String() string {
	return [...]string{"closed", "creating", "edit_loading", "editing", "submitting"}[s]
}

var (
	ErrBusy        = errors.New("a request is already pending")
	ErrFormClosed  = errors.New("form is not open")
	ErrLockedField = errors.New("field cannot be changed")
)

// Reloader is the grid a form refreshes after a successful write.
type Reloader interface {
	Reload(reset bool)
}

// Derive computes read-only values shown next to the inputs.
type Derive func(values map[string]interface{}) map[string]interface{}

// Form drives the create/edit modal of one entity.
type Form struct {
	src      Source
	schema   crud.Schema
	grid     Reloader
	notify   Notifier
	defaults map[string]interface{}
	derive   Derive

	mu       sync.Mutex
	state    FormState
	action   string
	id       string
	values   map[string]interface{}
	locked   map[string]bool
	derived  map[string]interface{}
	message  string
	deleting bool
}

type FormOption func(*Form)

// WithDefaults sets the values a blank form starts with.
func WithDefaults(values map[string]interface{}) FormOption {
	return func(f *Form) { f.defaults = values }
}

func WithDerive(d Derive) FormOption {
	return func(f *Form) { f.derive = d }
}

func NewForm(src Source, schema crud.Schema, grid Reloader, n Notifier, opts ...FormOption) *Form {
	f := &Form{src: src, schema: schema, grid: grid, notify: n, values: map[string]interface{}{}}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OpenCreate shows a blank form with the defaults applied.
func (f *Form) OpenCreate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting || f.state == FormEditLoading {
		return ErrBusy
	}
	f.state = FormCreating
	f.action = "create"
	f.id = ""
	f.message = ""
	f.locked = nil
	f.values = make(map[string]interface{}, len(f.defaults))
	for k, v := range f.defaults {
		f.values[k] = v
	}
	f.recompute()
	return nil
}

// OpenEdit fetches the record id and shows it, with create-only fields locked.
// The form closes again when the record cannot be fetched.
func (f *Form) OpenEdit(ctx context.Context, id string) error {
	f.mu.Lock()
	if f.state == FormSubmitting || f.state == FormEditLoading {
		f.mu.Unlock()
		return ErrBusy
	}
	f.state = FormEditLoading
	f.message = ""
	f.mu.Unlock()

	row, err := f.src.Get(ctx, id)

	f.mu.Lock()
	if err != nil {
		f.state = FormClosed
		f.mu.Unlock()
		f.notify.Error(message(err))
		return err
	}
	f.state = FormEditing
	f.action = "update"
	f.id = id
	f.values = make(map[string]interface{}, len(row))
	for k, v := range row {
		f.values[k] = v
	}
	f.locked = make(map[string]bool, len(f.schema.Locked))
	for _, name := range f.schema.Locked {
		f.locked[name] = true
	}
	f.recompute()
	f.mu.Unlock()
	return nil
}

// Set changes one input.
func (f *Form) Set(field string, value interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case FormCreating, FormEditing:
	case FormSubmitting, FormEditLoading:
		return ErrBusy
	default:
		return ErrFormClosed
	}
	if f.locked[field] {
		return ErrLockedField
	}
	f.values[field] = value
	f.recompute()
	return nil
}

func (f *Form) recompute() {
	if f.derive == nil {
		f.derived = nil
		return
	}
	f.derived = f.derive(f.values)
}

// Submit validates the inputs locally, then creates or updates the record.
// On success the grid reloads and the form closes; on failure it stays open with its values.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	switch f.state {
	case FormCreating, FormEditing:
	case FormSubmitting, FormEditLoading:
		f.mu.Unlock()
		return ErrBusy
	default:
		f.mu.Unlock()
		return ErrFormClosed
	}
	editing := f.state == FormEditing
	if missing := f.missing(editing); len(missing) > 0 {
		verr := core.NewValidationError(errors.New(strings.Join(missing, ", ")), fieldErrors(f.schema, f.values, editing)...)
		f.message = verr.Error()
		f.mu.Unlock()
		f.notify.Error(verr.Error())
		return verr
	}
	back := f.state
	f.state = FormSubmitting
	id := f.id
	values := f.payload()
	f.mu.Unlock()

	var res Result
	var err error
	if editing {
		res, err = f.src.Update(ctx, id, values)
	} else {
		res, err = f.src.Create(ctx, values)
	}

	if err != nil {
		f.mu.Lock()
		f.state = back
		f.message = message(err)
		f.mu.Unlock()
		f.notify.Error(message(err))
		return err
	}

	if f.grid != nil {
		f.grid.Reload(false)
	}
	f.mu.Lock()
	f.state = FormClosed
	f.message = ""
	f.mu.Unlock()
	f.notify.Success(res.Message)
	return nil
}

func (f *Form) missing(update bool) []string {
	return f.schema.Missing(f.values, update)
}

func fieldErrors(s crud.Schema, values map[string]interface{}, update bool) []core.FieldError {
	fields := s.Create
	if update {
		fields = s.Update
	}
	var out []core.FieldError
	for _, name := range fields {
		one := crud.Schema{Create: []string{name}}
		if msgs := one.Missing(values, false); len(msgs) > 0 {
			out = append(out, core.FieldError{Field: name, Error: msgs[0]})
		}
	}
	return out
}

// payload leaves out locked and derived fields.
func (f *Form) payload() map[string]interface{} {
	out := make(map[string]interface{}, len(f.values))
	for k, v := range f.values {
		if f.locked[k] {
			continue
		}
		if _, ok := f.derived[k]; ok {
			continue
		}
		out[k] = v
	}
	return out
}

// Cancel closes the form without saving.
func (f *Form) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting {
		return
	}
	f.state = FormClosed
	f.message = ""
}

// Delete asks for confirmation, deletes the record, reloads the grid and reports.
// It leaves the modal alone.
func (f *Form) Delete(ctx context.Context, id, label string) error {
	f.mu.Lock()
	if f.deleting {
		f.mu.Unlock()
		return ErrBusy
	}
	f.deleting = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.deleting = false
		f.mu.Unlock()
	}()

	if !f.notify.Confirm(ctx, "Are you sure you want to delete this "+strings.ToLower(label)+"?") {
		return nil
	}
	res, err := f.src.Delete(ctx, id)
	if err != nil {
		f.notify.Error(message(err))
		return err
	}
	if f.grid != nil {
		f.grid.Reload(false)
	}
	f.notify.Success(res.Message)
	return nil
}

func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Action is the discriminator sent with the form: "create" or "update".
func (f *Form) Action() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.action
}

func (f *Form) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

func (f *Form) Value(field string) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[field]
}

func (f *Form) Locked(field string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locked[field]
}

func (f *Form) Derived() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]interface{}, len(f.derived))
	for k, v := range f.derived {
		out[k] = v
	}
	return out
}

// SubmitDisabled reports whether the submit control is greyed out.
func (f *Form) SubmitDisabled() bool {
	return f.State() == FormSubmitting
}

// GradePreview derives final_grade and status from the three scores of a grade form.
// Blank or unparsable scores count as missing.
func GradePreview(values map[string]interface{}) map[string]interface{} {
	res := grade.Compute(number(values["activity_score"]), number(values["quiz_score"]), number(values["exam_score"]))
	return map[string]interface{}{"final_grade": res.FinalGrade, "status": res.Status}
}

func number(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}
