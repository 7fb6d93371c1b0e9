package crud

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/perm"
)

var nowFunc = time.Now // mockable

// Entity implements the CRUD-table operations of one record type on top of a Store.
// The order of checks is fixed: authentication, capability, existence, ownership,
// then structural, referential and semantic validation. No store call happens before
// the capability check passes.
type Entity[R any] struct {
	Name      string // permission entity, e.g. "activities"
	Label     string // human name, e.g. "Activity"
	Store     Store[R]
	Validator *core.Validator

	SearchFields []string
	SortFields   []string
	FilterFields []string
	DateField    string // enables `<DateField>_from` / `<DateField>_to` range filters
	DefaultOrder []core.DBOrdering

	// OwnerField is compared with Caller.ProfileID for owner-scoped callers.
	OwnerField string
	// Scope adds visibility restrictions beyond ownership.
	Scope func(c Caller) []Filter
	// OptionLabel renders a record for dropdowns.
	OptionLabel func(rec R) string
	// BeforeDelete runs after authorization, before the row is deleted (cascades).
	// It is not atomic with the delete: if the delete fails the cascade stays applied.
	BeforeDelete func(ctx context.Context, rec R) error

	schema Schema
}

// Mutation is one create or update request.
type Mutation[R any] struct {
	Input interface{}                            // validated structurally
	Refs  []Ref                                  // foreign keys to resolve
	Build func(rec *R) error                     // copies the input onto the record
	Check func(ctx context.Context, rec R) error // semantic rules
}

type ListParams struct {
	Filters   []Filter
	Search    string
	Orderings []core.DBOrdering
	Offset    int
	Limit     int
}

func (e *Entity[R]) SetSchema(create, update interface{}) {
	e.schema = NewSchema(create, update)
}

func (e *Entity[R]) Schema() Schema      { return e.schema }
func (e *Entity[R]) EntityName() string  { return e.Name }
func (e *Entity[R]) EntityLabel() string { return e.Label }

// Authorize checks authentication then the entity-level capability. View is granted by view_own too.
func (e *Entity[R]) Authorize(c Caller, action perm.Action) error {
	if !c.IsAuthenticated() {
		return core.ErrUnauthenticated
	}
	caps := c.Caps()
	allowed := caps.Can(e.Name, action)
	if action == perm.View {
		allowed = caps.CanView(e.Name)
	}
	if !allowed {
		return core.ErrUnauthorized
	}
	return nil
}

func (e *Entity[R]) ownerScoped(c Caller) bool {
	return e.OwnerField != "" && c.Caps().IsOwnerScoped(e.Name)
}

func (e *Entity[R]) scope(c Caller) []Filter {
	var filters []Filter
	if e.ownerScoped(c) {
		filters = append(filters, Eq(e.OwnerField, c.ProfileID))
	}
	if e.Scope != nil {
		filters = append(filters, e.Scope(c)...)
	}
	return filters
}

// Owns reports whether rec belongs to c.
func (e *Entity[R]) Owns(c Caller, rec R) bool {
	if e.OwnerField == "" {
		return true
	}
	v, ok := FieldValue(&rec, e.OwnerField)
	if !ok {
		return false
	}
	owner, _ := v.(string)
	return owner != "" && owner == c.ProfileID
}

func (e *Entity[R]) visible(c Caller, rec R) bool {
	if e.ownerScoped(c) && !e.Owns(c, rec) {
		return false
	}
	return true
}

func (e *Entity[R]) orderings(ords []core.DBOrdering) []core.DBOrdering {
	allowed := make([]core.DBOrdering, 0, len(ords))
	for _, o := range ords {
		for _, f := range e.SortFields {
			if o.Field == f {
				allowed = append(allowed, o)
				break
			}
		}
	}
	if len(allowed) == 0 {
		return e.DefaultOrder
	}
	return allowed
}

// ParseFilters builds filters from request values. Empty values never restrict.
func (e *Entity[R]) ParseFilters(get func(string) string) []Filter {
	var filters []Filter
	for _, f := range e.FilterFields {
		if v := core.CleanString(get(f)); v != "" {
			filters = append(filters, Eq(f, v))
		}
	}
	if e.DateField != "" {
		if t, ok := core.ParseDate(get(e.DateField + "_from")); ok {
			filters = append(filters, Gte(e.DateField, core.DateOf(t)))
		}
		if t, ok := core.ParseDate(get(e.DateField + "_to")); ok {
			filters = append(filters, Lte(e.DateField, core.DateOf(t)))
		}
	}
	return filters
}

func (e *Entity[R]) notFound() error {
	return core.NewNotFoundError(e.Label)
}

// Fetch returns the row with this id regardless of the caller, or NotFound.
func (e *Entity[R]) Fetch(ctx context.Context, id string) (R, error) {
	rec, err := e.Store.Get(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNoRecord {
			return rec, e.notFound()
		}
		return rec, errors.Wrapf(err, "getting %s", e.Name)
	}
	return rec, nil
}

func (e *Entity[R]) List(ctx context.Context, c Caller, p ListParams) (Page[R], error) {
	if err := e.Authorize(c, perm.View); err != nil {
		return Page[R]{}, err
	}
	page, err := e.Store.Query(ctx, Query{
		Scope:        e.scope(c),
		Filters:      p.Filters,
		Search:       core.CleanString(p.Search),
		SearchFields: e.SearchFields,
		Orderings:    e.orderings(p.Orderings),
		Offset:       p.Offset,
		Limit:        p.Limit,
	})
	if err != nil {
		return Page[R]{}, errors.Wrapf(err, "querying %s", e.Name)
	}
	if page.Rows == nil {
		page.Rows = []R{}
	}
	return page, nil
}

// Get returns NotFound for ids outside the caller's visibility.
func (e *Entity[R]) Get(ctx context.Context, c Caller, id string) (R, error) {
	var zero R
	if err := e.Authorize(c, perm.View); err != nil {
		return zero, err
	}
	if core.CleanString(id) == "" {
		return zero, e.notFound()
	}
	page, err := e.Store.Query(ctx, Query{
		Scope:   e.scope(c),
		Filters: []Filter{Eq("id", id)},
		Limit:   1,
	})
	if err != nil {
		return zero, errors.Wrapf(err, "getting %s", e.Name)
	}
	if len(page.Rows) == 0 {
		return zero, e.notFound()
	}
	return page.Rows[0], nil
}

func (e *Entity[R]) validate(ctx context.Context, m Mutation[R]) error {
	if m.Input != nil {
		if err := e.Validator.Struct(m.Input); err != nil {
			return err
		}
	}
	return CheckRefs(ctx, m.Refs...)
}

func (e *Entity[R]) Create(ctx context.Context, c Caller, m Mutation[R]) (R, error) {
	var rec R
	if err := e.Authorize(c, perm.Add); err != nil {
		return rec, err
	}
	if err := e.validate(ctx, m); err != nil {
		return rec, err
	}
	if m.Build != nil {
		if err := m.Build(&rec); err != nil {
			return rec, err
		}
	}
	if m.Check != nil {
		if err := m.Check(ctx, rec); err != nil {
			return rec, err
		}
	}

	meta := Meta(&rec)
	meta.ID = uuid.NewString()
	meta.CreatedAt = nowFunc().UTC()

	created, err := e.Store.Insert(ctx, rec)
	if err != nil {
		return created, errors.Wrapf(err, "inserting %s", e.Name)
	}
	return created, nil
}

func (e *Entity[R]) Update(ctx context.Context, c Caller, id string, m Mutation[R]) (R, error) {
	var zero R
	if err := e.Authorize(c, perm.Edit); err != nil {
		return zero, err
	}
	existing, err := e.Fetch(ctx, id)
	if err != nil {
		return zero, err
	}
	if !e.visible(c, existing) {
		return zero, core.ErrUnauthorized
	}
	if err := e.validate(ctx, m); err != nil {
		return zero, err
	}

	rec := existing
	if m.Build != nil {
		if err := m.Build(&rec); err != nil {
			return zero, err
		}
	}
	// id and created_at never change
	*Meta(&rec) = *Meta(&existing)

	if m.Check != nil {
		if err := m.Check(ctx, rec); err != nil {
			return zero, err
		}
	}

	updated, err := e.Store.Update(ctx, rec)
	if err != nil {
		if errors.Cause(err) == ErrNoRecord {
			return zero, e.notFound()
		}
		return zero, errors.Wrapf(err, "updating %s", e.Name)
	}
	return updated, nil
}

func (e *Entity[R]) Delete(ctx context.Context, c Caller, id string) error {
	if err := e.Authorize(c, perm.Delete); err != nil {
		return err
	}
	existing, err := e.Fetch(ctx, id)
	if err != nil {
		return err
	}
	if !e.visible(c, existing) {
		return core.ErrUnauthorized
	}
	if e.BeforeDelete != nil {
		if err := e.BeforeDelete(ctx, existing); err != nil {
			return errors.Wrapf(err, "cascading %s delete", e.Name)
		}
	}
	if err := e.Store.Delete(ctx, id); err != nil {
		if errors.Cause(err) == ErrNoRecord {
			return e.notFound()
		}
		return errors.Wrapf(err, "deleting %s", e.Name)
	}
	return nil
}

// Options returns every visible record as a dropdown entry, never paged.
func (e *Entity[R]) Options(ctx context.Context, c Caller) ([]Option, error) {
	if err := e.Authorize(c, perm.View); err != nil {
		return nil, err
	}
	page, err := e.Store.Query(ctx, Query{Scope: e.scope(c), Orderings: e.DefaultOrder})
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s options", e.Name)
	}
	opts := make([]Option, 0, len(page.Rows))
	for i := range page.Rows {
		rec := page.Rows[i]
		label := Meta(&rec).ID
		if e.OptionLabel != nil {
			label = e.OptionLabel(rec)
		}
		opts = append(opts, Option{Value: Meta(&rec).ID, Label: label})
	}
	return opts, nil
}

// AuthorizeAttach checks that c may attach a file to rec. Editors may attach to any visible
// record; owner-scoped callers allowed to add may attach to their own records.
func (e *Entity[R]) AuthorizeAttach(c Caller, rec R) error {
	if !c.IsAuthenticated() {
		return core.ErrUnauthenticated
	}
	caps := c.Caps()
	if !(caps.CanEdit(e.Name) || (e.ownerScoped(c) && caps.CanAdd(e.Name))) {
		return core.ErrUnauthorized
	}
	if !e.visible(c, rec) {
		return core.ErrUnauthorized
	}
	return nil
}

// Attach updates a record after a file upload.
func (e *Entity[R]) Attach(ctx context.Context, c Caller, id string, set func(rec *R)) (R, error) {
	var zero R
	if !c.IsAuthenticated() {
		return zero, core.ErrUnauthenticated
	}
	existing, err := e.Fetch(ctx, id)
	if err != nil {
		return zero, err
	}
	if err := e.AuthorizeAttach(c, existing); err != nil {
		return zero, err
	}
	rec := existing
	set(&rec)
	updated, err := e.Store.Update(ctx, rec)
	if err != nil {
		return zero, errors.Wrapf(err, "attaching file to %s", e.Name)
	}
	return updated, nil
}

// Unique returns a ConflictError when a row other than id has field equal to value.
func (e *Entity[R]) Unique(ctx context.Context, id, field string, value interface{}, msg string) error {
	if v, ok := value.(string); ok && v == "" {
		return nil
	}
	filters := []Filter{Eq(field, value)}
	if id != "" {
		filters = append(filters, Ne("id", id))
	}
	exists, err := e.Store.Exists(ctx, filters...)
	if err != nil {
		return errors.Wrapf(err, "checking %s uniqueness", field)
	}
	if exists {
		return core.NewConflictError("%s", msg)
	}
	return nil
}

// Count returns the number of records visible to c.
func (e *Entity[R]) Count(ctx context.Context, c Caller) (int, error) {
	if err := e.Authorize(c, perm.View); err != nil {
		return 0, err
	}
	page, err := e.Store.Query(ctx, Query{Scope: e.scope(c), Limit: 1})
	if err != nil {
		return 0, errors.Wrapf(err, "counting %s", e.Name)
	}
	return page.Total, nil
}
