package inmemdb

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

// Table is an in-memory crud.Store. Rows are kept in insertion order.
// Derived columns are recomputed by the derive hook on every read, outside the table lock.
type Table[R any] struct {
	mu     sync.RWMutex
	rows   map[string]R
	order  []string
	derive func(rec *R)
}

var _ crud.Store[struct{ crud.Base }] = (*Table[struct{ crud.Base }])(nil) // interface compliance check

func NewTable[R any]() *Table[R] {
	return &Table[R]{rows: make(map[string]R)}
}

// Derive sets the hook filling the joined columns of a row.
func (t *Table[R]) Derive(fn func(rec *R)) {
	t.mu.Lock()
	t.derive = fn
	t.mu.Unlock()
}

func (t *Table[R]) snapshot() []R {
	t.mu.RLock()
	rows := make([]R, 0, len(t.order))
	for _, id := range t.order {
		rows = append(rows, t.rows[id])
	}
	derive := t.derive
	t.mu.RUnlock()

	if derive != nil {
		for i := range rows {
			derive(&rows[i])
		}
	}
	return rows
}

func (t *Table[R]) Query(_ context.Context, q crud.Query) (crud.Page[R], error) {
	var page crud.Page[R]
	var matched []R
	for _, rec := range t.snapshot() {
		rec := rec
		if !matchAll(&rec, q.Scope) {
			continue
		}
		page.Total++
		if !matchAll(&rec, q.Filters) || !matchSearch(&rec, q.Search, q.SearchFields) {
			continue
		}
		matched = append(matched, rec)
	}
	page.Filtered = len(matched)

	if len(q.Orderings) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, ord := range q.Orderings {
				a, _ := crud.FieldValue(&matched[i], ord.Field)
				b, _ := crud.FieldValue(&matched[j], ord.Field)
				if c := compare(a, b); c != 0 {
					if ord.Ascending {
						return c < 0
					}
					return c > 0
				}
			}
			return false
		})
	}

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[q.Offset:]
		}
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	page.Rows = matched
	return page, nil
}

func (t *Table[R]) Get(_ context.Context, id string) (R, error) {
	t.mu.RLock()
	rec, ok := t.rows[id]
	derive := t.derive
	t.mu.RUnlock()
	if !ok {
		return rec, crud.ErrNoRecord
	}
	if derive != nil {
		derive(&rec)
	}
	return rec, nil
}

func (t *Table[R]) Insert(ctx context.Context, rec R) (R, error) {
	id := crud.Meta(&rec).ID
	t.mu.Lock()
	if _, exists := t.rows[id]; exists || id == "" {
		t.mu.Unlock()
		return rec, fmt.Errorf("inmemdb: invalid or duplicate id %q", id)
	}
	t.rows[id] = rec
	t.order = append(t.order, id)
	t.mu.Unlock()
	return t.Get(ctx, id)
}

func (t *Table[R]) Update(ctx context.Context, rec R) (R, error) {
	id := crud.Meta(&rec).ID
	t.mu.Lock()
	if _, exists := t.rows[id]; !exists {
		t.mu.Unlock()
		return rec, crud.ErrNoRecord
	}
	t.rows[id] = rec
	t.mu.Unlock()
	return t.Get(ctx, id)
}

func (t *Table[R]) Delete(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.rows[id]; !exists {
		return crud.ErrNoRecord
	}
	t.remove(id)
	return nil
}

func (t *Table[R]) remove(id string) {
	delete(t.rows, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

func (t *Table[R]) DeleteWhere(_ context.Context, filters ...crud.Filter) (int, error) {
	var ids []string
	for _, rec := range t.snapshot() {
		rec := rec
		if matchAll(&rec, filters) {
			ids = append(ids, crud.Meta(&rec).ID)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	var n int
	for _, id := range ids {
		if _, exists := t.rows[id]; exists {
			t.remove(id)
			n++
		}
	}
	return n, nil
}

func (t *Table[R]) Exists(_ context.Context, filters ...crud.Filter) (bool, error) {
	for _, rec := range t.snapshot() {
		rec := rec
		if matchAll(&rec, filters) {
			return true, nil
		}
	}
	return false, nil
}

// Lookup returns the row with this id, without derived columns, for use in joins.
func (t *Table[R]) Lookup(id string) (R, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.rows[id]
	return rec, ok
}

// Rows returns the stored rows, without derived columns, for use in joins.
func (t *Table[R]) Rows() []R {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rows := make([]R, 0, len(t.order))
	for _, id := range t.order {
		rows = append(rows, t.rows[id])
	}
	return rows
}

func matchAll(rec interface{}, filters []crud.Filter) bool {
	for _, f := range filters {
		if !match(rec, f) {
			return false
		}
	}
	return true
}

func match(rec interface{}, f crud.Filter) bool {
	v, ok := crud.FieldValue(rec, f.Field)
	if !ok {
		return false
	}
	switch f.Op {
	case crud.OpEq:
		return compare(v, f.Value) == 0
	case crud.OpNe:
		return compare(v, f.Value) != 0
	case crud.OpGte:
		return normalize(v) != nil && compare(v, f.Value) >= 0
	case crud.OpLte:
		return normalize(v) != nil && compare(v, f.Value) <= 0
	case crud.OpIn:
		values, _ := f.Value.([]string)
		for _, val := range values {
			if compare(v, val) == 0 {
				return true
			}
		}
		return false
	}
	return false
}

func matchSearch(rec interface{}, search string, fields []string) bool {
	if search == "" || len(fields) == 0 {
		return true
	}
	search = strings.ToLower(search)
	for _, f := range fields {
		v, ok := crud.FieldValue(rec, f)
		if !ok {
			continue
		}
		if n := normalize(v); n != nil && strings.Contains(strings.ToLower(fmt.Sprint(n)), search) {
			return true
		}
	}
	return false
}

// normalize dereferences pointers and maps values onto string, float64, bool or time.Time.
// Zero dates and nil pointers become nil.
func normalize(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	switch x := rv.Interface().(type) {
	case core.Date:
		if x.IsZero() {
			return nil
		}
		return x.Time()
	case time.Time:
		return x
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return fmt.Sprint(rv.Interface())
}

func compare(a, b interface{}) int {
	x, y := normalize(a), normalize(b)
	switch {
	case x == nil && y == nil:
		return 0
	case x == nil:
		return -1
	case y == nil:
		return 1
	}

	switch xv := x.(type) {
	case time.Time:
		var yv time.Time
		switch yt := y.(type) {
		case time.Time:
			yv = yt
		case string:
			yv, _ = core.ParseDate(yt)
		}
		switch {
		case xv.Before(yv):
			return -1
		case xv.After(yv):
			return 1
		}
		return 0
	case float64:
		var yv float64
		switch yt := y.(type) {
		case float64:
			yv = yt
		case string:
			yv, _ = strconv.ParseFloat(yt, 64)
		}
		switch {
		case xv < yv:
			return -1
		case xv > yv:
			return 1
		}
		return 0
	case bool:
		yv := fmt.Sprint(y) == "true"
		switch {
		case xv == yv:
			return 0
		case !xv:
			return -1
		}
		return 1
	}
	return strings.Compare(fmt.Sprint(x), fmt.Sprint(y))
}
