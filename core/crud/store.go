package crud

import (
	"context"
	"errors"

	"github.com/trezcool/lmsadmin/core"
)

// ErrNoRecord is returned by stores when no row matches.
var ErrNoRecord = errors.New("no record found")

type Op string

const (
	OpEq  Op = "eq"
	OpNe  Op = "ne"
	OpGte Op = "gte"
	OpLte Op = "lte"
	OpIn  Op = "in" // Value is a []string
)

// Filter restricts a listing to rows whose column Field compares to Value with Op.
type Filter struct {
	Field string
	Op    Op
	Value interface{}
}

func Eq(field string, value interface{}) Filter  { return Filter{Field: field, Op: OpEq, Value: value} }
func Ne(field string, value interface{}) Filter  { return Filter{Field: field, Op: OpNe, Value: value} }
func Gte(field string, value interface{}) Filter { return Filter{Field: field, Op: OpGte, Value: value} }
func Lte(field string, value interface{}) Filter { return Filter{Field: field, Op: OpLte, Value: value} }
func In(field string, values ...string) Filter   { return Filter{Field: field, Op: OpIn, Value: values} }

// Query describes one listing.
// Scope restricts visibility and is applied to both counts; Filters, Search only to Filtered.
type Query struct {
	Scope        []Filter
	Filters      []Filter
	Search       string
	SearchFields []string
	Orderings    []core.DBOrdering
	Offset       int
	Limit        int // <= 0: no limit
}

type Page[R any] struct {
	Rows     []R
	Total    int // rows visible before Filters & Search
	Filtered int // rows matching Filters & Search
}

// Checker answers existence questions, used for foreign-key checks.
type Checker interface {
	Exists(ctx context.Context, filters ...Filter) (bool, error)
}

// Store is the persistence gateway of one entity.
// Rows returned by Query and Get carry their derived (joined) columns.
type Store[R any] interface {
	Checker
	Query(ctx context.Context, q Query) (Page[R], error)
	Get(ctx context.Context, id string) (R, error)
	Insert(ctx context.Context, rec R) (R, error)
	Update(ctx context.Context, rec R) (R, error)
	Delete(ctx context.Context, id string) error
	DeleteWhere(ctx context.Context, filters ...Filter) (int, error)
}

// HideDrafts returns a Scope hiding rows whose column field equals draft from students.
func HideDrafts(field, draft string) func(c Caller) []Filter {
	return func(c Caller) []Filter {
		if c.Caps().IsStudent() {
			return []Filter{Ne(field, draft)}
		}
		return nil
	}
}
