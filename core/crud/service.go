package crud

import (
	"context"

	"github.com/trezcool/lmsadmin/core/perm"
)

// Service is the CRUD-table surface of one entity: R is the record, N the create input
// and U the update input.
type Service[R, N, U any] interface {
	EntityName() string
	EntityLabel() string
	Schema() Schema
	ParseFilters(get func(string) string) []Filter
	Authorize(c Caller, action perm.Action) error

	List(ctx context.Context, c Caller, p ListParams) (Page[R], error)
	Get(ctx context.Context, c Caller, id string) (R, error)
	Create(ctx context.Context, c Caller, in N) (R, error)
	Update(ctx context.Context, c Caller, id string, in U) (R, error)
	Delete(ctx context.Context, c Caller, id string) error
	Options(ctx context.Context, c Caller) ([]Option, error)
	Count(ctx context.Context, c Caller) (int, error)
}
