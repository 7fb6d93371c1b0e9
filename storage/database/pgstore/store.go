// Package pgstore implements the persistence gateways on PostgreSQL.
package pgstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

const alias = "t"

// Table describes how one record type maps onto its SQL table.
type Table struct {
	Name    string
	Columns []string // stored columns, without id & created_at
	// Nullable lists optional foreign keys: "" is written as NULL and read back as "".
	Nullable []string
	// Derived maps read-only columns to the SQL expression computing them.
	// Expressions refer to the table row as "t".
	Derived map[string]string
}

func (tbl Table) isNullable(col string) bool {
	for _, c := range tbl.Nullable {
		if c == col {
			return true
		}
	}
	return false
}

func (tbl Table) isStored(col string) bool {
	if col == "id" || col == "created_at" {
		return true
	}
	for _, c := range tbl.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// expr returns the SQL expression of a column, or false for unknown columns.
func (tbl Table) expr(col string) (string, bool) {
	if d, ok := tbl.Derived[col]; ok {
		return "(" + d + ")", true
	}
	if !tbl.isStored(col) {
		return "", false
	}
	if tbl.isNullable(col) {
		return fmt.Sprintf("COALESCE(%s.%s::text, '')", alias, col), true
	}
	return alias + "." + col, true
}

func isUUIDColumn(col string) bool {
	return col == "id" || strings.HasSuffix(col, "_id")
}

func (tbl Table) selectColumns() []string {
	cols := []string{alias + ".id", alias + ".created_at"}
	for _, c := range tbl.Columns {
		e, _ := tbl.expr(c)
		if e == alias+"."+c {
			cols = append(cols, e)
			continue
		}
		cols = append(cols, e+" AS "+c)
	}
	for c, d := range tbl.Derived {
		cols = append(cols, "("+d+") AS "+c)
	}
	return cols
}

// Store is a crud.Store over one table.
type Store[R any] struct {
	db    *sqlx.DB
	table Table
	sb    sq.StatementBuilderType
}

func NewStore[R any](db *sqlx.DB, table Table) *Store[R] {
	return &Store[R]{
		db:    db,
		table: table,
		sb:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *Store[R]) from() string {
	return s.table.Name + " " + alias
}

// trapErr maps driver errors onto the errors the services understand.
func (s *Store[R]) trapErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return crud.ErrNoRecord
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return core.NewConflictError("a record with the same values already exists")
		case "foreign_key_violation":
			return core.NewValidationError(errors.New("a related record does not exist or is still in use"))
		}
	}
	return errors.Wrap(err, msg)
}

func (s *Store[R]) where(filters []crud.Filter) (sq.And, error) {
	conds := make(sq.And, 0, len(filters))
	for _, f := range filters {
		e, ok := s.table.expr(f.Field)
		if !ok {
			return nil, errors.Errorf("%s: unknown column %q", s.table.Name, f.Field)
		}
		if isUUIDColumn(f.Field) && !s.table.isNullable(f.Field) {
			var cond sq.Sqlizer
			if f, cond = uuidGuard(f); cond != nil {
				conds = append(conds, cond)
				continue
			}
		}
		switch f.Op {
		case crud.OpEq:
			conds = append(conds, sq.Eq{e: f.Value})
		case crud.OpNe:
			conds = append(conds, sq.NotEq{e: f.Value})
		case crud.OpGte:
			conds = append(conds, sq.GtOrEq{e: f.Value})
		case crud.OpLte:
			conds = append(conds, sq.LtOrEq{e: f.Value})
		case crud.OpIn:
			values, _ := f.Value.([]string)
			conds = append(conds, sq.Eq{e: values})
		default:
			return nil, errors.Errorf("unsupported operator %q", f.Op)
		}
	}
	return conds, nil
}

// uuidGuard resolves comparisons of uuid columns with values that are not uuids,
// which postgres would reject. A non-nil cond replaces the comparison.
func uuidGuard(f crud.Filter) (crud.Filter, sq.Sqlizer) {
	valid := func(v string) bool { _, err := uuid.Parse(v); return err == nil }
	switch v := f.Value.(type) {
	case string:
		if valid(v) {
			return f, nil
		}
		if f.Op == crud.OpNe {
			return f, sq.Expr("TRUE")
		}
		return f, sq.Expr("FALSE")
	case []string:
		kept := make([]string, 0, len(v))
		for _, id := range v {
			if valid(id) {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			return f, sq.Expr("FALSE")
		}
		f.Value = kept
	}
	return f, nil
}

func (s *Store[R]) search(term string, fields []string) sq.Sqlizer {
	if term == "" || len(fields) == 0 {
		return nil
	}
	like := "%" + term + "%"
	or := make(sq.Or, 0, len(fields))
	for _, f := range fields {
		if e, ok := s.table.expr(f); ok {
			or = append(or, sq.ILike{"CAST(" + e + " AS text)": like})
		}
	}
	return or
}

func (s *Store[R]) count(ctx context.Context, conds ...sq.Sqlizer) (int, error) {
	q := s.sb.Select("COUNT(*)").From(s.from())
	for _, c := range conds {
		if c != nil {
			q = q.Where(c)
		}
	}
	query, args, err := q.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building count query")
	}
	var n int
	if err := s.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, s.trapErr(err, "counting "+s.table.Name)
	}
	return n, nil
}

func (s *Store[R]) Query(ctx context.Context, q crud.Query) (crud.Page[R], error) {
	var page crud.Page[R]
	scope, err := s.where(q.Scope)
	if err != nil {
		return page, err
	}
	filters, err := s.where(q.Filters)
	if err != nil {
		return page, err
	}
	search := s.search(q.Search, q.SearchFields)

	if page.Total, err = s.count(ctx, scope); err != nil {
		return page, err
	}
	if len(q.Filters) == 0 && search == nil {
		page.Filtered = page.Total
	} else if page.Filtered, err = s.count(ctx, scope, filters, search); err != nil {
		return page, err
	}

	sel := s.sb.Select(s.table.selectColumns()...).From(s.from()).Where(scope).Where(filters)
	if search != nil {
		sel = sel.Where(search)
	}
	for _, ord := range q.Orderings {
		if e, ok := s.table.expr(ord.Field); ok {
			sel = sel.OrderBy(core.DBOrdering{Field: e, Ascending: ord.Ascending}.String())
		}
	}
	sel = sel.OrderBy(alias + ".created_at ASC")
	if q.Offset > 0 {
		sel = sel.Offset(uint64(q.Offset))
	}
	if q.Limit > 0 {
		sel = sel.Limit(uint64(q.Limit))
	}

	query, args, err := sel.ToSql()
	if err != nil {
		return page, errors.Wrap(err, "building select query")
	}
	rows := make([]R, 0)
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return page, s.trapErr(err, "querying "+s.table.Name)
	}
	page.Rows = rows
	return page, nil
}

func (s *Store[R]) Get(ctx context.Context, id string) (R, error) {
	var rec R
	if _, err := uuid.Parse(id); err != nil {
		return rec, crud.ErrNoRecord
	}
	query, args, err := s.sb.Select(s.table.selectColumns()...).
		From(s.from()).
		Where(sq.Eq{alias + ".id": id}).
		ToSql()
	if err != nil {
		return rec, errors.Wrap(err, "building select query")
	}
	if err := s.db.GetContext(ctx, &rec, query, args...); err != nil {
		return rec, s.trapErr(err, "getting "+s.table.Name)
	}
	return rec, nil
}

// values returns the stored columns of rec, with empty optional keys as NULL.
func (s *Store[R]) values(rec *R) map[string]interface{} {
	fields := crud.Fields(rec)
	vals := make(map[string]interface{}, len(s.table.Columns))
	for _, c := range s.table.Columns {
		v := fields[c].Interface()
		if str, ok := v.(string); ok && str == "" && s.table.isNullable(c) {
			v = nil
		}
		vals[c] = v
	}
	return vals
}

func (s *Store[R]) Insert(ctx context.Context, rec R) (R, error) {
	meta := crud.Meta(&rec)
	vals := s.values(&rec)
	vals["id"] = meta.ID
	vals["created_at"] = meta.CreatedAt.UTC()

	query, args, err := s.sb.Insert(s.table.Name).SetMap(vals).ToSql()
	if err != nil {
		return rec, errors.Wrap(err, "building insert query")
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return rec, s.trapErr(err, "inserting into "+s.table.Name)
	}
	return s.Get(ctx, meta.ID)
}

func (s *Store[R]) Update(ctx context.Context, rec R) (R, error) {
	id := crud.Meta(&rec).ID
	query, args, err := s.sb.Update(s.table.Name).
		SetMap(s.values(&rec)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return rec, errors.Wrap(err, "building update query")
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return rec, s.trapErr(err, "updating "+s.table.Name)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return rec, crud.ErrNoRecord
	}
	return s.Get(ctx, id)
}

func (s *Store[R]) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return crud.ErrNoRecord
	}
	query, args, err := s.sb.Delete(s.table.Name).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return s.trapErr(err, "deleting from "+s.table.Name)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return crud.ErrNoRecord
	}
	return nil
}

func (s *Store[R]) DeleteWhere(ctx context.Context, filters ...crud.Filter) (int, error) {
	conds, err := s.where(filters)
	if err != nil {
		return 0, err
	}
	query, args, err := s.sb.Delete(s.from()).Where(conds).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building delete query")
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, s.trapErr(err, "deleting from "+s.table.Name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deleted rows")
	}
	return int(n), nil
}

func (s *Store[R]) Exists(ctx context.Context, filters ...crud.Filter) (bool, error) {
	conds, err := s.where(filters)
	if err != nil {
		return false, err
	}
	query, args, err := s.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From(s.from()).
		Where(conds).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, errors.Wrap(err, "building exists query")
	}
	var exists bool
	if err := s.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, s.trapErr(err, "checking "+s.table.Name)
	}
	return exists, nil
}
