package echoapi

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

const (
	orderingParam = "ordering"
	defaultLength = 10
	maxLength     = 1000
)

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `ordering=-due_date,title` or the DataTables `order[i][column]` / `columns[i][data]` params.
func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	if val, ok := data[orderingParam]; ok && len(val) > 0 && val[0] != "" {
		ord.Orderings = core.ParseOrderings(val[0])
		return
	}

	for i := 0; ; i++ {
		col := data.Get("order[" + strconv.Itoa(i) + "][column]")
		if col == "" {
			return
		}
		field := data.Get("columns[" + col + "][data]")
		if field == "" {
			continue
		}
		dir := strings.ToLower(data.Get("order[" + strconv.Itoa(i) + "][dir]"))
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: dir != "desc"})
	}
}

// Paging is a DataTables page request.
type Paging struct {
	Draw   int
	Start  int
	Length int // -1: every row
	Search string
}

func (p *Paging) Bind(ctx echo.Context) {
	atoi := func(name string, def int) int {
		if n, err := strconv.Atoi(ctx.QueryParam(name)); err == nil {
			return n
		}
		return def
	}
	p.Draw = atoi("draw", 0)
	p.Start = atoi("start", 0)
	if p.Start < 0 {
		p.Start = 0
	}
	p.Length = atoi("length", defaultLength)
	if p.Length == 0 || p.Length > maxLength {
		p.Length = maxLength
	}
	p.Search = ctx.QueryParam("search[value]")
	if p.Search == "" {
		p.Search = ctx.QueryParam("search")
	}
}

func (p Paging) limit() int {
	if p.Length < 0 {
		return 0
	}
	return p.Length
}

// listParams collects the listing request of svc: filters, search, sort and page.
func listParams(ctx echo.Context, parseFilters func(get func(string) string) []crud.Filter, paged bool) (crud.ListParams, Paging) {
	var paging Paging
	paging.Bind(ctx)
	ordering := new(Ordering)
	ordering.Bind(ctx)

	p := crud.ListParams{
		Filters:   parseFilters(ctx.QueryParam),
		Search:    paging.Search,
		Orderings: ordering.Orderings,
	}
	if paged {
		p.Offset = paging.Start
		p.Limit = paging.limit()
	}
	return p, paging
}

// payload is the body of a POST, PUT or DELETE on an entity endpoint.
// `action` and `id` come from the query, the path or the body; the record fields are bound
// by echo from JSON or form bodies alike.
type payload struct {
	ctx    echo.Context
	action string
	id     string
	form   bool
	body   []byte // JSON only
}

func readPayload(ctx echo.Context) (*payload, error) {
	req := ctx.Request()
	p := &payload{
		ctx:    ctx,
		action: ctx.QueryParam("action"),
		id:     ctx.Param("id"),
	}

	ctype := req.Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ctype, echo.MIMEMultipartForm) || strings.HasPrefix(ctype, echo.MIMEApplicationForm) {
		p.form = true
		if v := ctx.FormValue("action"); v != "" {
			p.action = v
		}
		if v := ctx.FormValue("id"); v != "" && p.id == "" {
			p.id = v
		}
		return p, nil
	}

	if req.Body == nil {
		return p, nil
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return p, nil
	}
	p.body = body

	var head struct {
		Action string `json:"action"`
		ID     string `json:"id"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, errInvalidJSON
	}
	if head.Action != "" {
		p.action = head.Action
	}
	if head.ID != "" && p.id == "" {
		p.id = head.ID
	}
	return p, nil
}

var errInvalidJSON = core.NewValidationError(errors.New("invalid JSON body"))

// bind decodes the record fields of the body into v. Empty form values are left unset.
func (p *payload) bind(v interface{}) error {
	req := p.ctx.Request()
	if p.form {
		params, err := p.ctx.FormParams()
		if err != nil {
			return core.NewValidationError(errors.Wrap(err, "invalid form body"))
		}
		for k, vals := range params {
			if len(vals) == 0 || (len(vals) == 1 && core.CleanString(vals[0]) == "") {
				delete(params, k)
			}
		}
	} else {
		if len(p.body) == 0 {
			return nil
		}
		req.Body = io.NopCloser(bytes.NewReader(p.body))
		req.ContentLength = int64(len(p.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	if err := p.ctx.Bind(v); err != nil {
		return bindError(err)
	}
	return nil
}

// bindError turns a binder failure into a ValidationError naming the field when it can.
func bindError(err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Internal != nil {
		err = httpErr.Internal
	}

	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	var numErr *strconv.NumError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		msg := core.Humanize(typeErr.Field) + " has an invalid value"
		return core.NewValidationError(errors.New(msg), core.FieldError{Field: typeErr.Field, Error: msg})
	case errors.As(err, &syntaxErr):
		return errInvalidJSON
	case errors.As(err, &numErr):
		return core.NewValidationError(errors.Errorf("%q is not a valid value", numErr.Num))
	}
	return core.NewValidationError(err) // e.g. invalid date
}
