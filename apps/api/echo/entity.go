package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
)

var errUnknownAction = core.NewValidationError(errors.New("unknown action"))

// action handles one `action` of an entity endpoint.
type action func(ctx echo.Context, c crud.Caller, p *payload) error

// endpoint implements the CRUD-table protocol of one entity over its service.
type endpoint struct {
	entity    string
	label     string
	schema    crud.Schema
	authorize func(c crud.Caller, a perm.Action) error
	reads     map[string]action // GET ?action=
	writes    map[string]action // POST action=
}

func newEndpoint[R, N, U any](s *Server, svc crud.Service[R, N, U]) *endpoint {
	ep := &endpoint{
		entity: svc.EntityName(),
		label:  svc.EntityLabel(),
		schema: svc.Schema(),
	}
	ep.authorize = svc.Authorize

	ep.reads = map[string]action{
		"datatable": func(ctx echo.Context, c crud.Caller, _ *payload) error {
			params, paging := listParams(ctx, svc.ParseFilters, true)
			page, err := svc.List(reqCtx(ctx), c, params)
			if err != nil {
				return errors.Wrapf(err, "listing %s", ep.entity)
			}
			s.metrics.observe(ctx, true)
			return ctx.JSON(http.StatusOK, crud.PageEnvelope{
				Success:         true,
				Draw:            paging.Draw,
				RecordsTotal:    page.Total,
				RecordsFiltered: page.Filtered,
				Data:            page.Rows,
			})
		},
		"get": func(ctx echo.Context, c crud.Caller, _ *payload) error {
			rec, err := svc.Get(reqCtx(ctx), c, ctx.QueryParam("id"))
			if err != nil {
				return errors.Wrapf(err, "getting %s", ep.entity)
			}
			return s.ok(ctx, "", rec)
		},
		"options": func(ctx echo.Context, c crud.Caller, _ *payload) error {
			opts, err := svc.Options(reqCtx(ctx), c)
			if err != nil {
				return errors.Wrapf(err, "listing %s options", ep.entity)
			}
			return s.ok(ctx, "", opts)
		},
		"schema": func(ctx echo.Context, c crud.Caller, _ *payload) error {
			if !c.IsAuthenticated() {
				return core.ErrUnauthenticated
			}
			return s.ok(ctx, "", ep.schema)
		},
		"export": func(ctx echo.Context, c crud.Caller, _ *payload) error {
			params, _ := listParams(ctx, svc.ParseFilters, false)
			page, err := svc.List(reqCtx(ctx), c, params)
			if err != nil {
				return errors.Wrapf(err, "exporting %s", ep.entity)
			}
			s.metrics.observe(ctx, true)
			return writeCSV(ctx, ep.entity, page.Rows)
		},
	}

	ep.writes = map[string]action{
		"create": func(ctx echo.Context, c crud.Caller, p *payload) error {
			if err := ep.authorize(c, perm.Add); err != nil {
				return err
			}
			var in N
			if err := p.bind(&in); err != nil {
				return err
			}
			rec, err := svc.Create(reqCtx(ctx), c, in)
			if err != nil {
				return errors.Wrapf(err, "creating %s", ep.entity)
			}
			return s.ok(ctx, crud.CreatedMsg(ep.label), rec)
		},
		"update": func(ctx echo.Context, c crud.Caller, p *payload) error {
			if err := ep.authorize(c, perm.Edit); err != nil {
				return err
			}
			var in U
			if err := p.bind(&in); err != nil {
				return err
			}
			rec, err := svc.Update(reqCtx(ctx), c, p.id, in)
			if err != nil {
				return errors.Wrapf(err, "updating %s", ep.entity)
			}
			return s.ok(ctx, crud.UpdatedMsg(ep.label), rec)
		},
		"delete": func(ctx echo.Context, c crud.Caller, p *payload) error {
			if err := svc.Delete(reqCtx(ctx), c, p.id); err != nil {
				return errors.Wrapf(err, "deleting %s", ep.entity)
			}
			return s.ok(ctx, crud.DeletedMsg(ep.label), nil)
		},
	}
	return ep
}

func (ep *endpoint) tag(ctx echo.Context, name string) {
	ctx.Set(entityKey, ep.entity)
	ctx.Set(actionKey, name)
}

func (ep *endpoint) read(ctx echo.Context) error {
	c := callerFrom(ctx)
	if !c.IsAuthenticated() {
		return core.ErrUnauthenticated
	}
	name := ctx.QueryParam("action")
	if name == "" {
		name = "datatable"
	}
	ep.tag(ctx, name)
	act, ok := ep.reads[name]
	if !ok {
		return errUnknownAction
	}
	return act(ctx, c, nil)
}

// authorizeWrite lets through callers holding at least one write capability on the entity,
// before the body is read. Each action then checks its own capability.
func (ep *endpoint) authorizeWrite(c crud.Caller) error {
	err := core.ErrUnauthorized
	for _, a := range []perm.Action{perm.Add, perm.Edit, perm.Delete} {
		if err = ep.authorize(c, a); err == nil {
			return nil
		}
		if err == core.ErrUnauthenticated {
			return err
		}
	}
	return err
}

func (ep *endpoint) write(ctx echo.Context) error {
	if err := ep.authorizeWrite(callerFrom(ctx)); err != nil {
		return err
	}
	p, err := readPayload(ctx)
	if err != nil {
		return err
	}
	return ep.dispatch(ctx, p)
}

func (ep *endpoint) dispatch(ctx echo.Context, p *payload) error {
	ep.tag(ctx, p.action)
	act, ok := ep.writes[p.action]
	if !ok {
		return errUnknownAction
	}
	return act(ctx, callerFrom(ctx), p)
}

// put and destroy are the REST forms of update and delete.
func (ep *endpoint) put(ctx echo.Context) error {
	if err := ep.authorize(callerFrom(ctx), perm.Edit); err != nil {
		return err
	}
	p, err := readPayload(ctx)
	if err != nil {
		return err
	}
	p.action, p.id = "update", ctx.Param("id")
	return ep.dispatch(ctx, p)
}

func (ep *endpoint) destroy(ctx echo.Context) error {
	if err := ep.authorize(callerFrom(ctx), perm.Delete); err != nil {
		return err
	}
	return ep.dispatch(ctx, &payload{ctx: ctx, action: "delete", id: ctx.Param("id")})
}

func (ep *endpoint) register(g *echo.Group) {
	eg := g.Group("/" + ep.entity)
	eg.GET("", ep.read)
	eg.POST("", ep.write)
	eg.PUT("/:id", ep.put)
	eg.DELETE("/:id", ep.destroy)
}
