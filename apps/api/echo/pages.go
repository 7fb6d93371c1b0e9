package echoapi

import (
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/client"
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

//go:embed templates/pages/*
var pagesFS embed.FS

const pagesDir = "templates/pages"

type renderer struct {
	appName string
	pages   map[string]*template.Template
}

func newRenderer(appName string) *renderer {
	r := &renderer{appName: appName, pages: make(map[string]*template.Template)}
	entries, err := fs.ReadDir(pagesFS, pagesDir)
	if err != nil {
		panic(err)
	}
	funcs := template.FuncMap{
		"json": func(v interface{}) (string, error) {
			b, err := json.Marshal(v)
			return string(b), err
		},
		"lower": strings.ToLower,
	}
	for _, de := range entries {
		fname := de.Name()
		if strings.HasPrefix(fname, "_") || path.Ext(fname) != ".gohtml" {
			continue
		}
		name := strings.TrimSuffix(fname, ".gohtml")
		r.pages[name] = template.Must(
			template.New(name).Funcs(funcs).ParseFS(pagesFS, path.Join(pagesDir, "_base.gohtml"), path.Join(pagesDir, fname)),
		)
	}
	return r
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return errors.Errorf("unknown page %q", name)
	}
	if pd, ok := data.(pageData); ok && pd.AppName == "" {
		pd.AppName = r.appName
		data = pd
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

type (
	menuItem struct {
		Entity string
		Label  string
		Active bool
	}

	pageData struct {
		AppName string
		Title   string
		Caller  crud.Caller
		Menu    []menuItem
		Data    interface{}
	}

	loginPage struct {
		Email string
		Error string
	}

	dashboardCard struct {
		Entity string
		Label  string
		Count  int
	}

	entityPage struct {
		Entity   string
		Label    string
		Endpoint string
		Layout   client.Layout
		Schema   crud.Schema
	}

	errorPage struct {
		Code    int
		Message string
	}
)

type pages struct {
	*Server
	labels map[string]string
}

func registerPages(app *echo.Echo, s *Server) {
	p := pages{Server: s, labels: make(map[string]string)}
	for _, counter := range s.svcs.Counters() {
		p.labels[counter.EntityName()] = counter.EntityLabel()
	}

	app.GET("/login", p.login)
	app.POST("/login", p.submitLogin)
	app.GET("/logout", p.logout)
	app.GET("/", p.dashboard)
	app.GET("/:entity", p.entity)
}

func (p pages) render(ctx echo.Context, code int, name, title string, data interface{}) error {
	c := callerFrom(ctx)
	var menu []menuItem
	if c.IsAuthenticated() {
		for _, e := range c.Caps().Visible() {
			menu = append(menu, menuItem{Entity: e, Label: plural(p.labels[e]), Active: ctx.Param("entity") == e})
		}
	}
	return ctx.Render(code, name, pageData{
		Title:  title,
		Caller: c,
		Menu:   menu,
		Data:   data,
	})
}

func plural(label string) string {
	switch {
	case label == "":
		return label
	case strings.HasSuffix(label, "s"), label == "Attendance":
		return label
	case strings.HasSuffix(label, "y"):
		return strings.TrimSuffix(label, "y") + "ies"
	case strings.HasSuffix(label, "z"):
		return label + "zes"
	}
	return label + "s"
}

func (p pages) login(ctx echo.Context) error {
	if callerFrom(ctx).IsAuthenticated() {
		return ctx.Redirect(http.StatusSeeOther, "/")
	}
	return p.render(ctx, http.StatusOK, "login", "Login", loginPage{})
}

func (p pages) submitLogin(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	data.Email = core.CleanString(data.Email, true /* lower */)
	err := p.validator.Struct(data)
	if err == nil {
		if _, _, err = p.authenticate(ctx, data.Email, data.Password); err == nil {
			return ctx.Redirect(http.StatusSeeOther, "/")
		}
	}
	f, ok := classify(err, p.validator)
	if !ok {
		return err
	}
	return p.render(ctx, http.StatusOK, "login", "Login", loginPage{Email: data.Email, Error: f.env.Message})
}

func (p pages) logout(ctx echo.Context) error {
	p.clearSessionCookie(ctx)
	return ctx.Redirect(http.StatusSeeOther, "/login")
}

func (p pages) dashboard(ctx echo.Context) error {
	c := callerFrom(ctx)
	counts, err := p.svcs.Dashboard(reqCtx(ctx), c)
	if err != nil {
		return err
	}
	var cards []dashboardCard
	for _, e := range c.Caps().Visible() {
		cards = append(cards, dashboardCard{Entity: e, Label: plural(p.labels[e]), Count: counts[e]})
	}
	return p.render(ctx, http.StatusOK, "dashboard", "Dashboard", cards)
}

// entity renders the table shell of an entity; the grid fills it from the endpoint.
func (p pages) entity(ctx echo.Context) error {
	entity := ctx.Param("entity")
	label, ok := p.labels[entity]
	if !ok {
		return echo.ErrNotFound
	}
	c := callerFrom(ctx)
	if !c.IsAuthenticated() {
		return core.ErrUnauthenticated
	}
	caps := c.Caps()
	if !caps.CanView(entity) {
		return echo.NewHTTPError(http.StatusForbidden, core.ErrUnauthorized.Error())
	}

	var schema crud.Schema
	for _, counter := range p.svcs.Counters() {
		if sp, ok := counter.(interface{ Schema() crud.Schema }); ok && counter.EntityName() == entity {
			schema = sp.Schema()
		}
	}
	return p.render(ctx, http.StatusOK, "entity", plural(label), entityPage{
		Entity:   entity,
		Label:    label,
		Endpoint: "/api/" + entity,
		Layout:   client.LayoutFor(entity, caps),
		Schema:   schema,
	})
}

// renderFailure answers a failed page request.
func renderFailure(ctx echo.Context, f failure) error {
	if f.code == http.StatusUnauthorized {
		return ctx.Redirect(http.StatusSeeOther, "/login")
	}
	code := f.code
	if code == http.StatusOK {
		code = http.StatusBadRequest
	}
	return ctx.Render(code, "error", pageData{
		Title:  http.StatusText(code),
		Caller: callerFrom(ctx),
		Data:   errorPage{Code: code, Message: f.env.Message},
	})
}
