package client

import (
	"context"
	"sync"

	"github.com/trezcool/lmsadmin/core/perm"
)

type GridState int

const (
	GridLoading GridState = iota
	GridReady
	GridFailed
)

func (s GridState) String() string {
	switch s {
	case GridLoading:
		return "loading"
	case GridReady:
		return "ready"
	}
	return "failed"
}

const defaultPageLength = 10

// Grid binds one table element to the listing of an entity.
// Rows are only exposed when the latest request succeeded; while loading or after a
// failure the grid shows a placeholder instead.
type Grid struct {
	element string
	src     Lister
	layout  Layout
	notify  Notifier
	ctx     context.Context
	stop    context.CancelFunc

	mu       sync.Mutex
	state    GridState
	query    Query
	page     Page
	draw     int
	cancel   context.CancelFunc
	done     chan struct{}
	closed   bool
	errorMsg string
}

func newGrid(parent context.Context, element string, src Lister, layout Layout, n Notifier) *Grid {
	ctx, stop := context.WithCancel(parent)
	g := &Grid{
		element: element,
		src:     src,
		layout:  layout,
		notify:  n,
		ctx:     ctx,
		stop:    stop,
		query:   Query{Length: defaultPageLength, Sort: layout.Sort},
	}
	g.load()
	return g
}

func (g *Grid) Element() string { return g.element }
func (g *Grid) Layout() Layout  { return g.layout }

// load supersedes any request in flight with one for the current query.
func (g *Grid) load() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	if g.cancel != nil {
		g.cancel()
	}
	ctx, cancel := context.WithCancel(g.ctx)
	g.cancel = cancel
	g.draw++
	g.query.Draw = g.draw
	g.state = GridLoading
	g.page = Page{}
	g.errorMsg = ""

	done := make(chan struct{})
	g.done = done
	go g.fetch(ctx, cancel, g.query, done)
}

func (g *Grid) fetch(ctx context.Context, cancel context.CancelFunc, q Query, done chan struct{}) {
	defer close(done)
	page, err := g.src.List(ctx, q)
	cancel()

	g.mu.Lock()
	if g.closed || q.Draw != g.draw {
		g.mu.Unlock()
		return
	}
	if err != nil {
		g.state = GridFailed
		g.errorMsg = message(err)
		msg := g.errorMsg
		g.mu.Unlock()
		g.notify.Error(msg)
		return
	}
	g.state = GridReady
	g.page = page
	g.mu.Unlock()
}

// Wait blocks until the latest request is answered or abandoned.
func (g *Grid) Wait() {
	g.mu.Lock()
	done := g.done
	g.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Reload asks again for the current page, sort and filters.
// With reset the grid goes back to the first page.
func (g *Grid) Reload(reset bool) {
	if reset {
		g.mu.Lock()
		g.query.Start = 0
		g.mu.Unlock()
	}
	g.load()
}

// Filter sets (or clears, with "") a filter and reloads from the first page.
func (g *Grid) Filter(name, value string) {
	g.mu.Lock()
	if g.query.Filters == nil {
		g.query.Filters = make(map[string]string)
	}
	g.query.Filters[name] = value
	g.mu.Unlock()
	g.Reload(true)
}

func (g *Grid) Search(term string) {
	g.mu.Lock()
	g.query.Search = term
	g.mu.Unlock()
	g.Reload(true)
}

// SortBy orders the grid by a sortable column.
func (g *Grid) SortBy(field string, ascending bool) {
	sortable := false
	for _, col := range g.layout.Columns {
		if col.Field == field && col.Sortable {
			sortable = true
			break
		}
	}
	if !sortable {
		return
	}
	g.mu.Lock()
	g.query.Sort = Sort{Field: field, Ascending: ascending}
	g.mu.Unlock()
	g.Reload(true)
}

// GoTo shows the page n (0-based).
func (g *Grid) GoTo(n int) {
	if n < 0 {
		n = 0
	}
	g.mu.Lock()
	g.query.Start = n * g.query.Length
	g.mu.Unlock()
	g.load()
}

func (g *Grid) State() GridState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Grid) Query() Query {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.query
}

// View is what the table element shows.
type View struct {
	State       GridState
	Placeholder string
	Columns     []Column
	Rows        [][]string
	IDs         []string
	Total       int
	Filtered    int
}

func (g *Grid) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := View{State: g.state, Columns: g.layout.Columns}
	switch g.state {
	case GridLoading:
		v.Placeholder = "Loading..."
	case GridFailed:
		v.Placeholder = g.errorMsg
	default:
		v.Total, v.Filtered = g.page.Total, g.page.Filtered
		for _, r := range g.page.Rows {
			cells := make([]string, len(g.layout.Columns))
			for i, col := range g.layout.Columns {
				cells[i] = col.Cell(r)
			}
			v.Rows = append(v.Rows, cells)
			v.IDs = append(v.IDs, r.String("id"))
		}
		if len(v.Rows) == 0 {
			v.Placeholder = "No records found"
		}
	}
	return v
}

// Actions binds the grid actions allowed to the caller to their handlers.
// The grid hands row ids to the handlers and never writes anything itself.
func (g *Grid) Actions(handlers map[string]Handler) []Action {
	return Bind(g.layout.Actions, handlers)
}

// teardown abandons the request in flight; the grid no longer changes state.
func (g *Grid) teardown() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.stop()
}

// Registry owns the grids of one page; at most one grid is bound to an element.
type Registry struct {
	ctx    context.Context
	caps   perm.Capabilities
	notify Notifier

	mu    sync.Mutex
	grids map[string]*Grid
}

func NewRegistry(ctx context.Context, caps perm.Capabilities, n Notifier) *Registry {
	return &Registry{ctx: ctx, caps: caps, notify: n, grids: make(map[string]*Grid)}
}

// Init binds a grid for entity to element, tearing down the grid already bound there,
// and requests its first page.
func (reg *Registry) Init(element, entity string, src Lister) *Grid {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if old, ok := reg.grids[element]; ok {
		old.teardown()
	}
	g := newGrid(reg.ctx, element, src, LayoutFor(entity, reg.caps), reg.notify)
	reg.grids[element] = g
	return g
}

func (reg *Registry) Get(element string) (*Grid, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	g, ok := reg.grids[element]
	return g, ok
}

func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.grids)
}

// Close tears every grid down, as when leaving the page.
func (reg *Registry) Close() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for el, g := range reg.grids {
		g.teardown()
		delete(reg.grids, el)
	}
}
