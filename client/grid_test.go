package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/core/perm"
)

type listReply struct {
	page Page
	err  error
}

type listCall struct {
	ctx   context.Context
	q     Query
	reply chan listReply
}

// blockingLister hands every request to the test and waits for its answer.
type blockingLister struct {
	calls chan listCall
}

func newBlockingLister() *blockingLister {
	return &blockingLister{calls: make(chan listCall, 16)}
}

func (l *blockingLister) List(ctx context.Context, q Query) (Page, error) {
	c := listCall{ctx: ctx, q: q, reply: make(chan listReply, 1)}
	l.calls <- c
	r := <-c.reply
	return r.page, r.err
}

func (l *blockingLister) next(t *testing.T) listCall {
	t.Helper()
	select {
	case c := <-l.calls:
		return c
	case <-time.After(time.Second):
		t.Fatal("no list request")
	}
	return listCall{}
}

type listerFunc func(ctx context.Context, q Query) (Page, error)

func (f listerFunc) List(ctx context.Context, q Query) (Page, error) { return f(ctx, q) }

// recordingLister answers every request with page and remembers the last query.
type recordingLister struct {
	mu   sync.Mutex
	last Query
	n    int
	page Page
}

func (l *recordingLister) List(_ context.Context, q Query) (Page, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = q
	l.n++
	return l.page, nil
}

func (l *recordingLister) lastQuery() Query {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

func subjectRows(codes ...string) []Row {
	var rows []Row
	for _, c := range codes {
		rows = append(rows, Row{"id": "id-" + c, "code": c, "name": c + " name"})
	}
	return rows
}

func TestGrid_latestRequestWins(t *testing.T) {
	src := newBlockingLister()
	reg := NewRegistry(context.Background(), perm.For(perm.RoleAdmin), &Recorder{})
	defer reg.Close()

	g := reg.Init("subjects-table", perm.Subjects, src)
	first := src.next(t)
	assert.Equal(t, GridLoading, g.State())
	assert.Equal(t, 1, first.q.Draw)
	assert.Equal(t, defaultPageLength, first.q.Length)
	assert.Equal(t, Sort{Field: "code", Ascending: true}, first.q.Sort)
	assert.Equal(t, "Loading...", g.View().Placeholder)

	g.Search("math")
	second := src.next(t)
	assert.Equal(t, 2, second.q.Draw)
	assert.Equal(t, "math", second.q.Search)
	assert.Error(t, first.ctx.Err(), "the superseded request is cancelled")

	// the stale answer never shows
	first.reply <- listReply{page: Page{Draw: 1, Total: 3, Filtered: 3, Rows: subjectRows("ENG", "HIS", "MATH")}}
	assert.Never(t, func() bool { return g.State() != GridLoading }, 50*time.Millisecond, 5*time.Millisecond)

	second.reply <- listReply{page: Page{Draw: 2, Total: 3, Filtered: 1, Rows: subjectRows("MATH")}}
	g.Wait()

	v := g.View()
	assert.Equal(t, GridReady, v.State)
	assert.Empty(t, v.Placeholder)
	assert.Equal(t, []string{"id-MATH"}, v.IDs)
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, 1, v.Filtered)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "MATH", v.Rows[0][0])
}

func TestGrid_failure(t *testing.T) {
	n := &Recorder{}
	reg := NewRegistry(context.Background(), perm.For(perm.RoleAdmin), n)
	defer reg.Close()

	g := reg.Init("subjects-table", perm.Subjects, listerFunc(func(context.Context, Query) (Page, error) {
		return Page{}, &Failure{Status: 200, Message: "you are not allowed to perform this action"}
	}))
	g.Wait()

	v := g.View()
	assert.Equal(t, GridFailed, v.State)
	assert.Equal(t, "you are not allowed to perform this action", v.Placeholder)
	assert.Empty(t, v.Rows)
	note, ok := n.Last(LevelError)
	require.True(t, ok)
	assert.Equal(t, "you are not allowed to perform this action", note.Message)

	g = reg.Init("subjects-table", perm.Subjects, listerFunc(func(context.Context, Query) (Page, error) {
		return Page{}, &TransportError{Op: "subjects.datatable", Err: context.DeadlineExceeded}
	}))
	g.Wait()
	assert.Equal(t, "could not reach the server, please try again", g.View().Placeholder)
}

func TestGrid_empty(t *testing.T) {
	reg := NewRegistry(context.Background(), perm.For(perm.RoleAdmin), &Recorder{})
	defer reg.Close()

	g := reg.Init("subjects-table", perm.Subjects, &recordingLister{})
	g.Wait()
	v := g.View()
	assert.Equal(t, GridReady, v.State)
	assert.Equal(t, "No records found", v.Placeholder)
}

func TestGrid_paging(t *testing.T) {
	src := &recordingLister{page: Page{Total: 40, Filtered: 40, Rows: subjectRows("ENG")}}
	reg := NewRegistry(context.Background(), perm.For(perm.RoleAdmin), &Recorder{})
	defer reg.Close()

	g := reg.Init("subjects-table", perm.Subjects, src)
	g.Wait()

	g.GoTo(2)
	g.Wait()
	assert.Equal(t, 20, src.lastQuery().Start)

	g.Reload(false)
	g.Wait()
	assert.Equal(t, 20, src.lastQuery().Start, "reload keeps the page")

	g.Filter("status", "active")
	g.Wait()
	assert.Equal(t, 0, src.lastQuery().Start, "filtering goes back to the first page")
	assert.Equal(t, "active", src.lastQuery().Filters["status"])

	g.GoTo(1)
	g.Wait()
	g.Reload(true)
	g.Wait()
	assert.Equal(t, 0, src.lastQuery().Start)

	g.SortBy("name", false)
	g.Wait()
	assert.Equal(t, Sort{Field: "name"}, src.lastQuery().Sort)

	draw := g.Query().Draw
	g.SortBy("nope", true)
	assert.Equal(t, draw, g.Query().Draw, "unknown columns are not sortable")
}

func TestRegistry(t *testing.T) {
	src := newBlockingLister()
	reg := NewRegistry(context.Background(), perm.For(perm.RoleTeacher), &Recorder{})

	old := reg.Init("table", perm.Subjects, src)
	first := src.next(t)

	g := reg.Init("table", perm.Activities, src)
	second := src.next(t)
	assert.Equal(t, 1, reg.Len())
	assert.Error(t, first.ctx.Err())

	got, ok := reg.Get("table")
	require.True(t, ok)
	assert.Same(t, g, got)
	assert.Equal(t, perm.Activities, got.Layout().Entity)

	first.reply <- listReply{page: Page{Rows: subjectRows("ENG")}}
	old.Wait()
	assert.Equal(t, GridLoading, old.State(), "a torn down grid no longer changes")

	reg.Close()
	assert.Equal(t, 0, reg.Len())
	assert.Error(t, second.ctx.Err())
	second.reply <- listReply{}
	g.Wait()
	assert.Equal(t, GridLoading, g.State())
}

func TestGrid_actions(t *testing.T) {
	reg := NewRegistry(context.Background(), perm.For(perm.RoleStudent), &Recorder{})
	defer reg.Close()

	g := reg.Init("table", perm.Submissions, &recordingLister{})
	g.Wait()

	var got string
	noop := func(_ context.Context, id string) error { got = id; return nil }
	actions := g.Actions(map[string]Handler{"create": noop, "edit": noop, "upload": noop, "delete": noop})

	var names []string
	for _, a := range actions {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"create", "upload"}, names)
	require.NoError(t, actions[1].Handler(context.Background(), "sub-1"))
	assert.Equal(t, "sub-1", got)
}
