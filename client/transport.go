// Package client drives the entity endpoints the way the admin pages do:
// paged grids, create/edit forms and notifications.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/attendance"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/grade"
)

// TransportError is a network failure or a response that is not an envelope.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// Failure is an envelope with success=false.
type Failure struct {
	Status  int
	Message string
	Fields  []core.FieldError
}

func (e *Failure) Error() string { return e.Message }

func (e *Failure) Unauthenticated() bool { return e.Status == http.StatusUnauthorized }

type envelope struct {
	Success         *bool           `json:"success"`
	Message         string          `json:"message"`
	Data            json.RawMessage `json:"data"`
	Draw            int             `json:"draw"`
	RecordsTotal    int             `json:"recordsTotal"`
	RecordsFiltered int             `json:"recordsFiltered"`
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string { return c.token }

// Login exchanges credentials for a session token used by every later call.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	env, err := c.do(ctx, "login", http.MethodPost, "/auth/login", nil, body)
	if err != nil {
		return err
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := decodeData(env, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

// Entity returns the endpoint of one entity.
func (c *Client) Entity(name string) *Endpoint {
	return &Endpoint{client: c, entity: name}
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body interface{}) (*envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request")
		}
		bodyReader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &TransportError{Op: op, Err: errors.Errorf("malformed response (HTTP %d)", resp.StatusCode)}
	}
	if env.Success == nil {
		return nil, &TransportError{Op: op, Err: errors.Errorf("response without success (HTTP %d)", resp.StatusCode)}
	}
	if !*env.Success {
		f := &Failure{Status: resp.StatusCode, Message: env.Message}
		// data is not always a field list
		var fields []core.FieldError
		if err := json.Unmarshal(env.Data, &fields); err == nil {
			f.Fields = fields
		}
		return nil, f
	}
	return &env, nil
}

func decodeData(env *envelope, v interface{}) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return &TransportError{Op: "decode", Err: err}
	}
	return nil
}

// Query is the listing state of a grid.
type Query struct {
	Draw    int
	Start   int
	Length  int
	Sort    Sort
	Search  string
	Filters map[string]string
}

func (q Query) values() url.Values {
	v := url.Values{}
	v.Set("action", "datatable")
	v.Set("draw", strconv.Itoa(q.Draw))
	v.Set("start", strconv.Itoa(q.Start))
	if q.Length != 0 {
		v.Set("length", strconv.Itoa(q.Length))
	}
	if q.Sort.Field != "" {
		v.Set("ordering", q.Sort.Param())
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	for k, val := range q.Filters {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

type Page struct {
	Draw     int
	Total    int
	Filtered int
	Rows     []Row
}

// Result is the outcome of a successful write.
type Result struct {
	Message string
	Record  Row
}

// Lister is what a grid reads from.
type Lister interface {
	List(ctx context.Context, q Query) (Page, error)
}

// Source is what a form reads from and writes to.
type Source interface {
	Get(ctx context.Context, id string) (Row, error)
	Create(ctx context.Context, values map[string]interface{}) (Result, error)
	Update(ctx context.Context, id string, values map[string]interface{}) (Result, error)
	Delete(ctx context.Context, id string) (Result, error)
}

// Endpoint speaks the CRUD-table protocol of one entity.
type Endpoint struct {
	client *Client
	entity string
}

func (ep *Endpoint) Name() string { return ep.entity }

func (ep *Endpoint) path() string { return "/api/" + ep.entity }

// Read runs a GET action and decodes its data into out.
func (ep *Endpoint) Read(ctx context.Context, action string, params url.Values, out interface{}) error {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("action", action)
	env, err := ep.client.do(ctx, ep.entity+"."+action, http.MethodGet, ep.path(), q, nil)
	if err != nil {
		return err
	}
	return decodeData(env, out)
}

// Write runs a POST action. id may be empty.
func (ep *Endpoint) Write(ctx context.Context, action, id string, values map[string]interface{}, out interface{}) (string, error) {
	body := make(map[string]interface{}, len(values)+2)
	for k, v := range values {
		body[k] = v
	}
	body["action"] = action
	if id != "" {
		body["id"] = id
	}
	env, err := ep.client.do(ctx, ep.entity+"."+action, http.MethodPost, ep.path(), nil, body)
	if err != nil {
		return "", err
	}
	if out != nil {
		if err := decodeData(env, out); err != nil {
			return "", err
		}
	}
	return env.Message, nil
}

func (ep *Endpoint) List(ctx context.Context, q Query) (Page, error) {
	env, err := ep.client.do(ctx, ep.entity+".datatable", http.MethodGet, ep.path(), q.values(), nil)
	if err != nil {
		return Page{}, err
	}
	page := Page{Draw: env.Draw, Total: env.RecordsTotal, Filtered: env.RecordsFiltered}
	if err := decodeData(env, &page.Rows); err != nil {
		return Page{}, err
	}
	return page, nil
}

func (ep *Endpoint) Get(ctx context.Context, id string) (Row, error) {
	var row Row
	err := ep.Read(ctx, "get", url.Values{"id": {id}}, &row)
	return row, err
}

func (ep *Endpoint) Create(ctx context.Context, values map[string]interface{}) (Result, error) {
	var res Result
	var err error
	res.Message, err = ep.Write(ctx, "create", "", values, &res.Record)
	return res, err
}

func (ep *Endpoint) Update(ctx context.Context, id string, values map[string]interface{}) (Result, error) {
	var res Result
	var err error
	res.Message, err = ep.Write(ctx, "update", id, values, &res.Record)
	return res, err
}

func (ep *Endpoint) Delete(ctx context.Context, id string) (Result, error) {
	msg, err := ep.Write(ctx, "delete", id, nil, nil)
	return Result{Message: msg}, err
}

func (ep *Endpoint) Schema(ctx context.Context) (crud.Schema, error) {
	var s crud.Schema
	err := ep.Read(ctx, "schema", nil, &s)
	return s, err
}

func (ep *Endpoint) Options(ctx context.Context) ([]crud.Option, error) {
	var opts []crud.Option
	err := ep.Read(ctx, "options", nil, &opts)
	return opts, err
}

// ComputeGrade asks the grades endpoint for the derived values of the scores.
func (c *Client) ComputeGrade(ctx context.Context, in grade.ComputeInput) (grade.Result, error) {
	params := url.Values{}
	for name, s := range map[string]*float64{
		"activity_score": in.ActivityScore,
		"quiz_score":     in.QuizScore,
		"exam_score":     in.ExamScore,
	} {
		if s != nil {
			params.Set(name, strconv.FormatFloat(*s, 'f', -1, 64))
		}
	}
	var res grade.Result
	err := c.Entity("grades").Read(ctx, "compute", params, &res)
	return res, err
}

// BulkMark records the attendance of a class.
func (c *Client) BulkMark(ctx context.Context, bm attendance.BulkMark) (attendance.BulkResult, error) {
	var values map[string]interface{}
	b, err := json.Marshal(bm)
	if err != nil {
		return attendance.BulkResult{}, errors.Wrap(err, "encoding marks")
	}
	if err := json.Unmarshal(b, &values); err != nil {
		return attendance.BulkResult{}, errors.Wrap(err, "encoding marks")
	}
	var res attendance.BulkResult
	_, err = c.Entity("attendance").Write(ctx, "bulk_mark", "", values, &res)
	return res, err
}
