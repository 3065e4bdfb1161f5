// Package postgrest implements store.Store against a hosted Supabase project
// through its PostgREST endpoint (/rest/v1/<table>).
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"pdv/internal/infra"
	"pdv/internal/store"

	"github.com/go-resty/resty/v2"
)

// Config points the client at a Supabase project.
type Config struct {
	URL     string // e.g. https://xyz.supabase.co
	Key     string // service or anon key
	Timeout time.Duration
}

// Client is a PostgREST-backed store.Store. It is not Transactional: every call
// is an independent HTTP request committed by the server.
type Client struct {
	http    *resty.Client
	breaker *infra.CircuitBreaker
}

var _ store.Store = (*Client)(nil)

// New builds a client. breaker may be nil to disable fast-fail.
func New(cfg Config, breaker *infra.CircuitBreaker) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := resty.New().
		SetBaseURL(cfg.URL+"/rest/v1").
		SetTimeout(cfg.Timeout).
		SetHeader("apikey", cfg.Key).
		SetAuthToken(cfg.Key).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=representation")
	return &Client{http: c, breaker: breaker}
}

// APIError is a non-2xx PostgREST answer.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("postgrest: status %d: %s", e.Status, e.Body)
}

func (c *Client) Insert(ctx context.Context, table string, row store.Row) (store.Row, error) {
	rows, err := c.do(ctx, "insert", table, http.MethodPost, nil, row)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.Wrap("insert", table, store.ErrNoRows)
	}
	return rows[0], nil
}

func (c *Client) Select(ctx context.Context, table string, q store.Query) ([]store.Row, error) {
	params := filters(q.Where)
	params.Set("select", "*")
	if q.OrderBy != "" {
		dir := "asc"
		if q.Desc {
			dir = "desc"
		}
		params.Set("order", q.OrderBy+"."+dir)
	}
	return c.do(ctx, "select", table, http.MethodGet, params, nil)
}

func (c *Client) Update(ctx context.Context, table string, where []store.Eq, patch store.Row) (int64, error) {
	rows, err := c.do(ctx, "update", table, http.MethodPatch, filters(where), patch)
	return int64(len(rows)), err
}

func (c *Client) Delete(ctx context.Context, table string, where []store.Eq) (int64, error) {
	rows, err := c.do(ctx, "delete", table, http.MethodDelete, filters(where), nil)
	return int64(len(rows)), err
}

// do sends one request. Transport errors and 5xx count against the breaker;
// 4xx answers are the caller's fault and do not.
func (c *Client) do(ctx context.Context, op, table, method string, params url.Values, body any) ([]store.Row, error) {
	var (
		resp   *resty.Response
		apiErr error
	)
	call := func() error {
		req := c.http.R().SetContext(ctx)
		if params != nil {
			req.SetQueryParamsFromValues(params)
		}
		if body != nil {
			req.SetBody(body)
		}
		var err error
		resp, err = req.Execute(method, "/"+url.PathEscape(table))
		if err != nil {
			return err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return &APIError{Status: resp.StatusCode(), Body: resp.String()}
		}
		if resp.IsError() {
			apiErr = &APIError{Status: resp.StatusCode(), Body: resp.String()}
		}
		return nil
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(call)
	} else {
		err = call()
	}
	if err == nil {
		err = apiErr
	}
	if err != nil {
		return nil, store.Wrap(op, table, err)
	}
	return decodeRows(op, table, resp.Body())
}

func decodeRows(op, table string, body []byte) ([]store.Row, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var rows []store.Row
	if err := dec.Decode(&rows); err != nil {
		return nil, store.Wrap(op, table, fmt.Errorf("decode: %w", err))
	}
	return rows, nil
}

func filters(where []store.Eq) url.Values {
	v := url.Values{}
	for _, cond := range where {
		v.Add(cond.Field, "eq."+fmt.Sprint(cond.Value))
	}
	return v
}

// Ping checks that the PostgREST root answers.
func (c *Client) Ping(ctx context.Context) error {
	call := func() error {
		resp, err := c.http.R().SetContext(ctx).Get("/")
		if err != nil {
			return err
		}
		if resp.IsError() {
			return &APIError{Status: resp.StatusCode(), Body: resp.String()}
		}
		return nil
	}
	if c.breaker != nil {
		return c.breaker.Execute(call)
	}
	return call()
}
