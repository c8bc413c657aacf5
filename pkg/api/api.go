// Package api wraps the SocialHub REST endpoints. Responses are returned as
// raw bodies because their nesting varies; pkg/ingest extracts what callers
// need.
package api

import (
	"context"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kazem-mohamed/socialhub-app/pkg/logger"
)

// Prefix is the versioned API root
const Prefix = "/api/v1"

// CallObserver is told the latency and status of every call. Status is 0
// when the request never got a response.
type CallObserver func(endpoint string, status int, d time.Duration)

// Client issues API calls over a shared resty client
type Client struct {
	http    *resty.Client
	observe CallObserver
}

// Option configures a Client
type Option func(*Client)

// WithCallObserver reports each call to fn
func WithCallObserver(fn CallObserver) Option {
	return func(c *Client) {
		c.observe = fn
	}
}

// New wraps rc
func New(rc *resty.Client, opts ...Option) *Client {
	c := &Client{http: rc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HTTP returns the underlying resty client
func (c *Client) HTTP() *resty.Client {
	return c.http
}

// PageQuery selects one page of a list
type PageQuery struct {
	Page  int
	Limit int
}

func (q PageQuery) params() map[string]string {
	out := map[string]string{}
	if q.Page > 0 {
		out["page"] = strconv.Itoa(q.Page)
	}
	if q.Limit > 0 {
		out["limit"] = strconv.Itoa(q.Limit)
	}
	return out
}

type call struct {
	endpoint string
	method   string
	path     string
	query    map[string]string
	body     any
}

func (c *Client) do(ctx context.Context, in call) ([]byte, error) {
	logger.Debug("API call", "endpoint", in.endpoint, "method", in.method, "path", in.path)

	req := c.http.R().SetContext(ctx)
	if len(in.query) > 0 {
		req.SetQueryParams(in.query)
	}
	if in.body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(in.body)
	}

	start := time.Now()
	resp, err := req.Execute(in.method, Prefix+in.path)

	status := 0
	if resp != nil && err == nil {
		status = resp.StatusCode()
	}
	if c.observe != nil {
		c.observe(in.endpoint, status, time.Since(start))
	}

	if err := CheckResponse(resp, err); err != nil {
		logger.Debug("API call failed", "endpoint", in.endpoint, "error", err)
		return nil, err
	}
	return resp.Body(), nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, query map[string]string) ([]byte, error) {
	return c.do(ctx, call{endpoint: endpoint, method: resty.MethodGet, path: path, query: query})
}

func (c *Client) send(ctx context.Context, method, endpoint, path string, body any) ([]byte, error) {
	return c.do(ctx, call{endpoint: endpoint, method: method, path: path, body: body})
}
