package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const defaultMaxResponseBytes = 4 << 20

// Request is a single operation execution.
type Request struct {
	Name      string
	Variables map[string]any
}

// Response holds the raw `data` object of a successful response.
type Response struct {
	Operation string
	Data      gjson.Result
}

// Executor runs GraphQL operations. Client is the HTTP implementation; tests
// and the terminal walker swap in fakes.
type Executor interface {
	Execute(ctx context.Context, req Request) (Response, error)
}

// Observer is notified after each execution.
type Observer func(operation string, duration time.Duration, err error)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout caps each request duration.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHeader adds a static header to every request (client name, version).
func WithHeader(name, value string) Option {
	return func(c *Client) {
		if strings.TrimSpace(name) != "" {
			c.headers.Set(name, value)
		}
	}
}

// WithObserver registers a callback used for metrics.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// WithMaxResponseBytes limits how much of a response body is read. A
// successful response larger than limit fails with ErrResponseTooLarge.
func WithMaxResponseBytes(limit int64) Option {
	return func(c *Client) {
		if limit > 0 {
			c.maxBytes = limit
		}
	}
}

// Client posts operations to a GraphQL endpoint over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
	headers  http.Header
	timeout  time.Duration
	maxBytes int64
	observer Observer
}

var _ Executor = (*Client)(nil)

// NewClient constructs a Client for endpoint.
func NewClient(endpoint string, options ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("graphql: endpoint is required")
	}
	c := &Client{
		endpoint: endpoint,
		http:     http.DefaultClient,
		headers:  make(http.Header),
		maxBytes: defaultMaxResponseBytes,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type requestBody struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Execute sends req and returns the `data` object. Transport failures,
// non-2xx statuses and a non-empty `errors` array are returned as errors.
func (c *Client) Execute(ctx context.Context, req Request) (resp Response, err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer(req.Name, time.Since(start), err)
		}
	}()

	doc, err := Lookup(req.Name)
	if err != nil {
		return Response{}, err
	}

	payload, err := json.Marshal(requestBody{
		Query:         doc.Text,
		OperationName: doc.Name,
		Variables:     req.Variables,
	})
	if err != nil {
		return Response{}, fmt.Errorf("graphql: encode %s: %w", doc.Name, err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("graphql: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for name, values := range c.headers {
		for _, value := range values {
			httpReq.Header.Add(name, value)
		}
	}
	if token := AuthToken(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("graphql: %s: %w", doc.Name, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, c.maxBytes+1))
	if err != nil {
		return Response{}, fmt.Errorf("graphql: read %s response: %w", doc.Name, err)
	}
	oversized := int64(len(body)) > c.maxBytes
	if oversized {
		body = body[:c.maxBytes]
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 512 {
			snippet = snippet[:512] + "...(truncated)"
		}
		return Response{}, &HTTPError{StatusCode: httpResp.StatusCode, Body: snippet}
	}
	if oversized {
		return Response{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrResponseTooLarge, doc.Name, c.maxBytes)
	}

	if !gjson.ValidBytes(body) {
		return Response{}, fmt.Errorf("graphql: %s: invalid JSON response", doc.Name)
	}
	parsed := gjson.ParseBytes(body)
	if errs := parseErrors(parsed.Get("errors")); len(errs) > 0 {
		return Response{}, errs
	}

	data := parsed.Get("data")
	if !data.Exists() || data.Type == gjson.Null {
		return Response{}, ErrNoData
	}
	return Response{Operation: doc.Name, Data: data}, nil
}

func parseErrors(raw gjson.Result) Errors {
	if !raw.IsArray() {
		return nil
	}
	var out Errors
	raw.ForEach(func(_, item gjson.Result) bool {
		entry := Error{
			Message: item.Get("message").String(),
			Code:    item.Get("extensions.code").String(),
		}
		item.Get("path").ForEach(func(_, segment gjson.Result) bool {
			entry.Path = append(entry.Path, segment.String())
			return true
		})
		if entry.Message == "" {
			entry.Message = "unknown error"
		}
		out = append(out, entry)
		return true
	})
	return out
}
