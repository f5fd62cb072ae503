// Package http provides the fluent HTTP client used for every KU-MAN API call.
//
// Usage:
//
//	resp, err := http.Get(base + "/admin/order").
//	    Bearer(token).
//	    Endpoint("orders").
//	    WithContext(ctx).
//	    Send()
//
//	var orders []models.Order
//	err = resp.Decode(&orders) // 2xx + JSON content type, or a typed error
//
//	// POST JSON body
//	resp, err := http.Post(base + "/admin/login").
//	    Body(map[string]any{"username": u, "password": p}).
//	    Send()
//
// Requests are made exactly once unless Retry is called; pollers rely on the
// next tick instead of retrying.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	gohttp "net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shashiranjanraj/kuman/pkg/logger"
	"github.com/shashiranjanraj/kuman/pkg/metrics"
	"github.com/shashiranjanraj/kuman/pkg/reqid"
)

// ErrUnexpectedContentType is returned by Decode when a 2xx response does not
// carry a JSON body.
var ErrUnexpectedContentType = errors.New("http: unexpected content type")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http: %s %s failed with status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// IsStatus reports whether err is a *StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// defaultTransport is the connection-pooled transport used in production.
// Tests can replace DefaultClient.Transport to inject mocks.
var defaultTransport = &gohttp.Transport{
	Proxy:               gohttp.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 50,
	IdleConnTimeout:     90 * time.Second,
}

// DefaultClient is the shared HTTP client used by all outgoing requests.
//
//	http.DefaultClient.Transport = myMockTransport
//	defer http.ResetTransport()
var DefaultClient = &gohttp.Client{
	Transport: defaultTransport,
}

// DefaultTimeout is the per-attempt timeout applied to new requests.
var DefaultTimeout = 15 * time.Second

// ResetTransport restores the production transport on DefaultClient.
func ResetTransport() {
	DefaultClient.Transport = defaultTransport
}

// ------------------- Request -------------------

// Request is a fluent HTTP request builder.
type Request struct {
	method    string
	url       string
	endpoint  string
	query     url.Values
	headers   map[string]string
	body      interface{}
	timeout   time.Duration
	retries   int
	retryWait time.Duration
	ctx       context.Context
}

// Get starts a GET request.
func Get(url string) *Request { return newRequest(gohttp.MethodGet, url) }

// Post starts a POST request.
func Post(url string) *Request { return newRequest(gohttp.MethodPost, url) }

// Delete starts a DELETE request.
func Delete(url string) *Request { return newRequest(gohttp.MethodDelete, url) }

func newRequest(method, rawURL string) *Request {
	return &Request{
		method:    method,
		url:       rawURL,
		endpoint:  "other",
		query:     url.Values{},
		headers:   map[string]string{"Accept": "application/json"},
		timeout:   DefaultTimeout,
		retries:   1,
		retryWait: 500 * time.Millisecond,
		ctx:       context.Background(),
	}
}

// Header adds a single header to the request.
func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Bearer sets the Authorization: Bearer <token> header. An empty token is
// ignored so public endpoints can share the call site.
func (r *Request) Bearer(token string) *Request {
	if token == "" {
		return r
	}
	return r.Header("Authorization", "Bearer "+token)
}

// Query adds a query-string parameter. Empty values are skipped.
func (r *Request) Query(key, value string) *Request {
	if value != "" {
		r.query.Set(key, value)
	}
	return r
}

// QueryInt adds an integer query-string parameter.
func (r *Request) QueryInt(key string, value int64) *Request {
	return r.Query(key, strconv.FormatInt(value, 10))
}

// Endpoint names the call for metrics and logs. Raw URLs carry ids and are
// not used as label values.
func (r *Request) Endpoint(name string) *Request {
	r.endpoint = name
	return r
}

// Body sets the request body. v is marshalled to JSON automatically.
// Pass a string or []byte to send raw bodies.
func (r *Request) Body(v interface{}) *Request {
	r.body = v
	return r
}

// Timeout sets the per-attempt timeout.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Retry configures automatic retries on transport failure.
// n is total attempts (1 = no retry), wait is the initial backoff (doubles each attempt).
func (r *Request) Retry(n int, wait time.Duration) *Request {
	if n < 1 {
		n = 1
	}
	r.retries = n
	r.retryWait = wait
	return r
}

// WithContext sets a custom context.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx != nil {
		r.ctx = ctx
	}
	return r
}

// URL returns the full request URL including the query string.
func (r *Request) URL() string {
	if len(r.query) == 0 {
		return r.url
	}
	sep := "?"
	if u, err := url.Parse(r.url); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	return r.url + sep + r.query.Encode()
}

// ------------------- Send -------------------

// Send executes the request and returns a Response. Transport failures are
// returned as errors; HTTP status codes are left for the caller (see Throw
// and Decode).
func (r *Request) Send() (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= r.retries; attempt++ {
		resp, err := r.do()
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if r.ctx.Err() != nil {
			break
		}
		if attempt < r.retries {
			backoff := time.Duration(float64(r.retryWait) * math.Pow(2, float64(attempt-1)))
			logger.WithCtx(r.ctx).Warn("http: request failed, retrying",
				"endpoint", r.endpoint, "attempt", attempt, "backoff", backoff, "error", err)
			time.Sleep(backoff)
		}
	}

	if r.retries == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("http: all %d attempts failed for %s %s: %w", r.retries, r.method, r.url, lastErr)
}

func (r *Request) do() (*Response, error) {
	body, ct, err := r.buildBody()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.URL(), body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	if id := reqid.FromCtx(r.ctx); id != "" {
		req.Header.Set(reqid.Header, id)
	}

	start := time.Now()
	resp, err := DefaultClient.Do(req)
	if err != nil {
		metrics.ObserveAPICall(r.endpoint, r.method, "error", start)
		return nil, fmt.Errorf("http: send %s %s: %w", r.method, r.url, err)
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	metrics.ObserveAPICall(r.endpoint, r.method, strconv.Itoa(resp.StatusCode), start)
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}

	logger.WithCtx(r.ctx).Debug("http: response",
		"endpoint", r.endpoint,
		"method", r.method,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Raw:        raw,
		method:     r.method,
		url:        r.url,
	}, nil
}

func (r *Request) buildBody() (io.Reader, string, error) {
	if r.body == nil {
		return nil, "", nil
	}
	switch v := r.body.(type) {
	case string:
		return bytes.NewBufferString(v), "text/plain", nil
	case []byte:
		return bytes.NewReader(v), "application/octet-stream", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("http: marshal body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

// ------------------- Response -------------------

// Response wraps the HTTP response with convenience methods.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
	method     string
	url        string
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsJSON reports whether the response declares a JSON media type
// (application/json or any +json suffix).
func (r *Response) IsJSON() bool {
	mt, _, err := mime.ParseMediaType(r.Headers.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == "application/json" || (len(mt) > 5 && mt[len(mt)-5:] == "+json")
}

// JSON unmarshals the response body into dest.
func (r *Response) JSON(dest interface{}) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

// Text returns the response body as a string.
func (r *Response) Text() string {
	return string(r.Raw)
}

// Header returns a single response header value.
func (r *Response) Header(key string) string {
	return r.Headers.Get(key)
}

// Throw returns a *StatusError if the response status is not 2xx.
func (r *Response) Throw() error {
	if !r.OK() {
		return &StatusError{Method: r.method, URL: r.url, Code: r.StatusCode, Body: truncate(string(r.Raw), 256)}
	}
	return nil
}

// Decode checks status and content type, then unmarshals into dest.
// A nil dest only performs the checks.
func (r *Response) Decode(dest interface{}) error {
	if err := r.Throw(); err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if !r.IsJSON() {
		return fmt.Errorf("%w: %q from %s %s", ErrUnexpectedContentType, r.Headers.Get("Content-Type"), r.method, r.url)
	}
	return r.JSON(dest)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
