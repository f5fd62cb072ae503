// Package repositories wraps every KU-MAN admin REST endpoint the console
// consumes. Each repository reads the bearer token through session.Reader at
// call time, so a logout is seen by the next request.
package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shashiranjanraj/kuman/pkg/http"
	"github.com/shashiranjanraj/kuman/pkg/session"
)

// ErrNotFound is returned by single-record lookups that come back empty.
var ErrNotFound = errors.New("repositories: record not found")

// Client holds what every repository needs to reach the backend.
type Client struct {
	base    string
	sess    session.Reader
	timeout time.Duration
}

// NewClient returns a client for base (no trailing slash). sess may be nil
// for unauthenticated use.
func NewClient(base string, sess session.Reader, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = http.DefaultTimeout
	}
	return &Client{base: base, sess: sess, timeout: timeout}
}

func (c *Client) token() string {
	if c.sess == nil {
		return ""
	}
	return c.sess.Token()
}

func (c *Client) prepare(ctx context.Context, r *http.Request, endpoint string) *http.Request {
	return r.Endpoint(endpoint).
		Bearer(c.token()).
		Timeout(c.timeout).
		WithContext(ctx)
}

func (c *Client) get(ctx context.Context, endpoint, path string) *http.Request {
	return c.prepare(ctx, http.Get(c.base+path), endpoint)
}

func (c *Client) post(ctx context.Context, endpoint, path string, body interface{}) *http.Request {
	return c.prepare(ctx, http.Post(c.base+path), endpoint).Body(body)
}

func (c *Client) delete(ctx context.Context, endpoint, path string) *http.Request {
	return c.prepare(ctx, http.Delete(c.base+path), endpoint)
}

// fetch sends r and decodes a JSON body into dest.
func fetch(r *http.Request, dest interface{}) error {
	resp, err := r.Send()
	if err != nil {
		return err
	}
	return resp.Decode(dest)
}

// fetchOne decodes either a bare object or the first element of an array.
func fetchOne(r *http.Request, dest interface{}) error {
	var raw json.RawMessage
	if err := fetch(r, &raw); err != nil {
		return err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("repositories: decode list: %w", err)
		}
		if len(items) == 0 {
			return ErrNotFound
		}
		raw = items[0]
	}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("repositories: decode: %w", err)
	}
	return nil
}

// exec sends a mutating request and only checks the status.
func exec(r *http.Request) error {
	resp, err := r.Send()
	if err != nil {
		return err
	}
	return resp.Throw()
}

func id(v int64) string { return strconv.FormatInt(v, 10) }
