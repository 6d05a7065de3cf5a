// Package backend talks to the logistics REST backend on behalf of signed-in
// staff. Every call runs through a wakeup.Caller so a sleeping backend is
// probed, given a grace period and retried.
package backend

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

	"github.com/rockman-logistics/staffdesk/pkg/wakeup"
)

const maxErrorBody = 64 << 10

// ErrUnauthorized is matched by any backend 401, which means the staff
// token is no longer valid.
var ErrUnauthorized = errors.New("backend: token rejected")

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend %s %s: %d", e.Method, e.Path, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Client is a thin JSON client for the logistics backend.
type Client struct {
	baseURL string
	http    *http.Client
	caller  *wakeup.Caller
}

// NewClient creates a client for baseURL (e.g. http://host/api). A nil
// caller sends every request once, without probing.
func NewClient(baseURL string, timeout time.Duration, caller *wakeup.Caller) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		caller:  caller,
	}
}

// Caller exposes the wrapper the client runs through.
func (c *Client) Caller() *wakeup.Caller {
	return c.caller
}

func (c *Client) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if c.caller == nil {
		return fn(ctx)
	}
	return c.caller.Do(ctx, op, fn)
}

// send performs one request. 4xx answers come back marked permanent.
func (c *Client) send(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return wakeup.Permanent(fmt.Errorf("encode %s body: %w", path, err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return wakeup.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		serr := &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
		if resp.StatusCode < 500 {
			return wakeup.Permanent(serr)
		}
		return serr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// errorMessage pulls a readable message out of a DRF error body.
func errorMessage(raw []byte) string {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	for _, key := range []string{"error", "detail", "non_field_errors"} {
		v, ok := body[key]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(v, &s) == nil {
			return s
		}
		var list []string
		if json.Unmarshal(v, &list) == nil && len(list) > 0 {
			return strings.Join(list, "; ")
		}
	}
	return strings.TrimSpace(string(raw))
}
