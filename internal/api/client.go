// Package api is the typed client for the LMS analytics backend.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

const maxBodyBytes = 256 << 20

// Observer is told about every completed request.
type Observer func(path string, elapsed time.Duration, err error)

// Client fetches JSON documents from the backend.
type Client struct {
	baseURL  string
	http     *http.Client
	observer Observer
	inflight singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithObserver installs a request observer, used for metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// New returns a client for baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchJSON fetches path and decodes it into T.
func FetchJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	body, err := c.get(ctx, path)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, &NetworkError{Path: path, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return out, nil
}

func (c *Client) fetchDoc(ctx context.Context, path string) (gjson.Result, error) {
	body, err := c.get(ctx, path)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &NetworkError{Path: path, Err: errors.New("invalid JSON response")}
	}
	return gjson.ParseBytes(body), nil
}

// get collapses identical concurrent requests into one round trip. The
// shared request is detached from every caller's cancellation and bounded by
// the HTTP client timeout; a caller whose ctx ends stops waiting on its own.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(path, func() (any, error) {
		start := time.Now()
		body, err := c.do(fetchCtx, path)
		if c.observer != nil {
			c.observer(path, time.Since(start), err)
		}
		return body, err
	})
	select {
	case <-ctx.Done():
		return nil, &NetworkError{Path: path, Err: fmt.Errorf("request failed: %w", ctx.Err())}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (c *Client) do(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, &NetworkError{Path: path, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Path: path, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{Path: path, Status: resp.StatusCode, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{Path: path, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	return body, nil
}
