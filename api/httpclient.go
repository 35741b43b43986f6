package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cloudshare/cloudshare-go/cache"
	"github.com/cloudshare/cloudshare-go/config"
	"github.com/cloudshare/cloudshare-go/logging"
	"github.com/cloudshare/cloudshare-go/session"
)

// HTTPClient is the Client implementation over net/http.
type HTTPClient struct {
	baseURL      string
	shareBaseURL string
	hc           *http.Client
	session      *session.Store
	cache        *cache.Store
	log          logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient substitutes the underlying transport. The default is
// http.DefaultClient, with whatever timeout behavior that implies; this
// layer imposes none of its own.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.hc = hc }
}

// WithLogger attaches a structured logger. The default discards.
func WithLogger(log logging.Logger) Option {
	return func(c *HTTPClient) { c.log = log }
}

// NewHTTPClient builds a client against cfg.APIBaseURL. The session store
// supplies the bearer token; the cache store holds query results across the
// whole client.
func NewHTTPClient(cfg *config.Config, sess *session.Store, cch *cache.Store, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:      strings.TrimRight(cfg.APIBaseURL, "/"),
		shareBaseURL: strings.TrimRight(cfg.ShareBaseURL, "/"),
		hc:           http.DefaultClient,
		session:      sess,
		cache:        cch,
		log:          logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// withAuth marks a request as requiring the bearer token. The public
// share-link lookup is the only operation that does not use it.
const (
	withAuth = true
	noAuth   = false
)

// doJSON sends a JSON (or empty) request body and decodes a JSON response
// into out. out may be nil when the response body is irrelevant.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any, auth bool) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out, auth)
}

// do executes one HTTP request. On 401 it clears the session store and the
// cache before surfacing the error; no retry is attempted, the caller
// observes the failure.
func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any, auth bool) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth {
		if token, ok := c.session.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx, method, path)
		return responseError(resp)
	}
	if resp.StatusCode >= 400 {
		return responseError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// handleUnauthorized moves the client to the anonymous state: session
// cleared, cache dropped. No cached data may survive into the anonymous
// session.
func (c *HTTPClient) handleUnauthorized(ctx context.Context, method, path string) {
	c.log.Warn(ctx, "unauthorized response, clearing session", "method", method, "path", path)
	if err := c.session.Clear(ctx); err != nil {
		c.log.Error(ctx, "failed to clear session", "error", err)
	}
	c.cache.Clear()
}

// Close releases idle transport connections.
func (c *HTTPClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}
