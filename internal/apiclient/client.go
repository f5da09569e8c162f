// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package apiclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Configuration constants for the gateway client.
const (
	// DefaultBaseURL is the gateway's development address.
	DefaultBaseURL = "http://localhost:8000"

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion attacks.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// RequestIDHeader carries a per-request correlation id.
	RequestIDHeader = "X-Request-ID"
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// No client-level timeout: requests are bounded by their context.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// CredentialSource supplies the bearer credential. *tokenstore.Store
// implements it.
type CredentialSource interface {
	Get(ctx context.Context) (string, bool)
}

// Options configures New.
type Options struct {
	BaseURL   string
	UserAgent string
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
	// RateLimit caps requests per second. Zero disables throttling.
	RateLimit float64
	Logger    *zap.Logger
	// HTTPClient overrides the shared pooled client.
	HTTPClient *http.Client
}

// Client talks JSON and multipart to the gateway.
type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	creds     CredentialSource
	limiter   *rate.Limiter
	http      *http.Client
	log       *zap.Logger
}

// New creates a gateway client. creds may be nil, in which case requests
// carry an empty bearer.
func New(creds CredentialSource, opts Options) *Client {
	c := &Client{
		baseURL:   strings.TrimSuffix(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		creds:     creds,
		http:      opts.HTTPClient,
		log:       opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		c.http = sharedHTTPClient
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// BaseURL returns the gateway address requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST OPTIONS
// =============================================================================

type requestConfig struct {
	noAuth bool
}

// RequestOption adjusts a single request.
type RequestOption func(*requestConfig)

// WithoutAuth omits the Authorization header. Used for login and register.
func WithoutAuth() RequestOption {
	return func(rc *requestConfig) { rc.noAuth = true }
}

// =============================================================================
// VERBS
// =============================================================================

// Get issues a GET and decodes the JSON response into out (may be nil).
func (c *Client) Get(ctx context.Context, path string, out interface{}, opts ...RequestOption) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out, opts)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}, opts ...RequestOption) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out, opts)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}, opts ...RequestOption) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out, opts)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out interface{}, opts ...RequestOption) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out, opts)
}

// PostForm issues a multipart POST. The Content-Type carries the boundary.
func (c *Client) PostForm(ctx context.Context, path string, form *Form, out interface{}, opts ...RequestOption) error {
	body, contentType, err := form.encode()
	if err != nil {
		return &Error{Message: "Could not prepare upload", Err: err}
	}
	return c.do(ctx, http.MethodPost, path, body, contentType, out, opts)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}, opts []RequestOption) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: "Could not encode request", Err: err}
		}
		reader = bytes.NewReader(data)
	}
	// GET and DELETE also declare a JSON content type.
	return c.do(ctx, method, path, reader, "application/json", out, opts)
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}, opts []RequestOption) error {
	var rc requestConfig
	for _, opt := range opts {
		opt(&rc)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return transportError(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Message: "Invalid request", Err: err}
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if !rc.noAuth {
		credential := ""
		if c.creds != nil {
			credential, _ = c.creds.Get(ctx)
		}
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	start := time.Now()
	resp, err := c.http.Do(req)

	// SECURITY: Clear Authorization header immediately after request to prevent logging
	req.Header.Del("Authorization")

	if err != nil {
		c.log.Debug("gateway request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return transportError(err)
	}
	defer resp.Body.Close()

	// Don't log headers (may contain auth) or bodies (may contain PHI).
	c.log.Debug("gateway request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("duration", time.Since(start)))

	data, err := readResponse(resp)
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: "Response too large or unreadable", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := errorFromBody(resp.StatusCode, data)
		c.log.Info("gateway rejected request",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("error", apiErr.Detailed()),
			zap.String("request_id", requestID))
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Status: resp.StatusCode, Message: "Invalid response from server", Err: err}
	}
	return nil
}

// readResponse reads the response body with size limits to prevent memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}
