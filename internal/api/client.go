// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MaxResponseSize caps how much of a response body is read.
const MaxResponseSize = 4 * 1024 * 1024

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://localhost:8000"

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the API client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://localhost:8000)
	BaseURL string

	// Timeout bounds each HTTP request (default: 30s)
	Timeout time.Duration

	// MaxRetries for GET requests that fail without a response or with a
	// 5xx status (default: 2). Writes are never retried.
	MaxRetries int

	// RetryDelay is the base backoff between retries (default: 500ms)
	RetryDelay time.Duration

	// RequestsPerSecond and Burst configure the client-side rate limiter
	// (default: 5 rps, burst 10).
	RequestsPerSecond float64
	Burst             int

	// UserAgent is sent with every request.
	UserAgent string

	// Logger receives one entry per request. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           DefaultBaseURL,
		Timeout:           30 * time.Second,
		MaxRetries:        2,
		RetryDelay:        500 * time.Millisecond,
		RequestsPerSecond: 5,
		Burst:             10,
		UserAgent:         "advith-tui",
	}
}

// TokenSource supplies the bearer token for outgoing requests. An empty
// token sends the request unauthenticated.
type TokenSource interface {
	AccessToken() string
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the support backend. It is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger

	mu     sync.RWMutex
	tokens TokenSource
}

// NewClient creates a client with the default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client, filling zero values with defaults.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	defaults := DefaultConfig()

	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = defaults.RetryDelay
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if config.Burst == 0 {
		config.Burst = defaults.Burst
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		log:        config.Logger.Named("api"),
	}
}

// SetTokenSource installs the source of bearer tokens.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

func (c *Client) token() string {
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()
	if ts == nil {
		return ""
	}
	return ts.AccessToken()
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// request describes one API call.
type request struct {
	method string
	path   string
	body   any
	out    any

	// op names the operation in fallback error messages ("Failed to ...").
	op string
}

// repeatable reports whether a failed attempt may be sent again.
func (r request) repeatable() bool {
	return r.method == http.MethodGet
}

// do performs the request, retrying reads on transient failures.
func (c *Client) do(ctx context.Context, r request) error {
	var payload []byte
	if r.body != nil {
		var err error
		payload, err = json.Marshal(r.body)
		if err != nil {
			return &ClientError{Type: ErrTypeUnknown, Message: "failed to encode request", Cause: err}
		}
	}

	attempts := 1
	if r.repeatable() {
		attempts += c.config.MaxRetries
	}

	var lastErr *ClientError
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return networkError(ctx.Err())
			case <-time.After(c.backoff(attempt)):
			}
		}

		err := c.once(ctx, r, payload)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return lastErr
}

func (c *Client) once(ctx context.Context, r request, payload []byte) *ClientError {
	if err := c.limiter.Wait(ctx); err != nil {
		return networkError(err)
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.config.BaseURL+r.path, body)
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}

	requestID := uuid.NewString()
	c.setHeaders(req, requestID, payload != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.log.Warn("request failed",
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.String("request_id", requestID),
			zap.Duration("duration", duration),
			zap.Error(err))
		return networkError(err)
	}
	defer resp.Body.Close()

	c.log.Debug("request",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("duration", duration))

	data, err := readResponse(resp)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: MsgInvalidResponse, StatusCode: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return serverError(resp.StatusCode, data, r.op)
	}

	if r.out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, r.out); err != nil {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: MsgInvalidResponse, StatusCode: resp.StatusCode, Cause: err}
		}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, requestID string, hasBody bool) {
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-ID", requestID)
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

// backoff returns the delay before the given retry attempt.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.config.RetryDelay * time.Duration(1<<uint(attempt-1))
	if delay > 10*time.Second {
		delay = 10 * time.Second
	}
	return delay
}

func retryable(err *ClientError) bool {
	switch err.Type {
	case ErrTypeNetwork:
		return true
	case ErrTypeServer:
		return err.StatusCode >= 500
	}
	return false
}

// readResponse reads the body up to MaxResponseSize.
func readResponse(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return data, nil
}
