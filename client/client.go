// Package client provides the HTTP client for the Ledgerline ERP API.
//
// The client attaches bearer tokens to outgoing requests, drives the
// single-flight token-refresh protocol on 401 responses, forces a logout on
// unrecoverable auth failures, and hands every other failure to the error
// handler for normalization. Successful responses pass through wire-shaped;
// transformation happens in the services layer.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/ledgerline/erpclient/apierror"
	"github.com/ledgerline/erpclient/logger"
	"github.com/ledgerline/erpclient/tokenstore"
)

// APIPrefix is the versioned path prefix all endpoints live under.
const APIPrefix = "/api/v1"

// DefaultTimeout applies when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// Config configures a Client.
type Config struct {
	// BaseURL is the API origin, e.g. "https://erp.example.com". Required.
	BaseURL string
	// Timeout is the per-request timeout. Defaults to DefaultTimeout.
	Timeout time.Duration
	// HTTPClient overrides the underlying transport.
	HTTPClient *http.Client
	// Tokens holds the credential pair. Required.
	Tokens *tokenstore.Store
	// Errors normalizes failures. A default Handler is created when nil.
	Errors *apierror.Handler
	// Logger receives diagnostics. Silent when nil.
	Logger *logger.Logger
	// Navigate performs the client-side redirect on forced logout. It must
	// be injected so tests can observe it; nil means no navigation.
	Navigate func(route string)
	// LoginRoute is the navigation target on forced logout. Defaults to "/login".
	LoginRoute string
	// RateLimit throttles outgoing requests (requests per second). Zero
	// disables throttling.
	RateLimit float64
	// Registerer enables Prometheus metrics when non-nil.
	Registerer prometheus.Registerer
}

// Client is the Ledgerline API HTTP client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *tokenstore.Store
	errors     *apierror.Handler
	log        *logger.Logger
	navigate   func(string)
	loginRoute string
	limiter    *rate.Limiter
	flight     singleflight.Group
	metrics    *clientMetrics
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("Tokens is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	errs := cfg.Errors
	if errs == nil {
		errs = apierror.NewHandler()
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	loginRoute := cfg.LoginRoute
	if loginRoute == "" {
		loginRoute = "/login"
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		tokens:     cfg.Tokens,
		errors:     errs,
		log:        log,
		navigate:   cfg.Navigate,
		loginRoute: loginRoute,
		limiter:    limiter,
		metrics:    newClientMetrics(cfg.Registerer),
	}, nil
}

// Errors exposes the error handler so façades can tag errors with context.
func (c *Client) Errors() *apierror.Handler { return c.errors }

// Tokens exposes the token store.
func (c *Client) Tokens() *tokenstore.Store { return c.tokens }

// =============================================================================
// Verb Methods
// =============================================================================

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPatch, path, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// =============================================================================
// Request Execution
// =============================================================================

// attemptState classifies one request attempt. The refresh-then-retry dance
// is driven by inspecting this state, not by unwinding through errors.
type attemptState int

const (
	stateOK attemptState = iota
	stateNeedsRefresh
	stateForbidden
	stateFailed
)

type attemptResult struct {
	state   attemptState
	body    json.RawMessage
	httpErr *apierror.HTTPError
	err     error
}

// failure returns the error value for a non-OK attempt.
func (r attemptResult) failure() error {
	if r.err != nil {
		return r.err
	}
	return r.httpErr
}

// Do executes a request against an API path (relative to APIPrefix),
// handling the auth lifecycle: 401 triggers a single-flight refresh and one
// replay; 403 clears tokens and redirects to login without retrying.
func (c *Client) Do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.errors.Normalize(err, "")
		}
	}

	payload, err := marshalBody(body)
	if err != nil {
		return nil, c.errors.Normalize(&apierror.BuildError{Err: err}, "")
	}

	token := ""
	if c.tokens.AccessToken() != "" && !c.tokens.Expired() {
		token = c.tokens.AccessToken()
	}

	res := c.attempt(ctx, method, APIPrefix+path, payload, token)
	switch res.state {
	case stateOK:
		return res.body, nil

	case stateForbidden:
		// Permission denied is not transient: no refresh, no retry.
		c.forceLogout("forbidden")
		return nil, c.errors.Normalize(res.failure(), "")

	case stateNeedsRefresh:
		newToken, refreshErr := c.refresh(ctx)
		if refreshErr != nil {
			c.forceLogout("refresh failed")
			return nil, c.errors.Normalize(refreshErr, "")
		}
		retry := c.attempt(ctx, method, APIPrefix+path, payload, newToken)
		switch retry.state {
		case stateOK:
			return retry.body, nil
		case stateNeedsRefresh, stateForbidden:
			// Still rejected with a fresh token: unrecoverable.
			c.forceLogout("unauthorized after refresh")
			return nil, c.errors.Normalize(retry.failure(), "")
		default:
			return nil, c.errors.Normalize(retry.failure(), "")
		}

	default:
		return nil, c.errors.Normalize(res.failure(), "")
	}
}

// attempt executes a single HTTP round trip and classifies the outcome.
func (c *Client) attempt(ctx context.Context, method, fullPath string, payload []byte, token string) attemptResult {
	requestID := uuid.NewString()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+fullPath, reader)
	if err != nil {
		return attemptResult{state: stateFailed, err: &apierror.BuildError{Err: err}}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(method, 0)
		return attemptResult{state: stateFailed, err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return attemptResult{state: stateFailed, err: err}
	}
	c.metrics.observe(method, resp.StatusCode)

	httpErr := &apierror.HTTPError{Status: resp.StatusCode, Body: respBody, RequestID: requestID}
	switch {
	case resp.StatusCode < 400:
		return attemptResult{state: stateOK, body: respBody}
	case resp.StatusCode == http.StatusUnauthorized:
		return attemptResult{state: stateNeedsRefresh, httpErr: httpErr}
	case resp.StatusCode == http.StatusForbidden:
		return attemptResult{state: stateForbidden, httpErr: httpErr}
	default:
		return attemptResult{state: stateFailed, httpErr: httpErr}
	}
}

func marshalBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return payload, nil
}
