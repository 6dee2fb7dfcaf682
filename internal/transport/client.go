// Package transport is the single HTTP path between the storefront stores and the
// backend. It attaches the bearer token, decodes {message, info} envelopes into
// the shape each call site declares, and turns a 401 into a session-expired
// signal before the failing call returns.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/logger"
	"github.com/agentfashion/storefront/pkg/metrics"
	"github.com/agentfashion/storefront/pkg/types"
)

const (
	defaultTimeout       = 15 * time.Second
	defaultStreamTimeout = 2 * time.Minute
	responseReadLimit    = 8 << 20
)

// ExpiredFunc is notified when the backend rejects the held token.
type ExpiredFunc func(ctx context.Context)

// Client talks to the storefront backend.
type Client struct {
	baseURL      *url.URL
	httpClient   *http.Client
	streamClient *http.Client
	tokens       *TokenHolder
	logg         *logger.Logger
	metrics      *metrics.TransportMetrics

	mu         sync.RWMutex
	nextSubID  int
	expiredSub map[int]ExpiredFunc
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the client used for request/response calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithStreamHTTPClient overrides the client used by Stream.
func WithStreamHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.streamClient = client
		}
	}
}

// WithTimeouts sets the request and stream timeouts of the default clients.
func WithTimeouts(request, stream time.Duration) Option {
	return func(c *Client) {
		if request > 0 {
			c.httpClient = &http.Client{Timeout: request}
		}
		if stream > 0 {
			c.streamClient = &http.Client{Timeout: stream}
		}
	}
}

// WithTokens sets the token holder. Without it the token lives in memory only.
func WithTokens(tokens *TokenHolder) Option {
	return func(c *Client) {
		if tokens != nil {
			c.tokens = tokens
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

func WithMetrics(m *metrics.TransportMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("backend url must be http(s), got %q", baseURL)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")

	c := &Client{
		baseURL:      parsed,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		streamClient: &http.Client{Timeout: defaultStreamTimeout},
		tokens:       NewTokenHolder(nil),
		logg:         logger.Nop(),
		expiredSub:   map[int]ExpiredFunc{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Tokens exposes the token holder. Only the session store writes to it.
func (c *Client) Tokens() *TokenHolder {
	return c.tokens
}

// OnSessionExpired registers fn and returns a function that unregisters it.
func (c *Client) OnSessionExpired(fn ExpiredFunc) func() {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.expiredSub[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.expiredSub, id)
		c.mu.Unlock()
	}
}

// RequestOption adjusts a single call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	query      url.Values
	header     http.Header
	skipExpiry bool
}

func buildRequestOptions(opts []RequestOption) requestOptions {
	ro := requestOptions{query: url.Values{}, header: http.Header{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&ro)
		}
	}
	return ro
}

// WithQuery appends query parameters.
func WithQuery(values url.Values) RequestOption {
	return func(o *requestOptions) {
		for key, vals := range values {
			for _, v := range vals {
				o.query.Add(key, v)
			}
		}
	}
}

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.header.Set(key, value)
	}
}

// WithoutExpiry leaves a 401 on this call as a plain HTTPError: the token is
// kept and session-expired subscribers are not notified. The caller owns the
// session teardown.
func WithoutExpiry() RequestOption {
	return func(o *requestOptions) {
		o.skipExpiry = true
	}
}

// Request performs the call and returns the raw envelope on 2xx.
func (c *Client) Request(ctx context.Context, method, path string, body any, opts ...RequestOption) (*types.Envelope, error) {
	var env types.Envelope
	if err := c.Do(ctx, method, path, body, Envelope(), &env, opts...); err != nil {
		return nil, err
	}
	return &env, nil
}

// Do performs the call and decodes the part of the body selected by shape into out.
//
// Failures are a NetworkError (CodeNetwork) when no response arrived and an
// *errors.HTTPError for any non-2xx status. A 401 clears the held token and
// notifies session-expired subscribers before Do returns.
func (c *Client) Do(ctx context.Context, method, path string, body any, shape Shape, out any, opts ...RequestOption) error {
	raw, err := c.roundTrip(ctx, c.httpClient, method, path, body, "application/json", opts)
	if err != nil {
		return err
	}
	if shape.kind == shapeDiscard {
		return nil
	}

	var env types.Envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response envelope")
		}
	}
	return shape.decode(&env, out)
}

// Fetch is Do with the decoded value returned.
func Fetch[T any](ctx context.Context, c *Client, method, path string, body any, shape Shape, opts ...RequestOption) (T, error) {
	var out T
	err := c.Do(ctx, method, path, body, shape, &out, opts...)
	return out, err
}

func (c *Client) roundTrip(ctx context.Context, httpClient *http.Client, method, path string, body any, accept string, opts []RequestOption) ([]byte, error) {
	resp, err := c.send(ctx, httpClient, method, path, body, accept, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseReadLimit))
	if err != nil {
		return nil, pkgerrors.Network(err, "read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(ctx, resp.StatusCode, raw, !buildRequestOptions(opts).skipExpiry)
	}
	return raw, nil
}

// send issues the request and returns a 2xx-or-not response with an open body.
func (c *Client) send(ctx context.Context, httpClient *http.Client, method, path string, body any, accept string, opts []RequestOption) (*http.Response, error) {
	ro := buildRequestOptions(opts)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	target := c.buildURL(path, ro.query)
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", accept)
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, vals := range ro.header {
		for _, v := range vals {
			req.Header.Add(key, v)
		}
	}

	ctx = c.logg.WithEndpoint(ctx, method, path)
	started := time.Now()
	resp, err := httpClient.Do(req)
	elapsed := time.Since(started)
	if err != nil {
		c.metrics.ObserveRequest(method, 0, elapsed)
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "backend unreachable")
		return nil, pkgerrors.Network(err, "unable to reach the server")
	}
	c.metrics.ObserveRequest(method, resp.StatusCode, elapsed)
	c.logg.Debug(c.logg.WithFields(ctx, map[string]any{
		"status":      resp.StatusCode,
		"duration_ms": elapsed.Milliseconds(),
	}), "backend call")
	return resp, nil
}

// fail builds the HTTPError for a non-2xx response and, when expiry is set,
// runs the 401 path.
func (c *Client) fail(ctx context.Context, status int, body []byte, expiry bool) error {
	httpErr := pkgerrors.NewHTTPError(status, body)
	if status == http.StatusUnauthorized && expiry {
		c.expire(ctx)
	}
	return httpErr
}

func (c *Client) expire(ctx context.Context) {
	if err := c.tokens.Clear(ctx); err != nil {
		c.logg.Error(ctx, "clear token after 401", err)
	}
	c.metrics.IncSessionExpired()

	c.mu.RLock()
	subs := make([]ExpiredFunc, 0, len(c.expiredSub))
	for _, fn := range c.expiredSub {
		subs = append(subs, fn)
	}
	c.mu.RUnlock()

	for _, fn := range subs {
		fn(ctx)
	}
}

func (c *Client) buildURL(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = u.Path + "/" + strings.TrimLeft(path, "/")
	u.RawPath = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}
