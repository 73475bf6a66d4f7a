// Package gateway talks to the EduMaster REST API. It owns the wire
// format: every response is validated, unwrapped and normalized into the
// domain types of the track, identity and progression packages before it
// leaves this package.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/omergehad405/EduMaster/internal/failure"
)

const (
	DefaultBaseURL = "http://localhost:5000/api"

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 8 << 20
)

// Config configures a Client.
type Config struct {
	BaseURL string

	// Timeout bounds a single HTTP exchange. Default: 15s.
	Timeout time.Duration

	// RatePerSecond and Burst shape outgoing requests. A zero rate
	// disables the limiter.
	RatePerSecond float64
	Burst         int

	Retry RetryConfig
}

// RetryConfig configures retries of read requests.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config pointing at a local API server.
func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		Timeout:       15 * time.Second,
		RatePerSecond: 10,
		Burst:         5,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 300 * time.Millisecond,
			MaxWait:     3 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// Client is the remote data gateway. It is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	retry   RetryConfig
	log     *zap.Logger
	sleep   func(context.Context, time.Duration) error
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l.Named("gateway")
		}
	}
}

// New creates a Client for cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("gateway: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("gateway: parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("gateway: base URL %q must be http or https", cfg.BaseURL)
	}
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = 1
	}

	c := &Client{
		base:  base,
		http:  &http.Client{Timeout: cfg.Timeout},
		retry: cfg.Retry,
		log:   zap.NewNop(),
		sleep: sleepCtx,
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.base.String() }

// call describes one API exchange.
type call struct {
	op     string
	method string
	path   string

	// token is sent as a bearer credential. Calls with auth set fail with
	// ErrAuthRequired before sending when it is empty.
	token string
	auth  bool

	body any
	form *formBody

	// schema names the shape the unwrapped payload must satisfy.
	schema string
}

// do performs the call and decodes the unwrapped payload into out. Reads
// are retried; mutations are sent exactly once.
func (c *Client) do(ctx context.Context, req call, out any) error {
	if req.auth && req.token == "" {
		return fmt.Errorf("%s: %w", req.op, failure.ErrAuthRequired)
	}
	var (
		raw []byte
		err error
	)
	if req.method == http.MethodGet {
		raw, err = c.withRetry(ctx, func() ([]byte, error) { return c.send(ctx, req) })
	} else {
		raw, err = c.send(ctx, req)
	}
	if err != nil {
		return err
	}
	return decode(req.op, req.schema, raw, out)
}

// send performs a single HTTP exchange and returns the raw success body.
func (c *Client) send(ctx context.Context, req call) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.form != nil:
		buf, ct, err := req.form.encode()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", req.op, err)
		}
		body, contentType = buf, ct
	case req.body != nil:
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", req.op, err)
		}
		body, contentType = bytes.NewReader(b), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.base.String()+req.path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", req.op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn("request failed",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err))
		return nil, &UnavailableError{Op: req.op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &UnavailableError{Op: req.op, Err: fmt.Errorf("read body: %w", err)}
	}

	c.log.Debug("request",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rerr := remoteError(req.op, resp.StatusCode, raw)
		c.log.Warn("request rejected",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", rerr.Message))
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &UnavailableError{Op: req.op, RetryAfter: retryAfter(resp.Header), Err: rerr}
		}
		return nil, rerr
	}
	return raw, nil
}

// decode validates raw against the named schema after unwrapping the
// {"data": ...} envelope and unmarshals the payload into out.
func decode(op, schema string, raw []byte, out any) error {
	payload, err := unwrap(raw)
	if err != nil {
		return &InvalidPayloadError{Op: op, Content: raw, Err: err}
	}
	if err := validatePayload(schema, payload); err != nil {
		return &InvalidPayloadError{Op: op, Content: raw, Err: err}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &InvalidPayloadError{Op: op, Content: raw, Err: err}
	}
	return nil
}

// unwrap returns the "data" member of an envelope, or the body itself for
// endpoints that answer with bare fields.
func unwrap(raw []byte) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return json.RawMessage("{}"), nil
	}
	if raw[0] != '{' {
		return json.RawMessage(raw), nil
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if data, ok := env["data"]; ok && !isNull(data) {
		return data, nil
	}
	return json.RawMessage(raw), nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := time.ParseDuration(v + "s"); err == nil {
		return secs
	}
	if at, err := http.ParseTime(v); err == nil {
		return time.Until(at)
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
