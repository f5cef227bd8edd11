package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oliveagle/jsonpath"

	"github.com/angeloszaimis/uptime-client/internal/circuitbreaker"
	"github.com/angeloszaimis/uptime-client/internal/metrics"
)

const maxBodyBytes = 1024 * 1024

// TokenSource yields the current bearer token, empty when there is none.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenSource
	errorField string
	breakers   *circuitbreaker.Registry
	collector  *metrics.Collector
	logger     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default pooled client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithErrorField sets the JSONPath of the backend's error message.
func WithErrorField(path string) Option {
	return func(c *Client) { c.errorField = path }
}

// WithBreakers installs a per-route circuit breaker registry.
func WithBreakers(r *circuitbreaker.Registry) Option {
	return func(c *Client) { c.breakers = r }
}

// WithCollector reports every request to the metrics pipeline.
func WithCollector(collector *metrics.Collector) Option {
	return func(c *Client) { c.collector = collector }
}

func New(baseURL string, tokens TokenSource, logger *slog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must use http or https, got %q", baseURL)
	}
	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}

	c := &Client{
		baseURL:    u,
		httpClient: NewHTTPClient(10 * time.Second),
		tokens:     tokens,
		errorField: "$.error",
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewHTTPClient returns a pooled client with the given overall timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// Do sends body (JSON-encoded when non-nil) and decodes a 2xx response into
// out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	route := Route(path)
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return c.finish(method, route, start, canceledOrFailed(ctx, method, path, err), nil)
	}

	var breaker *circuitbreaker.CircuitBreaker
	if c.breakers != nil {
		breaker = c.breakers.For(method + " " + route)
		if !breaker.Allow() {
			err := &HTTPError{Message: "backend unavailable", Err: circuitbreaker.ErrOpen}
			c.emit(method, route, metrics.OutcomeRejected, time.Since(start))
			return err
		}
	}

	err := c.do(ctx, method, path, body, out)
	return c.finish(method, route, start, err, breaker)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return canceledOrFailed(ctx, method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return canceledOrFailed(ctx, method, path, err)
	}

	c.logger.Debug("Backend responded",
		slog.String("request_id", requestID),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", res.StatusCode))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &HTTPError{
			StatusCode: res.StatusCode,
			Message:    c.serverMessage(data, res.StatusCode),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &HTTPError{
			StatusCode: res.StatusCode,
			Message:    "invalid response from backend",
			Err:        err,
		}
	}
	return nil
}

func (c *Client) finish(method, route string, start time.Time, err error, breaker *circuitbreaker.CircuitBreaker) error {
	outcome := metrics.OutcomeOK

	var httpErr *HTTPError
	switch {
	case err == nil:
		if breaker != nil {
			breaker.RecordSuccess()
		}
	case IsCanceled(err):
		outcome = metrics.OutcomeCanceled
		if breaker != nil {
			breaker.Release()
		}
	case errors.As(err, &httpErr) && httpErr.StatusCode >= 400 && httpErr.StatusCode < 500:
		outcome = metrics.OutcomeError
		if breaker != nil {
			breaker.RecordSuccess()
		}
	default:
		outcome = metrics.OutcomeError
		if breaker != nil {
			breaker.RecordFailure()
		}
	}

	c.emit(method, route, outcome, time.Since(start))
	return err
}

func (c *Client) emit(method, route, outcome string, d time.Duration) {
	c.collector.Emit(metrics.MetricEvent{
		Type:     metrics.EventRequestCompleted,
		Method:   method,
		Route:    route,
		Outcome:  outcome,
		Duration: d,
	})
}

// serverMessage extracts the configured error field from a JSON body.
func (c *Client) serverMessage(data []byte, status int) string {
	if c.errorField == "" || len(data) == 0 {
		return genericMessage(status)
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return genericMessage(status)
	}

	found, err := jsonpath.JsonPathLookup(decoded, c.errorField)
	if err != nil {
		return genericMessage(status)
	}
	if msg, ok := found.(string); ok && strings.TrimSpace(msg) != "" {
		return msg
	}
	return genericMessage(status)
}

func canceledOrFailed(ctx context.Context, method, path string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%s %s: %w", method, path, ErrCanceled)
	}
	return &HTTPError{Message: "network error: " + err.Error(), Err: err}
}

// Route replaces numeric path segments with {id} so that metrics and
// breakers group requests by endpoint rather than by resource.
func Route(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if _, err := strconv.Atoi(s); err == nil && s != "" {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
