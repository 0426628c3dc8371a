package api

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

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Client is the RigOps REST client. All requests carry the bearer token;
// a 401 response clears credentials through the registered handler and
// fails with ErrUnauthorized.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	token          string
	logger         *zap.Logger
	onUnauthorized func()
	getRetries     uint64

	Messaging     *MessagingService
	Notifications *NotificationService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUnauthorizedHandler registers the callback invoked when the server
// answers 401. The handler runs at most once per response.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithGetRetries sets how many times idempotent GETs are retried on
// transient failure. Mutations are never auto-retried.
func WithGetRetries(n uint64) Option {
	return func(c *Client) { c.getRetries = n }
}

// New creates a client for the given base URL and bearer token.
func New(baseURL, token string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		token:      token,
		logger:     logger,
		getRetries: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Messaging = &MessagingService{c: c}
	c.Notifications = &NotificationService{c: c}
	return c
}

// SetToken replaces the bearer token, e.g. after a fresh login.
func (c *Client) SetToken(token string) {
	c.token = token
}

// get performs an idempotent GET with capped exponential retry on transient
// failures, decoding the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any, headers map[string]string) error {
	op := func() error {
		err := c.do(ctx, http.MethodGet, path, nil, out, headers)
		if err == nil {
			return nil
		}
		if retriable(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 5 * time.Second
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, c.getRetries), ctx))
}

// retriable reports whether err is worth a retry: transport failures and
// 5xx responses only.
func retriable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	// Transport failures come wrapped around ErrNetwork.
	return errors.Is(err, ErrNetwork)
}

// do builds, sends and decodes a single request.
func (c *Client) do(ctx context.Context, method, path string, body, out any, headers map[string]string) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Warn("unauthorized, clearing credentials", zap.String("path", path))
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}

	if resp.StatusCode >= 400 {
		msg := decodeErrorMessage(resp.Body)
		c.logger.Warn("server rejected request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg))
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeErrorMessage extracts the server's error message from a failure
// payload of the shape {"message": "..."} (or {"error": "..."}).
func decodeErrorMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
		ErrText string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.ErrText
}
