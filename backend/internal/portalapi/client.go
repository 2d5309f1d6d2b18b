// Package portalapi is the HTTP client for the remote academic portal API.
package portalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"portal_dashboard/backend/internal/session"
	"portal_dashboard/backend/internal/shared"
)

const maxBodyBytes = 8 << 20

// Client calls the portal API on behalf of a session.
type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the request logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient returns a client for cfg.BaseURL. cfg.Timeout bounds each call.
func NewClient(cfg shared.PortalAPIConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the portal's response wrapper. Some endpoints return the
// payload bare, which decodes with Data unset.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// get fetches path and decodes the payload into out.
func (c *Client) get(ctx context.Context, sess session.Context, path string, out any) error {
	const method = http.MethodGet
	fail := func(code int, msg string, err error) error {
		return &APIError{Method: method, Path: path, StatusCode: code, Message: msg, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fail(0, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if token := sess.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fail(resp.StatusCode, "", fmt.Errorf("read body: %w", err))
	}

	var env envelope
	isEnvelope := json.Unmarshal(body, &env) == nil
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		if isEnvelope {
			msg = firstNonEmpty(env.Message, env.Error)
		}
		c.log.WithFields(logrus.Fields{"path": path, "status": resp.StatusCode}).Debug("Portal API call failed")
		return fail(resp.StatusCode, msg, nil)
	}

	payload := body
	if isEnvelope {
		if env.Success != nil && !*env.Success {
			return fail(resp.StatusCode, firstNonEmpty(env.Message, env.Error), nil)
		}
		if len(bytes.TrimSpace(env.Data)) > 0 {
			payload = env.Data
		}
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fail(resp.StatusCode, "", fmt.Errorf("decode payload: %w", err))
	}
	return nil
}

// getList fetches a collection. A payload that is not an array is an error
// so the caller falls back to the snapshot.
func getList[T any](ctx context.Context, c *Client, sess session.Context, path string) ([]T, error) {
	var list shared.List[T]
	if err := c.get(ctx, sess, path, &list); err != nil {
		return nil, err
	}
	if !list.Present {
		return nil, &APIError{Method: http.MethodGet, Path: path, StatusCode: http.StatusOK, Err: fmt.Errorf("payload is not a list")}
	}
	return list.Items, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func escape(segment string) string {
	return url.PathEscape(segment)
}
