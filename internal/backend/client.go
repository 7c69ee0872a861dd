// Package backend talks to the plant monitoring REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"plant_monitor/internal/logger"
	"plant_monitor/internal/telemetry"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 10 << 20 // 10 MB
	contentTypeKey = "Content-Type"
	jsonMediaType  = "application/json"
)

// Config configures a Client. BaseURL is the only required value.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client // optional; Timeout is ignored when set
	// Location applies to timestamps that carry no zone. Defaults to UTC.
	Location *time.Location
}

// Client is a thin JSON client over the backend endpoints.
type Client struct {
	base *url.URL
	http *http.Client
	loc  *time.Location
	log  *logger.Logger
}

// NewClient validates cfg and builds a client. log may be nil.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("backend base URL is empty")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend base URL %q: scheme must be http or https", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Client{base: base, http: hc, loc: loc, log: log}, nil
}

// endpoint joins escaped path segments onto the base URL.
func (c *Client) endpoint(segments ...string) *url.URL {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.base.JoinPath(escaped...)
}

// response is a fully read backend reply.
type response struct {
	status int
	body   []byte
}

// do sends req and reads the body. Transport errors and non-2xx statuses are
// reported as network/server FetchErrors; the body is still returned so callers
// can extract an error message.
func (c *Client) do(req *http.Request) (response, error) {
	op := req.Method + " " + req.URL.Path
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.logw("backend_request_failed", "op", op, "err", err, "elapsed", time.Since(start))
		return response{}, &telemetry.FetchError{Kind: telemetry.KindNetworkOrServer, Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.logw("backend_read_failed", "op", op, "status", resp.StatusCode, "err", err)
		return response{}, &telemetry.FetchError{Kind: telemetry.KindNetworkOrServer, Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if c.log != nil {
		c.log.Debugw("backend_request", "op", op, "status", resp.StatusCode, "elapsed", time.Since(start))
	}

	out := response{status: resp.StatusCode, body: body}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fe := &telemetry.FetchError{Kind: telemetry.KindNetworkOrServer, Op: op, StatusCode: resp.StatusCode}
		if msg := errorMessage(body); msg != "" {
			fe.Err = errors.New(msg)
		}
		return out, fe
	}
	return out, nil
}

// doJSON sends an optional JSON payload.
func (c *Client) doJSON(ctx context.Context, method string, u *url.URL, payload any) (response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return response{}, fmt.Errorf("encode %s %s payload: %w", method, u.Path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return response{}, fmt.Errorf("build %s %s: %w", method, u.Path, err)
	}
	req.Header.Set("Accept", jsonMediaType)
	if payload != nil {
		req.Header.Set(contentTypeKey, jsonMediaType)
	}
	return c.do(req)
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from a body.
func errorMessage(body []byte) string {
	var m struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	if s, ok := m.Error.(string); ok && s != "" {
		return s
	}
	return m.Message
}

func (c *Client) logw(msg string, kv ...interface{}) {
	if c.log != nil {
		c.log.Warnw(msg, kv...)
	}
}
