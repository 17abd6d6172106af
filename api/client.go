// Package api is the client of the church content service: the content
// dictionary, uploads, authentication and the REST resources behind the
// public pages and the admin.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultTimeout bounds a single request when Config.HTTPClient is nil.
const DefaultTimeout = 30 * time.Second

const maxBodySize = 8 << 20

// HTTPClient matches the subset of http.Client used by Client.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Config describes how to reach the service.
type Config struct {
	// BaseURL is the API root, for example https://example.org/api.
	BaseURL string
	// Token is sent as a bearer credential on every call except login.
	Token      string
	HTTPClient HTTPClient
	Timeout    time.Duration
	Logger     *slog.Logger
}

// Client talks JSON to the service. A Client is safe for concurrent use;
// WithToken derives per-session clients sharing one transport.
type Client struct {
	base   string
	token  string
	http   HTTPClient
	logger *slog.Logger
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("api: base URL is required")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, errors.Errorf("api: base URL %q must be absolute", base)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{MaxIdleConnsPerHost: 10},
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{base: base, token: cfg.Token, http: hc, logger: logger}, nil
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string { return c.base }

// Token returns the bearer credential, if any.
func (c *Client) Token() string { return c.token }

// WithToken returns a copy of c authenticating as token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Envelope is the common response shape of the service.
type Envelope struct {
	Success    *bool           `json:"success,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
	Message    string          `json:"message,omitempty"`
	URL        string          `json:"url,omitempty"`
	Token      string          `json:"token,omitempty"`
	User       *User           `json:"user,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

func (e *Envelope) failed() bool { return e.Success != nil && !*e.Success }

// call is one request to the service.
type call struct {
	op     string
	method string
	path   string
	body   any
	// preferMessage picks message over error when both are present.
	preferMessage bool
	// rejected is the fallback text for success:false without a reason.
	rejected string
}

func (c *Client) endpoint(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base + path
}

func (c *Client) newRequest(ctx context.Context, k call) (*http.Request, error) {
	var body io.Reader
	if k.body != nil {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(k.body); err != nil {
			return nil, errors.Wrapf(err, "api: %s: encode payload", k.op)
		}
		body = &buf
	}
	req, err := http.NewRequestWithContext(ctx, k.method, c.endpoint(k.path), body)
	if err != nil {
		return nil, errors.Wrapf(err, "api: %s: build request", k.op)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	if c.token != "" && !strings.Contains(k.path, "/auth/login") {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do sends k and maps every failure onto *Error.
func (c *Client) do(ctx context.Context, k call) (*Envelope, error) {
	req, err := c.newRequest(ctx, k)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &Error{Op: k.op, Kind: KindTransport, Message: ctxErr.Error(), Err: ctxErr}
		}
		e := &Error{
			Op:      k.op,
			Kind:    KindTransport,
			Message: fmt.Sprintf("Cannot connect to API at %s. Please verify the backend is running.", c.base),
			Err:     err,
		}
		c.logger.Warn("api request failed", "op", k.op, "url", req.URL.String(), "err", err)
		return nil, e
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{Op: k.op, Kind: KindTransport, StatusCode: resp.StatusCode,
			Message: fmt.Sprintf("Cannot connect to API at %s. Please verify the backend is running.", c.base), Err: err}
	}
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	if !isJSON(resp.Header.Get("Content-Type")) {
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = "Invalid response from server"
		}
		kind := KindDecode
		if !ok {
			kind = KindStatus
		}
		return nil, c.fail(req, &Error{Op: k.op, Kind: kind, StatusCode: resp.StatusCode, Message: msg})
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, c.fail(req, &Error{Op: k.op, Kind: KindDecode, StatusCode: resp.StatusCode,
			Message: "Invalid response from server", Err: err})
	}
	if !ok {
		msg := firstNonEmpty(env.Error, env.Message)
		if k.preferMessage {
			msg = firstNonEmpty(env.Message, env.Error)
		}
		if msg == "" {
			msg = fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
		}
		return nil, c.fail(req, &Error{Op: k.op, Kind: KindStatus, StatusCode: resp.StatusCode, Message: msg})
	}
	if env.failed() {
		msg := firstNonEmpty(env.Error, env.Message)
		if k.preferMessage {
			msg = firstNonEmpty(env.Message, env.Error)
		}
		if msg == "" {
			msg = firstNonEmpty(k.rejected, "Request failed")
		}
		return nil, c.fail(req, &Error{Op: k.op, Kind: KindRejected, StatusCode: resp.StatusCode, Message: msg})
	}
	return &env, nil
}

func (c *Client) fail(req *http.Request, e *Error) error {
	c.logger.Warn("api request failed",
		"op", e.Op, "url", req.URL.String(), "kind", string(e.Kind), "status", e.StatusCode, "err", e.Message)
	return e
}

// Do sends a raw request and returns the envelope. It is the escape hatch
// for endpoints without a typed wrapper.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Envelope, error) {
	return c.do(ctx, call{op: method + " " + path, method: method, path: path, body: body})
}

// decodeData unmarshals env.Data into T. Missing data decodes to the zero value.
func decodeData[T any](op string, env *Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, &Error{Op: op, Kind: KindDecode, Message: "Invalid response from server", Err: err}
	}
	return out, nil
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
