// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/danielhkuo/kicker/models"
)

const (
	DefaultTimeout = 8 * time.Second
	TokenHeader    = "X-Player-Token"
	maxBodyBytes   = 4 << 20
)

// Error is a failed request: a non-2xx status or a 2xx body carrying an
// "errors" key.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api status %d", e.Status)
	}
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the player token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout sets the request timeout. It applies to the client given with
// WithHTTPClient too, whatever the option order; that client is copied, not
// modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// Client talks to the kicker server.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration

	mu    sync.RWMutex
	token string
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// SetToken replaces the player token, e.g. after a login.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Request posts params as a JSON body to route and returns the raw JSON
// result.
func (c *Client) Request(ctx context.Context, route string, params map[string]any) (json.RawMessage, error) {
	if params == nil {
		params = map[string]any{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode params for %s: %w", route, err)
	}
	return c.do(ctx, http.MethodPost, route, bytes.NewReader(body))
}

// Health checks GET /health.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

// Signup creates an account and stores the returned token.
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*models.SignupResponse, error) {
	return c.account(ctx, "/kicker/signup", req)
}

// Login exchanges credentials for a fresh token and stores it.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.SignupResponse, error) {
	return c.account(ctx, "/kicker/login", req)
}

func (c *Client) account(ctx context.Context, route string, req any) (*models.SignupResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, http.MethodPost, route, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var resp models.SignupResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", route, err)
	}
	c.SetToken(resp.PlayerToken)
	return &resp, nil
}

// AvatarURL returns the avatar address for playerID, or the caller's own
// avatar when playerID is empty. A non-zero bust is appended as a cache
// buster.
func (c *Client) AvatarURL(playerID string, bust int64) string {
	u := c.baseURL + "/app/avatar"
	if playerID != "" {
		u += "/" + url.PathEscape(playerID)
	}
	if bust != 0 {
		u += "?unique=" + strconv.FormatInt(bust, 10)
	}
	return u
}

func (c *Client) do(ctx context.Context, method, route string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+route, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set(TokenHeader, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", route, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if gjson.ValidBytes(raw) {
		if errs := gjson.GetBytes(raw, "errors"); errs.Exists() {
			return nil, &Error{Status: resp.StatusCode, Message: errs.String()}
		}
	}
	return raw, nil
}

// errorMessage picks the most specific message from an error body.
func errorMessage(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return strings.TrimSpace(string(raw))
	}
	for _, path := range []string{"message", "error"} {
		if v := gjson.GetBytes(raw, path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
