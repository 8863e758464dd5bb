// ABOUTME: HTTP client for the AppTemplate REST API
// ABOUTME: Cookie-based session, anti-forgery header, JSON request helpers

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"
)

const (
	antiforgeryHeader = "X-XSRF-TOKEN"
	defaultTimeout    = 30 * time.Second
)

// Client is the typed client for the AppTemplate backend. Authentication is
// cookie-based; the jar carries the session cookie between calls, and the
// anti-forgery token fetched at startup is echoed on state-changing requests.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	antiforgery string
}

// New creates a client with its own cookie jar and the default timeout.
func New(baseURL string) *Client {
	return NewWithTimeout(baseURL, defaultTimeout)
}

// NewWithTimeout creates a client with an explicit overall request timeout.
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the client's overall request timeout.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

type antiforgeryResponse struct {
	Token string `json:"token"`
}

// InitAntiforgery fetches the anti-forgery token and stores it for all
// subsequent state-changing requests.
func (c *Client) InitAntiforgery(ctx context.Context) error {
	var resp antiforgeryResponse
	if err := c.get(ctx, "/Security/Antiforgery/token", &resp); err != nil {
		return fmt.Errorf("antiforgery token: %w", err)
	}
	if resp.Token == "" {
		return fmt.Errorf("antiforgery token: empty token in response")
	}
	c.antiforgery = resp.Token
	return nil
}

// get issues a GET and decodes a 2xx JSON body into out (out may be nil).
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.send(ctx, http.MethodGet, path, nil, out)
}

// postJSON issues a POST with a JSON body. body may be nil for empty posts.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPost, path, body, out)
}

// patchJSON issues a PATCH with a JSON body.
func (c *Client) patchJSON(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPatch, path, body, out)
}

// putJSON issues a PUT with a JSON body.
func (c *Client) putJSON(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPut, path, body, out)
}

// delete issues a DELETE with no body.
func (c *Client) delete(ctx context.Context, path string) error {
	return c.send(ctx, http.MethodDelete, path, nil, nil)
}

// send builds, sends and decodes one JSON request/response exchange.
func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.applyAntiforgery(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return requestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from server: %w", err)
	}
	return nil
}

// decodeJSON decodes a 2xx body into out with the client's standard error.
func decodeJSON(r io.Reader, out any) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("invalid response from server: %w", err)
	}
	return nil
}

// applyAntiforgery attaches the stored token to state-changing requests.
func (c *Client) applyAntiforgery(req *http.Request) {
	if c.antiforgery == "" {
		return
	}
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return
	}
	req.Header.Set(antiforgeryHeader, c.antiforgery)
}
