// HTTP plumbing shared by the auth and media gateways.
package services

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

	"github.com/dmchugh/medlib/internal/shared"
)

const (
	defaultBaseURL = "http://localhost:8000"
	apiPrefix      = "/api/v1"
)

// Client performs raw HTTP requests against the media library server.
//
// The bearer token is held behind a mutex so the session manager can swap it
// while library calls are in flight; individual requests read it once.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.Mutex
	token string
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SetToken installs the bearer token used for subsequent requests. An empty
// string clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the currently installed bearer token.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// BaseURL returns the configured server base URL without the API prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// apiURL joins the API prefix, a path and optional query values.
func (c *Client) apiURL(path string, query url.Values) string {
	u := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// doJSON performs a request with an optional JSON body, decoding a JSON
// response into result when non-nil. Non-2xx statuses are mapped onto the
// shared error taxonomy; notFound names the sentinel for 404 responses.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, result any, notFound error) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL(path, query), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp, notFound)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// statusError converts a non-2xx response into a sentinel-wrapped error,
// surfacing the server's detail message when it sends one.
func statusError(resp *http.Response, notFound error) error {
	detail := readDetail(resp.Body)

	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		sentinel = shared.ErrTokenExpired
	case http.StatusForbidden:
		sentinel = shared.ErrNotAuthenticated
	case http.StatusNotFound:
		sentinel = notFound
		if sentinel == nil {
			sentinel = shared.ErrAPIRequest
		}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		sentinel = shared.ErrInvalidInput
	default:
		sentinel = shared.ErrAPIRequest
	}

	if detail != "" {
		return fmt.Errorf("%w: status %d: %s", sentinel, resp.StatusCode, detail)
	}
	return fmt.Errorf("%w: status %d", sentinel, resp.StatusCode)
}

// decodeJSON decodes a response body into result.
func decodeJSON(body io.Reader, result any) error {
	if err := json.NewDecoder(body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// readDetail extracts the {"detail": "..."} message servers attach to errors.
func readDetail(body io.Reader) string {
	var errResp struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(body).Decode(&errResp); err != nil {
		return ""
	}
	return errResp.Detail
}
