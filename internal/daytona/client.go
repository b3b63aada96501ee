// Package daytona is a small client for the Daytona sandbox REST API covering
// sandbox lifecycle, snapshots and the toolbox (process, git, files).
package daytona

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://app.daytona.io/api"
	// Remote builds run inside a single execute call, so the per-request
	// timeout has to cover a full Maven build.
	defaultTimeout      = 60 * time.Minute
	defaultPollInterval = 2 * time.Second
	defaultReadyTimeout = 5 * time.Minute
	defaultUserAgent    = "sandbox-runner/1.0.0"
)

// Client is the Daytona API client.
type Client struct {
	baseURL      *url.URL
	httpClient   *http.Client
	apiKey       string
	target       string
	userAgent    string
	pollInterval time.Duration
	readyTimeout time.Duration

	Sandboxes *SandboxService
	Snapshots *SnapshotService
	Toolbox   *ToolboxService
}

// NewClient creates a client authenticated with apiKey.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	parsedURL, err := url.Parse(baseURL)
	if err != nil || baseURL == "" {
		parsedURL, _ = url.Parse(DefaultBaseURL)
	}
	parsedURL.Path = strings.TrimSuffix(parsedURL.Path, "/")

	c := &Client{
		baseURL:      parsedURL,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		apiKey:       apiKey,
		userAgent:    defaultUserAgent,
		pollInterval: defaultPollInterval,
		readyTimeout: defaultReadyTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Sandboxes = &SandboxService{client: c}
	c.Snapshots = &SnapshotService{client: c}
	c.Toolbox = &ToolboxService{client: c}

	return c
}

func (c *Client) doRequest(ctx context.Context, method, requestPath string, body interface{}, queryParams map[string]string) (*http.Response, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + requestPath
	u.RawQuery = ""

	if len(queryParams) > 0 {
		q := u.Query()
		for k, v := range queryParams {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	slog.Debug("daytona request",
		"component", "daytona",
		"method", method,
		"path", u.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return resp, nil
}

// doJSON performs a request and decodes the JSON response into result.
func (c *Client) doJSON(ctx context.Context, method, requestPath string, body, result interface{}, queryParams map[string]string) error {
	resp, err := c.doRequest(ctx, method, requestPath, body, queryParams)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return handleErrorResponse(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func (c *Client) doEmptyResponse(ctx context.Context, method, requestPath string, body interface{}, queryParams map[string]string) error {
	resp, err := c.doRequest(ctx, method, requestPath, body, queryParams)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return handleErrorResponse(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// doBytes performs a request and returns the raw response body.
func (c *Client) doBytes(ctx context.Context, method, requestPath string, queryParams map[string]string) ([]byte, error) {
	resp, err := c.doRequest(ctx, method, requestPath, nil, queryParams)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, handleErrorResponse(resp)
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) buildPath(segments ...string) string {
	return path.Join(segments...)
}
