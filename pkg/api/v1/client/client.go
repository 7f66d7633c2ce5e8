// Package client provides the API client for interacting with the video API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/saymi-el/looply/internal/types"
	"github.com/saymi-el/looply/pkg/httputil"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 30 * time.Second

// DefaultBaseURL is the address the CLI targets when none is configured.
const DefaultBaseURL = "http://localhost:8080"

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API
	BaseURL string

	// AuthToken is the bearer token sent on authenticated endpoints
	AuthToken string

	// Timeout is the request timeout
	Timeout time.Duration
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// APIClient talks to the video API server.
type APIClient struct {
	baseURL    string
	authToken  string
	httpClient *httputil.RetryClient
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (*APIClient, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &APIClient{
		baseURL:   opts.BaseURL,
		authToken: opts.AuthToken,
		httpClient: httputil.NewRetryClient(
			&http.Client{Timeout: opts.Timeout},
			httputil.DefaultRetryConfig(),
		),
	}, nil
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Slug  string          `json:"slug"`
	Error string          `json:"error"`
	Data  json.RawMessage `json:"data"`
}

// HealthCheck verifies the server is reachable.
func (c *APIClient) HealthCheck(ctx context.Context) error {
	var out map[string]string
	return c.doRaw(ctx, http.MethodGet, "/health", nil, &out)
}

// SubmitVideo submits a generation request and returns the job handle.
func (c *APIClient) SubmitVideo(ctx context.Context, req types.VideoRequest) (*types.SubmitVideoResponse, error) {
	var out types.SubmitVideoResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/videos/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetVideo fetches the durable state of one job.
func (c *APIClient) GetVideo(ctx context.Context, id string) (*types.JobStatusResponse, error) {
	var out types.JobStatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/videos/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListVideos fetches one page of the caller's jobs.
func (c *APIClient) ListVideos(ctx context.Context, page, pageSize int) (*types.ListJobsResponse, error) {
	endpoint := fmt.Sprintf("/api/v1/videos/?page=%d&page_size=%d", page, pageSize)
	var out types.ListJobsResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do performs a request against an enveloped endpoint and decodes its data.
func (c *APIClient) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var env envelope
	if err := c.doRaw(ctx, method, endpoint, body, &env); err != nil {
		return err
	}
	if env.Error != "" {
		return fmt.Errorf("api error (%s): %s", env.Slug, env.Error)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func (c *APIClient) doRaw(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var env envelope
		if jsonErr := json.Unmarshal(data, &env); jsonErr == nil && env.Error != "" {
			return fmt.Errorf("api error (%s): %s", env.Slug, env.Error)
		}
		return fmt.Errorf("api error: %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
