// Package render talks to the remote GPU render delegate. Hand-off is
// synchronous; completion arrives later through the webhook endpoint.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/saymi-el/looply/internal/types"
	"github.com/saymi-el/looply/pkg/httputil"
)

// DefaultTimeout caps the hand-off call. The delegate only has to accept the
// job within this window, not finish it.
const DefaultTimeout = 30 * time.Second

// Client submits render jobs to the delegate API.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *httputil.RetryClient
}

// NewClient creates a delegate client. A zero timeout falls back to
// DefaultTimeout.
func NewClient(apiURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: httputil.NewRetryClient(
			&http.Client{Timeout: timeout},
			httputil.DefaultRetryConfig(),
		),
	}
}

// Submit hands the job off to the delegate and returns its correlation id.
func (c *Client) Submit(ctx context.Context, req types.RenderRequest) (*types.RenderResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal render request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("submit render job: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("render delegate: %s: %s", resp.Status, string(body))
	}

	var decoded types.RenderResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if !decoded.Success {
		return nil, fmt.Errorf("render delegate refused job: %s", decoded.Message)
	}
	if decoded.RenderJobID == "" {
		return nil, fmt.Errorf("render delegate returned no job id")
	}
	return &decoded, nil
}
