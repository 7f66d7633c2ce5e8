package visuals

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

const wanTimeout = 5 * time.Minute

type wanRequest struct {
	Prompt          string `json:"prompt"`
	NegativePrompt  string `json:"negative_prompt,omitempty"`
	DurationSeconds int    `json:"duration_seconds"`
}

type wanResponse struct {
	VideoURL string `json:"videoUrl"`
	Error    string `json:"error,omitempty"`
}

// WANClient generates clips through a WAN text-to-video HTTP endpoint.
type WANClient struct {
	endpoint   string
	apiKey     string
	httpClient *httputil.RetryClient
}

func NewWANClient(endpoint, apiKey string) *WANClient {
	return &WANClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: httputil.NewRetryClient(
			&http.Client{Timeout: wanTimeout},
			httputil.DefaultRetryConfig(),
		),
	}
}

// Generate requests one clip per prompt, sized to the prompt's time range.
func (c *WANClient) Generate(ctx context.Context, prompts []types.VideoPrompt, duration int) ([]Asset, error) {
	if len(prompts) == 0 {
		return nil, fmt.Errorf("no prompts to generate")
	}

	assets := make([]Asset, 0, len(prompts))
	for i, prompt := range prompts {
		clipDuration := prompt.Timing.End - prompt.Timing.Start
		if clipDuration <= 0 {
			clipDuration = duration
		}

		url, err := c.generateClip(ctx, prompt, clipDuration)
		if err != nil {
			return nil, fmt.Errorf("generate clip %d: %w", i, err)
		}
		assets = append(assets, Asset{Prompt: prompt, URL: url})
	}
	return assets, nil
}

func (c *WANClient) generateClip(ctx context.Context, prompt types.VideoPrompt, duration int) (string, error) {
	data, err := json.Marshal(wanRequest{
		Prompt:          prompt.Positive,
		NegativePrompt:  prompt.Negative,
		DurationSeconds: duration,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wan endpoint: %s: %s", resp.Status, string(body))
	}

	var decoded wanResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("wan endpoint: %s", decoded.Error)
	}
	if decoded.VideoURL == "" {
		return "", fmt.Errorf("wan endpoint returned no video url")
	}
	return decoded.VideoURL, nil
}
