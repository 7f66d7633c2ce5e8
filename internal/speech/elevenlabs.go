package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/saymi-el/looply/pkg/httputil"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"
	defaultTimeout    = 60 * time.Second
	defaultModelID    = "eleven_multilingual_v2"
)

type elevenlabsRequest struct {
	Text          string                `json:"text"`
	ModelID       string                `json:"model_id"`
	VoiceSettings elevenlabsVoiceConfig `json:"voice_settings"`
}

type elevenlabsVoiceConfig struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type elevenlabsErrorResponse struct {
	Detail struct {
		Message string `json:"message"`
	} `json:"detail"`
}

// ElevenLabsClient synthesizes narration audio through the ElevenLabs API.
type ElevenLabsClient struct {
	apiKey     string
	httpClient *httputil.RetryClient
	voiceID    string
	model      string
	baseURL    string
}

// NewElevenLabsClient creates an ElevenLabs synthesizer for the given voice.
func NewElevenLabsClient(apiKey, voiceID string) *ElevenLabsClient {
	return &ElevenLabsClient{
		apiKey: apiKey,
		httpClient: httputil.NewRetryClient(
			&http.Client{Timeout: defaultTimeout},
			httputil.DefaultRetryConfig(),
		),
		voiceID: voiceID,
		model:   defaultModelID,
		baseURL: elevenLabsBaseURL,
	}
}

// Synthesize converts text into MP3 audio bytes.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	reqBody := elevenlabsRequest{
		Text:    text,
		ModelID: c.model,
		VoiceSettings: elevenlabsVoiceConfig{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp elevenlabsErrorResponse
		if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Detail.Message != "" {
			return nil, fmt.Errorf("elevenlabs: %s", errResp.Detail.Message)
		}
		return nil, fmt.Errorf("elevenlabs: %s", resp.Status)
	}

	if len(body) == 0 {
		return nil, fmt.Errorf("elevenlabs: empty audio response")
	}

	return body, nil
}

// SetBaseURL overrides the API endpoint, for tests.
func (c *ElevenLabsClient) SetBaseURL(url string) {
	c.baseURL = url
}
