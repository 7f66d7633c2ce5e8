package assembly

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

const (
	defaultShotstackEndpoint = "https://api.shotstack.io/v1"
	shotstackTimeout         = 30 * time.Second
	renderPollInterval       = 3 * time.Second
	renderPollBudget         = 10 * time.Minute
)

type shotstackClip struct {
	Asset  shotstackAsset `json:"asset"`
	Start  float64        `json:"start"`
	Length float64        `json:"length"`
}

type shotstackAsset struct {
	Type string `json:"type"`
	Src  string `json:"src"`
}

type shotstackEdit struct {
	Timeline shotstackTimeline `json:"timeline"`
	Output   shotstackOutput   `json:"output"`
}

type shotstackTimeline struct {
	Tracks     []shotstackTrack `json:"tracks"`
	Soundtrack *shotstackAsset  `json:"soundtrack,omitempty"`
}

type shotstackTrack struct {
	Clips []shotstackClip `json:"clips"`
}

type shotstackOutput struct {
	Format     string `json:"format"`
	Resolution string `json:"resolution"`
}

type shotstackQueueResponse struct {
	Success  bool `json:"success"`
	Response struct {
		ID string `json:"id"`
	} `json:"response"`
	Message string `json:"message"`
}

type shotstackStatusResponse struct {
	Response struct {
		Status string `json:"status"`
		URL    string `json:"url"`
		Error  string `json:"error"`
	} `json:"response"`
}

// ShotstackAssembler cuts the final video with the Shotstack edit API: queue
// an edit, then poll the render until it is done.
type ShotstackAssembler struct {
	endpoint   string
	apiKey     string
	httpClient *httputil.RetryClient
	pollEvery  time.Duration
}

func NewShotstackAssembler(endpoint, apiKey string) *ShotstackAssembler {
	if endpoint == "" {
		endpoint = defaultShotstackEndpoint
	}
	return &ShotstackAssembler{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: httputil.NewRetryClient(
			&http.Client{Timeout: shotstackTimeout},
			httputil.DefaultRetryConfig(),
		),
		pollEvery: renderPollInterval,
	}
}

func (a *ShotstackAssembler) Assemble(ctx context.Context, in Input) (*Output, error) {
	if len(in.Assets) == 0 {
		return nil, fmt.Errorf("no clips to assemble")
	}

	renderID, err := a.queueEdit(ctx, in)
	if err != nil {
		return nil, err
	}

	url, err := a.awaitRender(ctx, renderID)
	if err != nil {
		return nil, err
	}

	return &Output{
		URL: url,
		Metadata: &types.VideoMetadata{
			Duration:   float64(in.Duration),
			Resolution: "1080x1920",
			Format:     "mp4",
		},
	}, nil
}

func (a *ShotstackAssembler) queueEdit(ctx context.Context, in Input) (string, error) {
	clips := make([]shotstackClip, 0, len(in.Assets))
	for _, asset := range in.Assets {
		clips = append(clips, shotstackClip{
			Asset:  shotstackAsset{Type: "video", Src: asset.URL},
			Start:  float64(asset.Prompt.Timing.Start),
			Length: float64(asset.Prompt.Timing.End - asset.Prompt.Timing.Start),
		})
	}

	edit := shotstackEdit{
		Timeline: shotstackTimeline{Tracks: []shotstackTrack{{Clips: clips}}},
		Output:   shotstackOutput{Format: "mp4", Resolution: "1080"},
	}

	data, err := json.Marshal(edit)
	if err != nil {
		return "", fmt.Errorf("marshal edit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint+"/render", bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("queue edit: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("shotstack: %s: %s", resp.Status, string(body))
	}

	var queued shotstackQueueResponse
	if err := json.Unmarshal(body, &queued); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if !queued.Success || queued.Response.ID == "" {
		return "", fmt.Errorf("shotstack rejected edit: %s", queued.Message)
	}
	return queued.Response.ID, nil
}

func (a *ShotstackAssembler) awaitRender(ctx context.Context, renderID string) (string, error) {
	deadline := time.Now().Add(renderPollBudget)
	ticker := time.NewTicker(a.pollEvery)
	defer ticker.Stop()

	for {
		status, url, renderErr, err := a.renderStatus(ctx, renderID)
		if err != nil {
			return "", err
		}

		switch status {
		case "done":
			return url, nil
		case "failed":
			return "", fmt.Errorf("shotstack render failed: %s", renderErr)
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("shotstack render %s timed out", renderID)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

func (a *ShotstackAssembler) renderStatus(ctx context.Context, renderID string) (status, url, renderErr string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint+"/render/"+renderID, nil)
	if err != nil {
		return "", "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", "", "", fmt.Errorf("poll render: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", "", fmt.Errorf("shotstack: %s: %s", resp.Status, string(body))
	}

	var decoded shotstackStatusResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", "", "", fmt.Errorf("unmarshal response: %w", err)
	}
	return decoded.Response.Status, decoded.Response.URL, decoded.Response.Error, nil
}
