package types

// Render webhook statuses reported by the remote render delegate.
const (
	RenderStatusCompleted  = "completed"
	RenderStatusFailed     = "failed"
	RenderStatusProcessing = "processing"
)

// RenderRequest is the hand-off payload sent to the remote render delegate.
type RenderRequest struct {
	VideoJobID   string        `json:"videoJobId"`
	Duration     int           `json:"duration"`
	VideoPrompts []VideoPrompt `json:"videoPrompts"`
	WebhookURL   string        `json:"webhookUrl,omitempty"`
}

// RenderResponse is the delegate's answer to a hand-off request. RenderJobID
// is the correlation id linking the delegate's internal job to ours.
type RenderResponse struct {
	Success                    bool   `json:"success"`
	RenderJobID                string `json:"renderJobId"`
	Message                    string `json:"message"`
	EstimatedCompletionSeconds int    `json:"estimatedCompletionTime,omitempty"`
}

// RenderWebhookPayload is the asynchronous notification the delegate posts to
// the webhook endpoint once rendering finishes (or fails, or to report
// progress).
type RenderWebhookPayload struct {
	RenderJobID   string         `json:"renderJobId"`
	VideoJobID    string         `json:"videoJobId"`
	Status        string         `json:"status"`
	VideoURL      string         `json:"videoUrl,omitempty"`
	CloudProvider string         `json:"cloudProvider,omitempty"`
	Error         string         `json:"error,omitempty"`
	Metadata      *VideoMetadata `json:"metadata,omitempty"`
}
