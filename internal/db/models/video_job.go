package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saymi-el/looply/internal/types"
)

// Database field names used in partial updates.
const (
	// VideoJobStatusField is the field name for the job status
	VideoJobStatusField = "status"
	// VideoJobProgressField is the field name for the job progress
	VideoJobProgressField = "progress"
)

// VideoJobStatus represents the current state of a video generation job
type VideoJobStatus string

// Video job status constants
const (
	// VideoJobStatusUnknown represents an unknown or invalid job status
	VideoJobStatusUnknown VideoJobStatus = "unknown"
	// VideoJobStatusPending indicates the job is waiting to be processed
	VideoJobStatusPending VideoJobStatus = "PENDING"
	// VideoJobStatusRunning indicates the job is currently being processed
	VideoJobStatusRunning VideoJobStatus = "RUNNING"
	// VideoJobStatusCompleted indicates the job finished successfully
	VideoJobStatusCompleted VideoJobStatus = "COMPLETED"
	// VideoJobStatusFailed indicates the job failed
	VideoJobStatusFailed VideoJobStatus = "FAILED"
)

// VideoJob is one end-to-end request to produce a video artifact, tracked
// through the PENDING -> RUNNING -> {COMPLETED | FAILED} state machine.
//
// A job in RUNNING with a non-empty RenderJobID is awaiting an asynchronous
// callback from the remote render delegate; it is finalized by the webhook
// receiver, not by the worker that started it.
type VideoJob struct {
	ID            string          `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID       uint            `json:"owner_id" gorm:"not null;index"`
	Request       json.RawMessage `json:"request" gorm:"type:jsonb"`
	Status        VideoJobStatus  `json:"status" gorm:"not null;index"`
	Progress      int             `json:"progress" gorm:"not null;default:0"`
	Result        json.RawMessage `json:"result,omitempty" gorm:"type:jsonb"`
	ErrorMessage  string          `json:"error_message,omitempty" gorm:"type:text"`
	RenderJobID   string          `json:"render_job_id,omitempty" gorm:"index"`
	CloudProvider string          `json:"cloud_provider,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BeforeCreate is a GORM hook that assigns the immutable job identity and the
// initial status.
func (j *VideoJob) BeforeCreate(_ *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Status == "" {
		j.Status = VideoJobStatusPending
	}
	return nil
}

// IsTerminal reports whether the status permits no further transitions.
func (s VideoJobStatus) IsTerminal() bool {
	return s == VideoJobStatusCompleted || s == VideoJobStatusFailed
}

// String returns the string representation of the job status
func (s VideoJobStatus) String() string {
	return string(s)
}

// ParseVideoJobStatus converts a string to a VideoJobStatus type
func ParseVideoJobStatus(str string) (VideoJobStatus, error) {
	switch str {
	case string(VideoJobStatusPending):
		return VideoJobStatusPending, nil
	case string(VideoJobStatusRunning):
		return VideoJobStatusRunning, nil
	case string(VideoJobStatusCompleted):
		return VideoJobStatusCompleted, nil
	case string(VideoJobStatusFailed):
		return VideoJobStatusFailed, nil
	default:
		return VideoJobStatusUnknown, fmt.Errorf("invalid video job status: %s", str)
	}
}

// UnmarshalJSON implements json.Unmarshaler for VideoJobStatus
func (s *VideoJobStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseVideoJobStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

// RequestData decodes the stored request parameters.
func (j *VideoJob) RequestData() (types.VideoRequest, error) {
	var req types.VideoRequest
	if len(j.Request) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(j.Request, &req); err != nil {
		return req, fmt.Errorf("decode job request: %w", err)
	}
	return req, nil
}

// SetRequest encodes and stores the request parameters.
func (j *VideoJob) SetRequest(req types.VideoRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode job request: %w", err)
	}
	j.Request = data
	return nil
}

// ResultData decodes the stored result payload, or returns nil when the job
// has no result yet.
func (j *VideoJob) ResultData() (*types.VideoResult, error) {
	if len(j.Result) == 0 {
		return nil, nil
	}
	var result types.VideoResult
	if err := json.Unmarshal(j.Result, &result); err != nil {
		return nil, fmt.Errorf("decode job result: %w", err)
	}
	return &result, nil
}
