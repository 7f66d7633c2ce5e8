package types

import "time"

// SubmitVideoResponse is returned by the submission endpoint with 202.
type SubmitVideoResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// JobStatusResponse is the public view of a job's durable state.
type JobStatusResponse struct {
	ID           string       `json:"id"`
	Status       string       `json:"status"`
	Progress     int          `json:"progress"`
	Result       *VideoResult `json:"result,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// JobSummary is the compact listing entry for a job.
type JobSummary struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaginationResponse carries paging information on list responses.
type PaginationResponse struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	Pages    int   `json:"pages"`
}

// ListJobsResponse is returned by the job listing endpoint.
type ListJobsResponse struct {
	Jobs       []JobSummary       `json:"jobs"`
	Pagination PaginationResponse `json:"pagination"`
}

// WebhookAck is returned to the render delegate after a webhook delivery.
type WebhookAck struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
