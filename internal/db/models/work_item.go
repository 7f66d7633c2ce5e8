package models

import (
	"time"

	"gorm.io/gorm"
)

// WorkItem is one queued message carrying a job reference to the worker pool.
// Delivery is at-least-once: a claimed item that is neither acked nor nacked
// becomes claimable again once its visibility window expires.
type WorkItem struct {
	gorm.Model
	JobID     string     `json:"job_id" gorm:"not null;index"`
	Attempts  int        `json:"attempts" gorm:"not null;default:0"`
	VisibleAt time.Time  `json:"visible_at" gorm:"not null;index"`
	ClaimedBy string     `json:"claimed_by,omitempty"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
	Done      bool       `json:"done" gorm:"not null;default:false;index"`
	Dead      bool       `json:"dead" gorm:"not null;default:false;index"`
	LastError string     `json:"last_error,omitempty" gorm:"type:text"`
}
