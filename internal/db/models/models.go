// Package models defines the persistent data model for video generation jobs.
package models

// Pagination defaults and bounds for list queries.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListOptions contains pagination options for list operations.
type ListOptions struct {
	Page     int
	PageSize int
}

// Normalize clamps the options to the accepted bounds.
func (o *ListOptions) Normalize() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize < 1 {
		o.PageSize = DefaultPageSize
	}
	if o.PageSize > MaxPageSize {
		o.PageSize = MaxPageSize
	}
}

// Offset returns the row offset for the normalized page.
func (o *ListOptions) Offset() int {
	return (o.Page - 1) * o.PageSize
}
