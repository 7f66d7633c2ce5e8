package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/saymi-el/looply/internal/api/v1/middleware"
	"github.com/saymi-el/looply/internal/db/models"
	"github.com/saymi-el/looply/internal/services"
	"github.com/saymi-el/looply/internal/types"
)

// VideoHandler handles HTTP requests for video job operations
type VideoHandler struct {
	service *services.Video
}

// NewVideoHandler creates a new video handler instance
func NewVideoHandler(service *services.Video) *VideoHandler {
	return &VideoHandler{service: service}
}

// CreateVideo accepts a generation request, persists a pending job and
// returns its id with 202. Generation continues asynchronously.
func (h *VideoHandler) CreateVideo(c *fiber.Ctx) error {
	var req types.VideoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid request body: " + err.Error()))
	}

	job, err := h.service.Submit(c.Context(), middleware.OwnerID(c), req)
	if err != nil {
		if errors.Is(err, types.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errServer("failed to submit job"))
	}

	return c.Status(fiber.StatusAccepted).JSON(ok(types.SubmitVideoResponse{
		JobID:  job.ID,
		Status: job.Status.String(),
	}))
}

// GetVideoStatus returns the durable state of one job.
func (h *VideoHandler) GetVideoStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("job id is required"))
	}

	job, err := h.service.GetJob(c.Context(), middleware.OwnerID(c), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errNotFound("job not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errServer("failed to load job"))
	}

	result, err := job.ResultData()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errServer("failed to decode job result"))
	}

	return c.JSON(ok(types.JobStatusResponse{
		ID:           job.ID,
		Status:       job.Status.String(),
		Progress:     job.Progress,
		Result:       result,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}))
}

// ListVideos returns a page of the caller's jobs, newest first.
func (h *VideoHandler) ListVideos(c *fiber.Ctx) error {
	opts := &models.ListOptions{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", models.DefaultPageSize),
	}
	opts.Normalize()

	jobs, total, err := h.service.ListJobs(c.Context(), middleware.OwnerID(c), opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errServer("failed to list jobs"))
	}

	summaries := make([]types.JobSummary, 0, len(jobs))
	for _, job := range jobs {
		summaries = append(summaries, types.JobSummary{
			ID:        job.ID,
			Status:    job.Status.String(),
			Progress:  job.Progress,
			CreatedAt: job.CreatedAt,
			UpdatedAt: job.UpdatedAt,
		})
	}

	pages := int((total + int64(opts.PageSize) - 1) / int64(opts.PageSize))
	return c.JSON(ok(types.ListJobsResponse{
		Jobs: summaries,
		Pagination: types.PaginationResponse{
			Page:     opts.Page,
			PageSize: opts.PageSize,
			Total:    total,
			Pages:    pages,
		},
	}))
}
