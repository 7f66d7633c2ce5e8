package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/saymi-el/looply/internal/db/repos"
	"github.com/saymi-el/looply/internal/logger"
	"github.com/saymi-el/looply/internal/render"
	"github.com/saymi-el/looply/internal/services"
	"github.com/saymi-el/looply/internal/types"
)

// WebhookHandler receives render delegate callbacks.
type WebhookHandler struct {
	service *services.Webhook
	secret  []byte
}

// NewWebhookHandler creates a new webhook handler. An empty secret disables
// signature verification.
func NewWebhookHandler(service *services.Webhook, secret string) *WebhookHandler {
	h := &WebhookHandler{service: service}
	if secret != "" {
		h.secret = []byte(secret)
	} else {
		logger.Warn("Render webhook signature verification is disabled, set RENDER_WEBHOOK_SECRET to enable it")
	}
	return h
}

// HandleRenderWebhook applies one delegate notification. Duplicate terminal
// notifications are acknowledged without re-applying.
func (h *WebhookHandler) HandleRenderWebhook(c *fiber.Ctx) error {
	body := c.Body()

	if h.secret != nil {
		if err := render.VerifySignature(h.secret, body, c.Get(render.SignatureHeader)); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.WebhookAck{
				Success: false,
				Message: err.Error(),
			})
		}
	}

	var payload types.RenderWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.WebhookAck{
			Success: false,
			Message: "invalid webhook payload",
		})
	}

	err := h.service.HandleNotification(c.Context(), payload)
	switch {
	case err == nil:
		return c.JSON(types.WebhookAck{Success: true, Message: "notification applied"})
	case errors.Is(err, repos.ErrJobFinalized):
		return c.JSON(types.WebhookAck{Success: true, Message: "job already finalized"})
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, services.ErrCorrelationMismatch):
		return c.Status(fiber.StatusNotFound).JSON(types.WebhookAck{
			Success: false,
			Message: "job not found",
		})
	case errors.Is(err, services.ErrUnknownRenderStatus), errors.Is(err, services.ErrMissingVideoURL):
		return c.Status(fiber.StatusBadRequest).JSON(types.WebhookAck{
			Success: false,
			Message: err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(types.WebhookAck{
			Success: false,
			Message: "failed to apply notification",
		})
	}
}
