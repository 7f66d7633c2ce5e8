// Package routes wires the v1 endpoints to their handlers.
package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/saymi-el/looply/internal/api/v1/handlers"
	"github.com/saymi-el/looply/internal/api/v1/middleware"
)

// Options carries the handlers and settings the router needs.
type Options struct {
	Video     *handlers.VideoHandler
	Webhook   *handlers.WebhookHandler
	JWTSecret string
}

// SetupRoutes configures all the v1 routes
func SetupRoutes(router fiber.Router, opts Options) {
	// The delegate authenticates with a body signature, not a user token.
	router.Post("/webhook/render", opts.Webhook.HandleRenderWebhook)

	videos := router.Group("/videos", middleware.Auth(opts.JWTSecret))
	videos.Post("/", opts.Video.CreateVideo)
	videos.Get("/", opts.Video.ListVideos)
	videos.Get("/:id", opts.Video.GetVideoStatus)
}

// Register registers the v1 routes
func Register(app *fiber.App, opts Options) {
	v1Group := app.Group("/api/v1")
	SetupRoutes(v1Group, opts)
}
