// Package app assembles the HTTP server.
package app

import (
	"github.com/gofiber/fiber/v2"

	"github.com/saymi-el/looply/internal/api/v1/handlers"
	"github.com/saymi-el/looply/internal/api/v1/middleware"
	"github.com/saymi-el/looply/internal/api/v1/routes"
	"github.com/saymi-el/looply/internal/services"
)

// Options carries the services the server exposes.
type Options struct {
	VideoService   *services.Video
	WebhookService *services.Webhook
	JWTSecret      string
	WebhookSecret  string
}

// New builds the fiber application with middleware, health check and v1
// routes.
func New(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	app.Use(middleware.Logger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	routes.Register(app, routes.Options{
		Video:     handlers.NewVideoHandler(opts.VideoService),
		Webhook:   handlers.NewWebhookHandler(opts.WebhookService, opts.WebhookSecret),
		JWTSecret: opts.JWTSecret,
	})

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
