// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"tokenadmin/internal/handlers"
	"tokenadmin/internal/middleware"
	"tokenadmin/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Fees   *handlers.FeeHandler
	Wizard *handlers.WizardHandler
	Health *handlers.HealthHandler
}

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, h Handlers, auth *middleware.AuthMiddleware) {
	app.Get("/health", h.Health.HealthCheck)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Tokenization admin API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})

	// Protected routes with auth middleware
	api := app.Group("/api", auth.Handler)

	setupFeeRoutes(api, h.Fees)
	setupDraftRoutes(api, h.Wizard)
}

func setupFeeRoutes(api fiber.Router, h *handlers.FeeHandler) {
	feeRoutes := api.Group("/fees", middleware.HasPermission(models.PermissionFeesRead))
	feeRoutes.Get("/categories", h.ListCategories)
	feeRoutes.Get("/categories/:id", h.GetCategory)
	feeRoutes.Post("/calculate", h.Calculate)
	feeRoutes.Post("/validate", h.Validate)
}

func setupDraftRoutes(api fiber.Router, h *handlers.WizardHandler) {
	read := middleware.HasPermission(models.PermissionDraftsRead)
	write := middleware.HasPermission(models.PermissionDraftsWrite)

	drafts := api.Group("/drafts")
	drafts.Post("/", write, h.CreateDraft)
	drafts.Get("/", read, h.ListDrafts)
	drafts.Get("/:id", read, h.GetDraft)
	drafts.Put("/:id/steps/:step", write, h.SaveStep)
	drafts.Post("/:id/submit", write, h.Submit)
}
