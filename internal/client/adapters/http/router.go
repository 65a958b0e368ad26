package http

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"sharenotes/internal/client/adapters/http/middleware"
	"sharenotes/internal/client/metrics"
)

// SetupRouter настраивает маршруты консоли.
func SetupRouter(app *fiber.App, handler *Handler, m *metrics.Metrics) {
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())
	if m != nil {
		app.Use(middleware.NewMetricsMiddleware(m))
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	app.Get("/healthz", handler.Health)
	if handler.deps.ConsoleToken != "" {
		app.Use(middleware.NewAuthMiddleware(handler.deps.ConsoleToken))
	}
	app.Get("/state", handler.State)

	notes := app.Group("/note")
	notes.Get("/", handler.ListNotes)
	notes.Post("/refresh", handler.RefreshNotes)
	notes.Get("/new", handler.NewNote)
	notes.Post("/", handler.CreateNote)
	notes.Get("/:id", handler.GetNote)
	notes.Get("/:id/edit", handler.EditNote)
	notes.Put("/:id", handler.UpdateNote)
	notes.Get("/:id/delete", handler.ConfirmDelete)
	notes.Delete("/:id", handler.DeleteNote)

	public := app.Group("/public/note")
	public.Get("/:id", handler.PublicNote)
	public.Post("/:id/prompt", handler.OpenPrompt)
	public.Post("/:id/unlock", handler.UnlockNote)

	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	})
}
