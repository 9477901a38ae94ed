package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-intake/internal/api/http/handlers"
	"github.com/spec-kit/ticket-intake/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Intake  *handlers.IntakeHandler
	Tickets *handlers.TicketsHandler
	FAQs    *handlers.FAQHandler
	Metrics *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.JSON(cfg.Metrics.Snapshot())
	})

	api := app.Group("/api")

	tickets := api.Group("/tickets")
	tickets.Post("/", cfg.Intake.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/reply", cfg.Tickets.SendDirectEmail)
	tickets.Get("/:ticketId", cfg.Tickets.GetTicket)
	tickets.Put("/:ticketId", cfg.Tickets.UpdateTicket)
	tickets.Post("/:ticketId/reply", cfg.Tickets.AddReply)

	faqs := api.Group("/faqs")
	faqs.Post("/", cfg.FAQs.CreateFAQ)
	faqs.Get("/", cfg.FAQs.ListFAQs)
}
