package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/campus-go-api/internal/config"
	"github.com/noah-isme/campus-go-api/internal/handler"
	"github.com/noah-isme/campus-go-api/internal/middleware"
	"github.com/noah-isme/campus-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	BigDataHandler    *handler.BigDataHandler
	PredictionHandler *handler.PredictionHandler
	BuildingHandler   *handler.BuildingHandler
	EventHandler      *handler.EventHandler
	CategoryHandler   *handler.CategoryHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Identity on the read routes is best effort: a valid bearer token marks
	// the view as authenticated for the visitor counters, anonymous requests
	// pass through. Write routes still sit behind their strict guards.
	api.Use(middleware.JWTOptional(cfg.JWTSecret))

	app.Get("/metrics", observability.ScrapeHandler())

	if deps.BigDataHandler != nil {
		deps.BigDataHandler.Register(api.Group("/bigdata"))
	}

	if deps.PredictionHandler != nil {
		deps.PredictionHandler.Register(api.Group("/predictions"))
	}

	if deps.BuildingHandler != nil {
		deps.BuildingHandler.Register(api.Group("/buildings"))
	}

	if deps.EventHandler != nil {
		deps.EventHandler.Register(api.Group("/events"))
	}

	if deps.CategoryHandler != nil {
		deps.CategoryHandler.Register(api.Group("/categories"))
	}
}
