package router

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/moderationhq/modgate/pkg/config"
	handlers "github.com/moderationhq/modgate/pkg/handlers/http"
	"github.com/moderationhq/modgate/pkg/middleware"
)

const (
	HealthPath = "/health"
	PingPath   = "/__/ping"
)

var ErrMissingHandler = errors.New("handler transport is missing a required handler")

type moderationRouter struct {
	handlerTransport    handlers.HandlerTransport
	middlewareTransport middleware.Transport
	config              *config.Config
}

func NewModerationRouter(
	handlerTransport handlers.HandlerTransport,
	middlewareTransport middleware.Transport,
	cfg *config.Config,
) ServerRouter {
	return &moderationRouter{
		handlerTransport:    handlerTransport,
		middlewareTransport: middlewareTransport,
		config:              cfg,
	}
}

func (r *moderationRouter) BuildRoutes(router *fiber.App) error {
	t := r.handlerTransport
	if t.AnalyzeContentHandler == nil || t.BatchAnalyzeHandler == nil || t.ModerationHealthHandler == nil {
		return ErrMissingHandler
	}

	if r.middlewareTransport.RecoverMiddleware != nil {
		router.Use(r.middlewareTransport.RecoverMiddleware.Middleware())
	}
	if r.config.Metrics.Enabled && r.middlewareTransport.MetricsMiddleware != nil {
		router.Use(r.middlewareTransport.MetricsMiddleware.Middleware())
	}

	router.Get(HealthPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusOK).JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	router.Get(PingPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusOK).JSON(fiber.Map{
			"message": "pong",
		})
	})

	moderation := router.Group("/moderation")
	{
		moderation.Post("/analyze", t.AnalyzeContentHandler.Handle)
		moderation.Post("/batch-analyze", t.BatchAnalyzeHandler.Handle)
		moderation.Post("/quick-check", t.QuickCheckHandler.Handle)
		moderation.Get("/categories", t.ModerationCategoriesHandler.Handle)
		moderation.Get("/health", t.ModerationHealthHandler.Handle)
	}

	if r.config.Research.Enabled && t.ResearchQueryHandler != nil {
		research := router.Group("/research")
		{
			research.Post("/query", t.ResearchQueryHandler.Handle)
			research.Get("/health", t.ResearchHealthHandler.Handle)
		}
	}

	return nil
}
