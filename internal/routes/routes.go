package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tizendotnet/netcore-jenkins/internal/handlers"
)

// SetupRoutes configures all application routes with dependencies
func SetupRoutes(
	app *fiber.App,
	webhookPath string,
	webhookHandler *handlers.WebhookHandler,
	healthHandler *handlers.HealthHandler,
	gatherer prometheus.Gatherer,
) {
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	app.Post(webhookPath, webhookHandler.Receive)
	app.Get(webhookPath, webhookHandler.Info)
}
