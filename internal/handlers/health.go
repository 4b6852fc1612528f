package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Pinger reports whether a downstream dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the health endpoint
type HealthHandler struct {
	jenkins Pinger
	logger  *zap.Logger
	timeout time.Duration
}

// NewHealthHandler creates a new health handler with dependencies
func NewHealthHandler(jenkins Pinger, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		jenkins: jenkins,
		logger:  logger,
		timeout: 5 * time.Second,
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// HealthCheck handles the health check endpoint
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	services := make(map[string]string)
	status := "healthy"

	if err := h.jenkins.Ping(ctx); err != nil {
		h.logger.Warn("Jenkins health check failed", zap.Error(err))
		services["jenkins"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		services["jenkins"] = "healthy"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  services,
	}

	if status == "unhealthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(response)
	}

	return c.JSON(response)
}
