package handlers

import (
	"fmt"
	"mime"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tizendotnet/netcore-jenkins/internal/config"
	"github.com/tizendotnet/netcore-jenkins/internal/metrics"
	"github.com/tizendotnet/netcore-jenkins/internal/models"
)

// HeaderDeliveryID carries the id assigned to each received webhook
const HeaderDeliveryID = "X-Delivery-ID"

// JobTrigger starts a build without waiting for its outcome
type JobTrigger interface {
	Build(jobName string, params map[string]string, fields ...zap.Field)
}

// WebhookHandler receives MyGet webhooks and triggers the feed job on
// package-added events.
//
// Inbound signatures are not verified.
type WebhookHandler struct {
	trigger     JobTrigger
	job         string
	parameter   string
	route       string
	contentType string
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewWebhookHandler creates a new webhook handler with dependencies
func NewWebhookHandler(
	trigger JobTrigger,
	jenkinsCfg *config.JenkinsConfig,
	webhookCfg *config.WebhookConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		trigger:     trigger,
		job:         jenkinsCfg.Job,
		parameter:   jenkinsCfg.Parameter,
		route:       webhookCfg.Route,
		contentType: webhookCfg.ContentType,
		metrics:     m,
		logger:      logger,
	}
}

// Receive handles POST /webhook/<route>. The response is always 200; the
// build outcome is only visible in logs and metrics.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	deliveryID := uuid.New().String()
	c.Set(HeaderDeliveryID, deliveryID)
	log := h.logger.With(zap.String("delivery_id", deliveryID))

	payload := h.parsePayload(c, log)
	payloadType := payload.Type()

	log.Info("Webhook received",
		zap.String("payload_type", payloadType),
		zap.Int("body_bytes", len(c.Body())),
	)
	log.Debug("Webhook body", zap.ByteString("body", c.Body()))

	label := metrics.UnknownPayloadType
	if known, err := models.ParsePayloadType(payloadType); err == nil {
		label = string(known)
	}
	h.metrics.ObserveWebhook(label)

	if models.PayloadType(payloadType) != models.PackageAdded {
		return c.SendStatus(fiber.StatusOK)
	}

	metadata, err := payload.Encode()
	if err != nil {
		log.Error("Failed to serialize payload for Jenkins", zap.Error(err))
		return c.SendStatus(fiber.StatusOK)
	}

	h.trigger.Build(h.job, map[string]string{h.parameter: metadata},
		zap.String("delivery_id", deliveryID),
	)

	return c.SendStatus(fiber.StatusOK)
}

// Info handles GET /webhook/<route>
func (h *WebhookHandler) Info(c *fiber.Ctx) error {
	return c.SendString(fmt.Sprintf("This is webhook server for %s", h.route))
}

// parsePayload returns nil for bodies that are not the configured JSON
// media type or not a JSON object
func (h *WebhookHandler) parsePayload(c *fiber.Ctx, log *zap.Logger) models.Payload {
	raw := c.Get(fiber.HeaderContentType)
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil || !strings.EqualFold(mediaType, h.contentType) {
		log.Info("Ignoring body with unexpected content type",
			zap.String("content_type", raw),
		)
		return nil
	}

	payload, err := models.DecodePayload(c.Body())
	if err != nil {
		log.Warn("Failed to parse webhook body", zap.Error(err))
		return nil
	}
	return payload
}
