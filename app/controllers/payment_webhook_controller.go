package controllers

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/MikageWorks/UnseiPay/app/models"
	"github.com/MikageWorks/UnseiPay/internal/pkg/database"
	"github.com/MikageWorks/UnseiPay/internal/pkg/payment"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// newPaymentService builds the service for webhook handling. Tests swap it to
// observe the handler without a database.
var newPaymentService = func() *payment.Service {
	return payment.NewServiceFromDB(database.GetDB())
}

// HandlePaymentWebhook accepts asynchronous payment callbacks from external
// providers. Known business outcomes (activated, declined, already processed,
// unknown link) answer 200 so providers stop retrying conditions a retry
// cannot fix; only unexpected internal errors answer 500 to invite a retry.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	provider := c.Params("provider")
	if !models.IsValidPaymentProvider(provider) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid provider"})
	}

	rawBody := append([]byte(nil), c.BodyRaw()...)
	sourceIP := requestSourceIP(c)

	// A payload that cannot be parsed still gets logged verbatim by the
	// service; it just carries no extractable fields.
	payload := parseWebhookBody(c.Get(fiber.HeaderContentType), rawBody)

	log.Infof("[Payment Webhook] Received from %s (ip=%s, fields=%d)", provider, sourceIP, len(payload))

	svc := newPaymentService()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := svc.ProcessWebhook(ctx, provider, payload, rawBody, sourceIP)
	if err != nil {
		log.Errorf("[Payment Webhook] Error processing webhook: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal server error",
			"message": err.Error(),
		})
	}

	if !result.Success {
		log.Warnf("[Payment Webhook] Processing failed: %s (linkId=%s)", result.Message, result.LinkID)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": result.Success,
		"message": result.Message,
		"linkId":  result.LinkID,
	})
}

// HandlePaymentWebhookHealth is the webhook health check endpoint.
func HandlePaymentWebhookHealth(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"message":   "Payment webhook endpoint is healthy",
	})
}

// HandlePaymentWebhookVerify answers provider URL-verification handshakes by
// echoing the challenge, and reports readiness otherwise.
func HandlePaymentWebhookVerify(c *fiber.Ctx) error {
	provider := c.Params("provider")

	challenge := c.Query("challenge")
	if challenge == "" {
		challenge = c.Query("hub_challenge")
	}
	if challenge == "" {
		challenge = c.Query("verify_token")
	}
	if challenge != "" {
		return c.Status(fiber.StatusOK).SendString(challenge)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "ok",
		"provider":  provider,
		"message":   "Webhook endpoint is ready",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// parseWebhookBody decodes a webhook body based on Content-Type, falling back
// to a best-effort JSON parse. Providers send both JSON and form-encoded
// payloads; an undecodable body yields an empty field map.
func parseWebhookBody(contentType string, body []byte) map[string]interface{} {
	payload := map[string]interface{}{}
	if len(body) == 0 {
		return payload
	}

	if strings.Contains(contentType, fiber.MIMEApplicationForm) {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return payload
		}
		for key := range values {
			payload[key] = values.Get(key)
		}
		return payload
	}

	// JSON, or anything else: try JSON anyway
	if err := json.Unmarshal(body, &payload); err != nil {
		return map[string]interface{}{}
	}
	return payload
}
