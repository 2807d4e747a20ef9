package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/MikageWorks/UnseiPay/internal/pkg/payment"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// requestSourceIP prefers the first X-Forwarded-For hop over the socket address.
func requestSourceIP(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if ip := c.IP(); ip != "" {
		return ip
	}
	return "unknown"
}

// paymentErrorResponse maps payment service errors onto JSON error responses.
func paymentErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, payment.ErrAlreadySubscribed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "already_subscribed", "message": err.Error()})
	case errors.Is(err, payment.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": err.Error()})
	case errors.Is(err, payment.ErrLinkNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "link_not_found", "message": err.Error()})
	case errors.Is(err, payment.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user_not_found", "message": err.Error()})
	case errors.Is(err, payment.ErrNotCancellable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "not_cancellable", "message": err.Error()})
	case errors.Is(err, payment.ErrInvalidMonths):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_months", "message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": err.Error()})
	}
}

// formatTimePtr renders an optional timestamp as RFC3339 UTC, or nil.
func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
