package controllers

import (
	"context"
	"time"

	"github.com/MikageWorks/UnseiPay/app/models"
	"github.com/MikageWorks/UnseiPay/internal/pkg/database"
	"github.com/MikageWorks/UnseiPay/internal/pkg/payment"
	"github.com/MikageWorks/UnseiPay/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

// HandleAdminListPaymentLinks lists payment links with an optional status filter.
func HandleAdminListPaymentLinks(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	status := c.Query("status")
	if status != "" {
		switch status {
		case models.PaymentLinkPending, models.PaymentLinkCompleted, models.PaymentLinkExpired, models.PaymentLinkCancelled:
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid status filter"})
		}
	}

	svc := payment.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	links, err := svc.ListAllLinks(ctx, userCtx, payment.ListLinksFilter{
		Status: status,
		Limit:  c.QueryInt("limit", 0),
	})
	if err != nil {
		return paymentErrorResponse(c, err)
	}

	out := make([]fiber.Map, len(links))
	for i, link := range links {
		entry := fiber.Map{
			"id":           link.ID,
			"link_id":      link.LinkID,
			"user_id":      link.UserID,
			"amount":       link.Amount,
			"status":       link.Status,
			"provider":     link.Provider,
			"created_at":   link.CreatedAt.UTC().Format(time.RFC3339),
			"completed_at": formatTimePtr(link.CompletedAt),
			"expires_at":   formatTimePtr(link.ExpiresAt),
		}
		if link.User != nil {
			entry["user"] = fiber.Map{
				"id":    link.User.ID,
				"name":  link.User.Name,
				"email": link.User.Email,
			}
		}
		out[i] = entry
	}
	return c.JSON(fiber.Map{"links": out})
}

// HandleAdminManualActivation activates a user's premium plan out-of-band,
// typically after a confirmed bank transfer.
func HandleAdminManualActivation(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var in payment.ManualActivationInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}
	if err := validate.Struct(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	svc := payment.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := svc.ManualActivate(ctx, userCtx, in)
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success":            true,
		"premium_expires_at": result.PremiumExpiresAt.UTC().Format(time.RFC3339),
		"months":             result.Months,
	})
}

// HandleAdminListWebhookLogs returns the raw webhook audit trail for diagnosis.
func HandleAdminListWebhookLogs(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	svc := payment.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logs, err := svc.ListWebhookLogs(ctx, userCtx, c.QueryInt("limit", 0))
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"webhooks": logs})
}
