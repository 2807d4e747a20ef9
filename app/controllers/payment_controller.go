package controllers

import (
	"context"
	"time"

	"github.com/MikageWorks/UnseiPay/internal/pkg/database"
	"github.com/MikageWorks/UnseiPay/internal/pkg/payment"
	"github.com/MikageWorks/UnseiPay/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

// HandleIssuePaymentLink creates or reuses the caller's pending payment link.
// Repeated calls (double-clicks, reloads) return the same link until it
// completes or expires.
func HandleIssuePaymentLink(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var in payment.IssueLinkInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
		}
	}
	if err := validate.Struct(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	svc := payment.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	issued, err := svc.IssueLink(ctx, userCtx.UserID, in)
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	return c.JSON(issued)
}

// HandleGetPaymentLinkStatus returns the status of one of the caller's links.
func HandleGetPaymentLinkStatus(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	linkID := c.Params("linkId")

	svc := payment.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	status, err := svc.GetLinkStatus(ctx, userCtx.UserID, linkID)
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	return c.JSON(status)
}

// HandleGetPaymentHistory lists the caller's payment history, newest first.
func HandleGetPaymentHistory(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	limit := c.QueryInt("limit", 0)

	svc := payment.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	entries, err := svc.GetPaymentHistory(ctx, userCtx.UserID, limit)
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"history": entries})
}

// HandleCancelPaymentLink cancels one of the caller's pending links.
func HandleCancelPaymentLink(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	linkID := c.Params("linkId")

	svc := payment.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := svc.CancelPendingLink(ctx, userCtx.UserID, linkID); err != nil {
		return paymentErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
