package controllers

import (
	"time"

	"github.com/MikageWorks/UnseiPay/app/repository"
	"github.com/MikageWorks/UnseiPay/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

// HandleAdminListUsers returns a paginated user listing with the overall count.
func HandleAdminListUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 100 {
		limit = 50
	}

	users := repository.GetGlobalFactory().GetUserRepository()
	total, err := users.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "user listing failed"})
	}
	list, err := users.List((page-1)*limit, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "user listing failed"})
	}

	out := make([]fiber.Map, len(list))
	for i, u := range list {
		out[i] = fiber.Map{
			"id":                 u.ID,
			"name":               u.Name,
			"email":              u.Email,
			"role":               u.Role,
			"status":             u.Status,
			"plan_type":          u.PlanType,
			"premium_expires_at": formatTimePtr(u.PremiumExpiresAt),
			"last_login_at":      formatTimePtr(u.LastLoginAt),
			"created_at":         u.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return c.JSON(fiber.Map{"users": out, "total": total, "page": page, "limit": limit})
}

// HandleAdminListNotifications returns the calling admin's notification inbox,
// newest first.
func HandleAdminListNotifications(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 100 {
		limit = 50
	}

	userID := usercontext.GetUserID(c)
	notifications, err := repository.GetGlobalFactory().GetNotificationRepository().GetByUserID(userID, (page-1)*limit, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "notification listing failed"})
	}

	out := make([]fiber.Map, len(notifications))
	for i, n := range notifications {
		out[i] = fiber.Map{
			"id":           n.ID,
			"type":         n.Type,
			"title":        n.Title,
			"content":      n.Content,
			"is_read":      n.IsRead,
			"reference_id": n.ReferenceID,
			"created_at":   n.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return c.JSON(fiber.Map{"notifications": out, "page": page, "limit": limit})
}

// HandleAdminMarkNotificationRead flags one notification as read.
func HandleAdminMarkNotificationRead(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid notification id"})
	}

	if err := repository.GetGlobalFactory().GetNotificationRepository().MarkRead(uint(id)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "mark read failed"})
	}
	return c.JSON(fiber.Map{"ok": true})
}
