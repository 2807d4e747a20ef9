package middleware

import (
	"github.com/MikageWorks/UnseiPay/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

// RequireAPISessionAuth ensures a logged-in session for API routes and returns JSON 401 otherwise.
func RequireAPISessionAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	return c.Next()
}

// RequireAPIAdminAuth ensures a logged-in admin for API routes and returns JSON 401/403 otherwise.
func RequireAPIAdminAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	if !usercontext.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "admin access required",
		})
	}
	return c.Next()
}
