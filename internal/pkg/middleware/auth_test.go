package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/MikageWorks/UnseiPay/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestApp(uc *usercontext.UserContext) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if uc != nil {
			usercontext.SetUserContext(c, *uc)
		}
		return c.Next()
	})
	app.Get("/member", RequireAPISessionAuth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/admin", RequireAPIAdminAuth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func TestRequireAPISessionAuth(t *testing.T) {
	tests := []struct {
		name   string
		uc     *usercontext.UserContext
		status int
	}{
		{"anonymous", nil, fiber.StatusUnauthorized},
		{"logged in", &usercontext.UserContext{UserID: 1, IsLoggedIn: true}, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newAuthTestApp(tt.uc)
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/member", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRequireAPIAdminAuth(t *testing.T) {
	tests := []struct {
		name   string
		uc     *usercontext.UserContext
		status int
	}{
		{"anonymous", nil, fiber.StatusUnauthorized},
		{"non-admin", &usercontext.UserContext{UserID: 1, IsLoggedIn: true}, fiber.StatusForbidden},
		{"admin", &usercontext.UserContext{UserID: 1, IsLoggedIn: true, IsAdmin: true}, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newAuthTestApp(tt.uc)
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/admin", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
