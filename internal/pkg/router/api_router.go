package router

import (
	"strings"

	"github.com/MikageWorks/UnseiPay/app/controllers"
	"github.com/MikageWorks/UnseiPay/internal/pkg/middleware"
	"github.com/MikageWorks/UnseiPay/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	api := app.Group("/api", limiter.New(limiter.Config{
		Max: 120,
		// Webhook deliveries must never be rate limited away; providers
		// retry on 429 with unpredictable backoff.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodPost && strings.HasPrefix(c.Path(), "/api/payment/webhook/")
		},
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "UnseiPay API",
		})
	})

	h.registerAuthRoutes(api)
	h.registerWebhookRoutes(api)
	h.registerPaymentRoutes(api)
	h.registerAdminRoutes(api)
}

func (h ApiRouter) registerAuthRoutes(api fiber.Router) {
	api.Post("/auth/register", controllers.HandleAPIRegister)
	api.Post("/auth/login", controllers.HandleAPILogin)
	api.Post("/auth/logout", controllers.HandleAPILogout)
}

func (h ApiRouter) registerWebhookRoutes(api fiber.Router) {
	webhook := api.Group("/payment/webhook")
	// health has to be registered before the :provider wildcard
	webhook.Get("/health", controllers.HandlePaymentWebhookHealth)
	webhook.Get("/:provider", controllers.HandlePaymentWebhookVerify)
	webhook.Post("/:provider", controllers.HandlePaymentWebhook)
}

func (h ApiRouter) registerPaymentRoutes(api fiber.Router) {
	pay := api.Group("/payment", middleware.RequireAPISessionAuth)
	pay.Post("/links", controllers.HandleIssuePaymentLink)
	pay.Get("/links/:linkId", controllers.HandleGetPaymentLinkStatus)
	pay.Post("/links/:linkId/cancel", controllers.HandleCancelPaymentLink)
	pay.Get("/history", controllers.HandleGetPaymentHistory)
}

func (h ApiRouter) registerAdminRoutes(api fiber.Router) {
	admin := api.Group("/admin", middleware.RequireAPIAdminAuth)
	admin.Get("/users", controllers.HandleAdminListUsers)
	admin.Get("/notifications", controllers.HandleAdminListNotifications)
	admin.Post("/notifications/:id/read", controllers.HandleAdminMarkNotificationRead)

	pay := admin.Group("/payment")
	pay.Get("/links", controllers.HandleAdminListPaymentLinks)
	pay.Post("/activate", controllers.HandleAdminManualActivation)
	pay.Get("/webhooks", controllers.HandleAdminListWebhookLogs)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
