package middleware

import (
	"github.com/MikageWorks/UnseiPay/app/repository"
	"github.com/MikageWorks/UnseiPay/internal/pkg/session"
	"github.com/MikageWorks/UnseiPay/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

// Session keys written at login time.
const (
	SessionKeyUserID   = "user_id"
	SessionKeyUserName = "user_name"
	SessionKeyIsAdmin  = "is_admin"
	SessionKeyPlan     = "user_plan"
)

// UserContextMiddleware sets up the complete user context for every request.
// This centralizes user session handling and eliminates code duplication.
func UserContextMiddleware(c *fiber.Ctx) error {
	anonymous := usercontext.UserContext{IsLoggedIn: false, IsAdmin: false}

	store := session.GetSessionStore()
	if store == nil {
		usercontext.SetUserContext(c, anonymous)
		return c.Next()
	}

	sess, err := store.Get(c)
	if err != nil {
		// On error: treat as anonymous user
		usercontext.SetUserContext(c, anonymous)
		return c.Next()
	}

	userID, ok := sess.Get(SessionKeyUserID).(uint)
	if !ok || userID == 0 {
		usercontext.SetUserContext(c, anonymous)
		return c.Next()
	}

	username, _ := sess.Get(SessionKeyUserName).(string)
	isAdmin, _ := sess.Get(SessionKeyIsAdmin).(bool)

	// Plan with session-first strategy, falling back to the user row.
	plan, _ := sess.Get(SessionKeyPlan).(string)
	if plan == "" {
		plan = "free"
		if factory := repository.GetGlobalFactory(); factory != nil {
			if user, err := factory.GetUserRepository().GetByID(userID); err == nil && user.PlanType != "" {
				plan = user.PlanType
			}
		}
		// cache in session for subsequent requests
		_ = session.SetSessionValue(c, SessionKeyPlan, plan)
	}

	usercontext.SetUserContext(c, usercontext.UserContext{
		UserID:     userID,
		Username:   username,
		IsLoggedIn: true,
		IsAdmin:    isAdmin,
		Plan:       plan,
	})

	return c.Next()
}
