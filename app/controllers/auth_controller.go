package controllers

import (
	"errors"
	"time"

	"github.com/MikageWorks/UnseiPay/app/models"
	"github.com/MikageWorks/UnseiPay/app/repository"
	"github.com/MikageWorks/UnseiPay/internal/pkg/middleware"
	"github.com/MikageWorks/UnseiPay/internal/pkg/session"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// HandleAPIRegister creates a new account on the free plan.
func HandleAPIRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	users := repository.GetGlobalFactory().GetUserRepository()
	if _, err := users.GetByEmail(req.Email); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email_taken", "message": "email is already registered"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "registration failed"})
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}
	if err := users.Create(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "registration failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": fiber.Map{
			"id":        user.ID,
			"name":      user.Name,
			"email":     user.Email,
			"plan_type": user.PlanType,
		},
	})
}

// HandleAPILogin authenticates a user and establishes a session.
func HandleAPILogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	users := repository.GetGlobalFactory().GetUserRepository()
	user, err := users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "invalid credentials"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "login failed"})
	}
	if !user.IsActive() || !user.CheckPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "invalid credentials"})
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := users.Update(user); err != nil {
		log.Errorf("[Auth] Failed to record last login for user %d: %v", user.ID, err)
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "session unavailable"})
	}
	sess.Set(middleware.SessionKeyUserID, user.ID)
	sess.Set(middleware.SessionKeyUserName, user.Name)
	sess.Set(middleware.SessionKeyIsAdmin, user.IsAdmin())
	sess.Set(middleware.SessionKeyPlan, user.PlanType)
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "session save failed"})
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":        user.ID,
			"name":      user.Name,
			"email":     user.Email,
			"plan_type": user.PlanType,
			"is_admin":  user.IsAdmin(),
		},
	})
}

// HandleAPILogout destroys the current session.
func HandleAPILogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	return c.JSON(fiber.Map{"ok": true})
}
