package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/subtally/subtally/app/models"
	"github.com/subtally/subtally/app/repository"
	"github.com/subtally/subtally/internal/pkg/usercontext"
	"github.com/subtally/subtally/internal/pkg/utils"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleUserRegister creates an account and issues the first API key. The
// plaintext key is returned exactly once; only its hash is stored.
func HandleUserRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()

	if existing, err := userRepo.GetByEmail(strings.ToLower(req.Email)); err == nil && existing != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "conflict",
			"message": "an account with this email already exists",
		})
	}

	user, err := models.CreateUser(req.Name, strings.ToLower(req.Email), req.Password)
	if err != nil {
		return badRequest(c, err.Error())
	}

	apiKey, err := user.GenerateAPIKey()
	if err != nil {
		return internalError(c, "could not generate api key")
	}

	if err := userRepo.Create(user); err != nil {
		return internalError(c, "could not create user")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":    user,
		"api_key": apiKey,
	})
}

// HandleUserLogin verifies credentials and rotates the API key.
func HandleUserLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()

	user, err := userRepo.GetByEmail(strings.ToLower(req.Email))
	if err != nil || !user.CheckPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "invalid email or password",
		})
	}
	if !user.IsActive() {
		return forbidden(c, "account is not active")
	}

	apiKey, err := user.GenerateAPIKey()
	if err != nil {
		return internalError(c, "could not generate api key")
	}
	now := time.Now()
	user.LastLoginAt = &now
	if err := userRepo.Update(user); err != nil {
		return internalError(c, "could not update user")
	}

	return c.JSON(fiber.Map{
		"user":    user,
		"api_key": apiKey,
	})
}

// HandleUserMe returns the authenticated account.
func HandleUserMe(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "user not found")
		}
		return internalError(c, "could not load user")
	}

	return c.JSON(fiber.Map{
		"user":       user,
		"avatar_url": utils.GetGravatarURL(user.Email, 200),
	})
}

// HandleAPIKeyRotate invalidates the current API key and returns a fresh one.
func HandleAPIKeyRotate(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByID(userID)
	if err != nil {
		return internalError(c, "could not load user")
	}

	apiKey, err := user.GenerateAPIKey()
	if err != nil {
		return internalError(c, "could not generate api key")
	}
	if err := userRepo.Update(user); err != nil {
		return internalError(c, "could not update user")
	}

	return c.JSON(fiber.Map{"api_key": apiKey})
}
