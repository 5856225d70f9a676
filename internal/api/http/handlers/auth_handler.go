package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/directory"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/pkg/util"
)

// AuthHandler exposes registration, login and self-service profile endpoints.
type AuthHandler struct {
	directory  *directory.Directory
	tokens     *auth.TokenManager
	bcryptCost int
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(dir *directory.Directory, tokens *auth.TokenManager, bcryptCost int) *AuthHandler {
	return &AuthHandler{directory: dir, tokens: tokens, bcryptCost: bcryptCost}
}

// Register handles POST /auth/register. New accounts are not logged in.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); details != nil {
		return util.NewValidationError("invalid payload", details)
	}

	user, err := h.directory.Register(c.UserContext(), directory.NewUser{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if errors.Is(err, directory.ErrEmailTaken) {
		return util.NewConflict("email already registered", map[string]any{"email": req.Email})
	}
	if err != nil {
		return util.MapError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.NewUserResponse(user),
	})
}

// Login handles POST /auth/login. Failures never reveal whether the email or
// the password was wrong.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); details != nil {
		return util.NewValidationError("invalid payload", details)
	}

	user, err := h.directory.Login(c.UserContext(), req.Email, req.Password)
	if errors.Is(err, directory.ErrInvalidCredentials) {
		return util.NewUnauthorized("invalid credentials")
	}
	if err != nil {
		return util.MapError(err)
	}

	token, exp, err := h.tokens.GenerateToken(user)
	if err != nil {
		return util.MapError(err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.directory.Logout(c.UserContext()); err != nil {
		return util.MapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(principal)})
}

// UpdateMe handles PUT /auth/me: self-service name/email edits with an
// optional password change. Role is never self-assignable.
func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); details != nil {
		return util.NewValidationError("invalid payload", details)
	}

	passwordHash := principal.PasswordHash
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password, h.bcryptCost)
		if err != nil {
			return util.MapError(err)
		}
		passwordHash = hash
	}

	updated, err := h.directory.UpdateUser(c.UserContext(), domain.User{
		ID:           principal.ID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         principal.Role,
	})
	if errors.Is(err, directory.ErrEmailTaken) {
		return util.NewConflict("email already registered", map[string]any{"email": req.Email})
	}
	if err != nil {
		return util.MapError(err)
	}
	if updated == nil {
		return util.NewNotFound("user", map[string]any{"id": principal.ID})
	}

	return c.JSON(fiber.Map{"data": dto.NewUserResponse(updated)})
}
