package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/directory"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/policy"
	"github.com/spec-kit/helpdesk/pkg/util"
)

// UsersHandler exposes the admin account-management endpoints. Routes are
// admin-gated, and each action re-checks the access policy before mutating.
type UsersHandler struct {
	directory  *directory.Directory
	bcryptCost int
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(dir *directory.Directory, bcryptCost int) *UsersHandler {
	return &UsersHandler{directory: dir, bcryptCost: bcryptCost}
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	if !policy.CanManageUsers(principal) {
		return util.NewForbidden("admin role required")
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(h.directory.Users())})
}

// Create handles POST /users. The directory's AddUser performs no uniqueness
// check, so the email is pre-validated here.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	if !policy.CanManageUsers(principal) {
		return util.NewForbidden("admin role required")
	}

	var req dto.AdminUpsertUserRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); details != nil {
		return util.NewValidationError("invalid payload", details)
	}
	if req.Password == "" {
		return util.NewValidationError("invalid payload", map[string]any{"Password": "required"})
	}
	if _, exists := h.directory.UserByEmail(req.Email); exists {
		return util.NewConflict("email already registered", map[string]any{"email": req.Email})
	}

	user, err := h.directory.AddUser(c.UserContext(), directory.NewUser{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return util.MapError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Update handles PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	if !policy.CanManageUsers(principal) {
		return util.NewForbidden("admin role required")
	}

	id := c.Params("id")
	existing, ok := h.directory.UserByID(id)
	if !ok {
		return util.NewNotFound("user", map[string]any{"id": id})
	}

	var req dto.AdminUpsertUserRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); details != nil {
		return util.NewValidationError("invalid payload", details)
	}

	passwordHash := existing.PasswordHash
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password, h.bcryptCost)
		if err != nil {
			return util.MapError(err)
		}
		passwordHash = hash
	}

	updated, err := h.directory.UpdateUser(c.UserContext(), domain.User{
		ID:           id,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
	})
	if errors.Is(err, directory.ErrEmailTaken) {
		return util.NewConflict("email already registered", map[string]any{"email": req.Email})
	}
	if err != nil {
		return util.MapError(err)
	}
	if updated == nil {
		return util.NewNotFound("user", map[string]any{"id": id})
	}

	return c.JSON(fiber.Map{"data": dto.NewUserResponse(updated)})
}

// Delete handles DELETE /users/:id. The session holder cannot delete their
// own account.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	id := c.Params("id")
	if !policy.CanDeleteUser(principal, id) {
		return util.NewForbidden("cannot delete this account")
	}

	removed, err := h.directory.DeleteUser(c.UserContext(), id)
	if err != nil {
		return util.MapError(err)
	}
	if !removed {
		return util.NewNotFound("user", map[string]any{"id": id})
	}

	return c.SendStatus(http.StatusNoContent)
}
