package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/policy"
	"github.com/spec-kit/helpdesk/internal/registry"
	"github.com/spec-kit/helpdesk/pkg/util"
)

// TicketsHandler exposes the ticket lifecycle endpoints. The registry itself
// accepts any structurally valid call; this handler is the policy-aware
// wrapper that gates each action first.
type TicketsHandler struct {
	registry *registry.Registry
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(reg *registry.Registry) *TicketsHandler {
	return &TicketsHandler{registry: reg}
}

// List handles GET /tickets. The optional view query narrows the listing:
// mine (created by the caller), unassigned (open pool), assigned (claimed by
// the caller). The default is everything the caller's role may see.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var tickets []domain.Ticket
	switch c.Query("view") {
	case "mine":
		tickets = h.registry.UserTickets(principal.ID)
	case "unassigned":
		tickets = policy.VisibleTickets(principal, h.registry.UnassignedTickets())
	case "assigned":
		tickets = h.registry.AssignedTickets(principal.ID)
	default:
		tickets = policy.VisibleTickets(principal, h.registry.Tickets())
	}

	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	if !policy.CanCreateTicket(principal) {
		return util.NewForbidden("only standard users file tickets")
	}

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); details != nil {
		return util.NewValidationError("invalid payload", details)
	}

	ticket, err := h.registry.Create(c.UserContext(), registry.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		CreatedBy:   principal.ID,
	})
	if err == registry.ErrMissingField {
		return util.NewValidationError("title and description required", nil)
	}
	if err != nil {
		return util.MapError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	id := c.Params("id")

	ticket, ok := h.registry.TicketByID(id)
	if !ok {
		return util.NewNotFound("ticket", map[string]any{"id": id})
	}
	if !policy.CanViewTicket(principal, *ticket) {
		return util.NewForbidden("access denied")
	}

	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Assign handles POST /tickets/:id/assign. IT claims an open ticket for
// themselves.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	id := c.Params("id")

	ticket, ok := h.registry.TicketByID(id)
	if !ok {
		return util.NewNotFound("ticket", map[string]any{"id": id})
	}
	if !policy.CanAssignTicket(principal, *ticket) {
		return util.NewForbidden("access denied")
	}

	updated, err := h.registry.Assign(c.UserContext(), id, principal.ID)
	if err != nil {
		return util.MapError(err)
	}
	if updated == nil {
		return util.NewNotFound("ticket", map[string]any{"id": id})
	}

	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(updated)})
}

// Resolve handles POST /tickets/:id/resolve.
func (h *TicketsHandler) Resolve(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	id := c.Params("id")

	var req dto.ResolveTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); details != nil {
		return util.NewValidationError("invalid payload", details)
	}

	ticket, ok := h.registry.TicketByID(id)
	if !ok {
		return util.NewNotFound("ticket", map[string]any{"id": id})
	}
	if !policy.CanResolveTicket(principal, *ticket) {
		return util.NewForbidden("access denied")
	}

	updated, err := h.registry.Resolve(c.UserContext(), id, req.Resolution)
	if err != nil {
		return util.MapError(err)
	}
	if updated == nil {
		return util.NewNotFound("ticket", map[string]any{"id": id})
	}

	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(updated)})
}

// Close handles POST /tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	id := c.Params("id")

	ticket, ok := h.registry.TicketByID(id)
	if !ok {
		return util.NewNotFound("ticket", map[string]any{"id": id})
	}
	if !policy.CanCloseTicket(principal, *ticket) {
		return util.NewForbidden("access denied")
	}

	updated, err := h.registry.Close(c.UserContext(), id)
	if err != nil {
		return util.MapError(err)
	}
	if updated == nil {
		return util.NewNotFound("ticket", map[string]any{"id": id})
	}

	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(updated)})
}

// Update handles PUT /tickets/:id: the admin full-update path. CreatedAt and
// CreatedBy are immutable and carried over from the stored record.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	if !policy.CanEditTicket(principal) {
		return util.NewForbidden("admin role required")
	}

	id := c.Params("id")
	existing, ok := h.registry.TicketByID(id)
	if !ok {
		return util.NewNotFound("ticket", map[string]any{"id": id})
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); details != nil {
		return util.NewValidationError("invalid payload", details)
	}

	updated, err := h.registry.Update(c.UserContext(), domain.Ticket{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		CreatedAt:   existing.CreatedAt,
		CreatedBy:   existing.CreatedBy,
		AssignedTo:  req.AssignedTo,
		Resolution:  req.Resolution,
	})
	if err != nil {
		return util.MapError(err)
	}
	if updated == nil {
		return util.NewNotFound("ticket", map[string]any{"id": id})
	}

	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(updated)})
}

// Delete handles DELETE /tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	if !policy.CanEditTicket(principal) {
		return util.NewForbidden("admin role required")
	}

	id := c.Params("id")
	removed, err := h.registry.Delete(c.UserContext(), id)
	if err != nil {
		return util.MapError(err)
	}
	if !removed {
		return util.NewNotFound("ticket", map[string]any{"id": id})
	}

	return c.SendStatus(http.StatusNoContent)
}
