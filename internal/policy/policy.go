// Package policy is the pure role × action × ticket-state decision table.
// The ticket registry stays permissive on purpose; every surface that exposes
// an action must consult this package first.
package policy

import "github.com/spec-kit/helpdesk/internal/domain"

// CanCreateTicket reports whether the user may file new tickets.
func CanCreateTicket(user *domain.User) bool {
	return user != nil && user.Role == domain.RoleStandard
}

// CanViewTicket reports whether the user may see the ticket. Standard users
// see their own tickets, IT sees the unassigned pool plus their assignments,
// admins see everything.
func CanViewTicket(user *domain.User, ticket domain.Ticket) bool {
	if user == nil {
		return false
	}
	switch user.Role {
	case domain.RoleStandard:
		return ticket.CreatedBy == user.ID
	case domain.RoleIT:
		if ticket.Status == domain.TicketStatusOpen {
			return true
		}
		return ticket.AssignedTo != nil && *ticket.AssignedTo == user.ID
	case domain.RoleAdmin:
		return true
	}
	return false
}

// CanAssignTicket reports whether the user may claim the ticket. Only IT may
// assign, only from the open pool, and only to themselves.
func CanAssignTicket(user *domain.User, ticket domain.Ticket) bool {
	return user != nil && user.Role == domain.RoleIT && ticket.Status == domain.TicketStatusOpen
}

// CanResolveTicket reports whether the user may resolve the ticket: IT only,
// and only for tickets currently assigned to them.
func CanResolveTicket(user *domain.User, ticket domain.Ticket) bool {
	if user == nil || user.Role != domain.RoleIT {
		return false
	}
	if ticket.Status != domain.TicketStatusAssigned {
		return false
	}
	return ticket.AssignedTo != nil && *ticket.AssignedTo == user.ID
}

// CanCloseTicket reports whether the user may close the ticket. Creators
// close their own resolved tickets; admins close anything not already closed.
func CanCloseTicket(user *domain.User, ticket domain.Ticket) bool {
	if user == nil {
		return false
	}
	switch user.Role {
	case domain.RoleStandard:
		return ticket.Status == domain.TicketStatusResolved && ticket.CreatedBy == user.ID
	case domain.RoleAdmin:
		return ticket.Status != domain.TicketStatusClosed
	}
	return false
}

// CanEditTicket reports whether the user may fully update or delete the
// ticket. Admin oversight only.
func CanEditTicket(user *domain.User) bool {
	return user != nil && user.Role == domain.RoleAdmin
}

// CanManageUsers reports whether the user may list, create, update and delete
// accounts.
func CanManageUsers(user *domain.User) bool {
	return user != nil && user.Role == domain.RoleAdmin
}

// CanDeleteUser reports whether the actor may delete the target account. The
// currently-authenticated account can never delete itself.
func CanDeleteUser(actor *domain.User, targetID string) bool {
	return CanManageUsers(actor) && actor.ID != targetID
}

// VisibleTickets filters a collection down to what the user may see.
func VisibleTickets(user *domain.User, tickets []domain.Ticket) []domain.Ticket {
	out := []domain.Ticket{}
	for _, t := range tickets {
		if CanViewTicket(user, t) {
			out = append(out, t)
		}
	}
	return out
}
