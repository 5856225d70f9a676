package registry

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/directory"
	"github.com/spec-kit/helpdesk/internal/domain"
)

// seedTickets builds the demo dataset: one ticket in each of the open,
// assigned and resolved states, authored by the demo standard user.
func seedTickets(now time.Time) []domain.Ticket {
	itUser := directory.SeedITUserID
	resolution := "Software installed and configured as requested."

	return []domain.Ticket{
		{
			ID:          "1",
			Title:       "Printer not working",
			Description: "The finance department printer is not working correctly.",
			Status:      domain.TicketStatusOpen,
			Priority:    domain.TicketPriorityMedium,
			CreatedAt:   now.Add(-24 * time.Hour),
			UpdatedAt:   now.Add(-24 * time.Hour),
			CreatedBy:   directory.SeedStandardUserID,
			AssignedTo:  nil,
			Resolution:  nil,
		},
		{
			ID:          "2",
			Title:       "System access blocked",
			Description: "I cannot access the finance management system after the update.",
			Status:      domain.TicketStatusAssigned,
			Priority:    domain.TicketPriorityHigh,
			CreatedAt:   now.Add(-48 * time.Hour),
			UpdatedAt:   now.Add(-24 * time.Hour),
			CreatedBy:   directory.SeedStandardUserID,
			AssignedTo:  &itUser,
			Resolution:  nil,
		},
		{
			ID:          "3",
			Title:       "Software installation",
			Description: "I need the office suite installed on my computer.",
			Status:      domain.TicketStatusResolved,
			Priority:    domain.TicketPriorityLow,
			CreatedAt:   now.Add(-72 * time.Hour),
			UpdatedAt:   now.Add(-48 * time.Hour),
			CreatedBy:   directory.SeedStandardUserID,
			AssignedTo:  &itUser,
			Resolution:  &resolution,
		},
	}
}
