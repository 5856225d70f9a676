package directory

import (
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
)

// DemoPassword is the shared password of the seeded demo accounts.
const DemoPassword = "password"

// Fixed seed ids so the demo tickets can reference them.
const (
	SeedStandardUserID = "1"
	SeedITUserID       = "2"
	SeedAdminUserID    = "3"
)

func seedUsers(bcryptCost int) ([]domain.User, error) {
	hash, err := auth.HashPassword(DemoPassword, bcryptCost)
	if err != nil {
		return nil, err
	}
	return []domain.User{
		{
			ID:           SeedStandardUserID,
			Name:         "Standard User",
			Email:        "user@example.com",
			PasswordHash: hash,
			Role:         domain.RoleStandard,
		},
		{
			ID:           SeedITUserID,
			Name:         "IT User",
			Email:        "it@example.com",
			PasswordHash: hash,
			Role:         domain.RoleIT,
		},
		{
			ID:           SeedAdminUserID,
			Name:         "Administrator",
			Email:        "admin@example.com",
			PasswordHash: hash,
			Role:         domain.RoleAdmin,
		},
	}, nil
}
