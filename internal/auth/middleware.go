package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/pkg/util"
)

const principalKey = "auth_principal"

// UserSource resolves live accounts for token subjects. Satisfied by the user
// directory.
type UserSource interface {
	UserByID(id string) (*domain.User, bool)
}

// Middleware validates bearer tokens and loads the live account as the
// request principal. Deleted accounts fail authentication even with a valid
// token.
type Middleware struct {
	tokens *TokenManager
	users  UserSource
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, users UserSource) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return util.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return util.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return util.NewUnauthorized("invalid token")
	}

	user, ok := m.users.UserByID(claims.UserID)
	if !ok {
		return util.NewUnauthorized("account no longer exists")
	}

	c.Locals(principalKey, user)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated account.
func PrincipalFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
