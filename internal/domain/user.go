package domain

// Role determines which surfaces and actions a user may reach.
type Role string

const (
	RoleStandard Role = "standard"
	RoleIT       Role = "it"
	RoleAdmin    Role = "admin"
)

// ValidRole reports whether the value is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleStandard, RoleIT, RoleAdmin:
		return true
	}
	return false
}

// User is an account registered with the directory. PasswordHash keeps the
// persisted field name "password" for snapshot compatibility, but its content
// is a bcrypt hash.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password"`
	Role         Role   `json:"role"`
}
