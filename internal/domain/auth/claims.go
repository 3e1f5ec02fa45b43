package auth

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Reviews overtime and relaxation
	RoleEmployee Role = "employee" // Regular employee
)

// Claims is the subset of access token claims the attendance API reads.
type Claims struct {
	UserID  string
	Role    Role
	IsAdmin bool
}

// CanReview reports whether the caller may approve or reject overtime and relaxation.
func (c Claims) CanReview() bool {
	return c.IsAdmin || c.Role == RoleOwner || c.Role == RoleManager
}

// ClaimsFromMap reads claims decoded by jwtauth. Missing fields stay zero.
func ClaimsFromMap(m map[string]interface{}) Claims {
	var c Claims
	if v, ok := m["user_id"].(string); ok {
		c.UserID = v
	}
	if v, ok := m["role"].(string); ok {
		c.Role = Role(v)
	}
	if v, ok := m["is_admin"].(bool); ok {
		c.IsAdmin = v
	}
	return c
}
