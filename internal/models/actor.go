package models

// RoleAdmin is the only role allowed to drive the pricing engine.
const RoleAdmin = "admin"

// Actor identifies who triggered an operation. It is populated from the
// verified JWT claims by the auth middleware.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return a.ID != "" && a.Role == RoleAdmin
}
