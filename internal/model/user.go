package model

// Roles known to the UI
const (
	RoleAdmin   = "admin"
	RoleUsuario = "usuario"
)

// User is a backend account. Password is write-only.
type User struct {
	ID       string `json:"_id,omitempty"`
	FullName string `json:"nombrecompleto"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Role     string `json:"rol"`
}

// SessionUser is the subset of User kept in the session after login
type SessionUser struct {
	Username string `json:"username" bson:"username"`
	Role     string `json:"rol" bson:"rol"`
	FullName string `json:"nombrecompleto,omitempty" bson:"nombrecompleto,omitempty"`
}

// IsAdmin reports whether the user holds the admin role
func (u SessionUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName prefers the full name and falls back to the username
func (u SessionUser) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
