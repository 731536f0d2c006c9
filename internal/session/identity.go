// ABOUTME: Authenticated identity and role types shared by the session core
// ABOUTME: Mirrors the user object returned by the backend login and /me endpoints

package session

// Role is the authorization role issued by the backend
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is a role the backend can issue
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleAdmin
}

// Identity is the logged-in user as issued by the backend.
// It is immutable for the lifetime of a session; re-login replaces it wholesale.
type Identity struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"name"`
	Role        Role   `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// clone returns a private copy so callers can never mutate store state
func (i *Identity) clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}
