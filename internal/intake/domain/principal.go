package domain

// Principal is the caller of an operation. It is either Anonymous or
// Authenticated; no other implementations exist.
type Principal interface {
	principal()
}

// Anonymous is an unauthenticated caller, e.g. the intake form.
type Anonymous struct{}

// Authenticated is a caller that presented a verified bearer token.
type Authenticated struct {
	ID   string
	Role Role
}

func (Anonymous) principal()     {}
func (Authenticated) principal() {}

// SystemID is the principal id used by operator tooling.
const SystemID = "system"

// System is the admin principal used by the operator CLI and internal jobs.
func System() Authenticated {
	return Authenticated{ID: SystemID, Role: RoleAdmin}
}

// AsAuthenticated unwraps p. ok is false for anonymous callers.
func AsAuthenticated(p Principal) (Authenticated, bool) {
	a, ok := p.(Authenticated)
	return a, ok
}

// IsAdmin reports whether p is an authenticated admin.
func IsAdmin(p Principal) bool {
	a, ok := p.(Authenticated)
	return ok && a.Role == RoleAdmin
}

// PrincipalID returns the id of an authenticated principal, or "".
func PrincipalID(p Principal) string {
	if a, ok := p.(Authenticated); ok {
		return a.ID
	}
	return ""
}
