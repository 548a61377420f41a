package domain

// Principal is the resolved identity of the acting user.
// The zero value is the anonymous principal.
type Principal struct {
	ID string
}

// Anonymous returns the principal used when no session is present
func Anonymous() Principal {
	return Principal{}
}

// NewPrincipal wraps an identifier resolved by the identity provider
func NewPrincipal(id string) Principal {
	return Principal{ID: id}
}

// Present reports whether the principal is authenticated
func (p Principal) Present() bool {
	return p.ID != ""
}

// CanMutate is the authorization gate for owner-only actions.
// It fails closed: an anonymous principal is never allowed.
func CanMutate(p Principal, owner string) bool {
	return p.Present() && p.ID == owner
}
