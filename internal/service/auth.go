package service

import "sync"

// Authorizer decides which principals may invoke restricted operations.
//
// The admin principal is fixed at construction; the designated verifier
// can be rotated by the admin at runtime. Read operations (ride lookup,
// stats, badge listing) are unrestricted and never consult the authorizer.
type Authorizer struct {
	mu       sync.RWMutex
	admin    string
	verifier string
}

// NewAuthorizer creates a new Authorizer with the given principals.
func NewAuthorizer(admin, verifier string) *Authorizer {
	return &Authorizer{admin: admin, verifier: verifier}
}

// IsAdmin reports whether the principal is the administrative principal.
func (a *Authorizer) IsAdmin(principal string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return principal != "" && principal == a.admin
}

// CanVerify reports whether the principal may verify or reject rides.
func (a *Authorizer) CanVerify(principal string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return principal != "" && (principal == a.admin || principal == a.verifier)
}

// CanEvaluateBadges reports whether the principal may trigger badge
// evaluation. Restricted to the verifier and admin to keep arbitrary
// third parties from spamming issuance, even though evaluation itself
// is idempotent.
func (a *Authorizer) CanEvaluateBadges(principal string) bool {
	return a.CanVerify(principal)
}

// Verifier returns the currently designated verifier principal.
func (a *Authorizer) Verifier() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.verifier
}

// SetVerifier designates a new verifier principal. Admin only.
func (a *Authorizer) SetVerifier(principal, verifier string) error {
	if !a.IsAdmin(principal) {
		return ErrUnauthorized
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.verifier = verifier
	return nil
}
