package auth

import (
	"github.com/eventstaff/attendance/internal"
	coreuser "github.com/eventstaff/attendance/internal/core/user"
)

// ABACPolicy decides access to user accounts from the caller's role and
// whether the caller owns the account.
type ABACPolicy struct{}

func NewABACPolicy() *ABACPolicy {
	return &ABACPolicy{}
}

func (p *ABACPolicy) allow(principal *internal.Principal, ownerID int64, action string) bool {
	if principal == nil {
		return false
	}
	if principal.Role == coreuser.RoleAdmin {
		return true
	}

	// Owner access for basic operations
	if principal.UserID == ownerID {
		return action == "read" || action == "update"
	}
	return false
}

func (p *ABACPolicy) CanViewUser(principal *internal.Principal, userID int64) error {
	if p.allow(principal, userID, "read") {
		return nil
	}
	return internal.ErrAccessDenied
}

// CanUpdateUser also requires admin when the update touches the role or the
// active flag.
func (p *ABACPolicy) CanUpdateUser(principal *internal.Principal, userID int64, privileged bool) error {
	if !p.allow(principal, userID, "update") {
		return internal.ErrAccessDenied
	}
	if privileged && principal.Role != coreuser.RoleAdmin {
		return internal.ErrAccessDenied.WithMessage("only admins may change roles or account status")
	}
	return nil
}

func (p *ABACPolicy) CanDeleteUser(principal *internal.Principal, userID int64) error {
	if p.allow(principal, userID, "delete") {
		return nil
	}
	return internal.ErrAccessDenied
}

// CanAssignRole allows self-registration only as a plain user.
func (p *ABACPolicy) CanAssignRole(principal *internal.Principal, role string) error {
	if role == "" || role == coreuser.RoleUser {
		return nil
	}
	if principal != nil && principal.Role == coreuser.RoleAdmin {
		return nil
	}
	return internal.ErrAccessDenied.WithMessage("only admins may assign roles")
}
