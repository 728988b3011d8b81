// Package access holds the authorization rules applied on every protected
// operation: role checks for admin-gated routes and ownership checks for
// resource-scoped ones. A valid session alone never implies access.
package access

import "github.com/resumehub/resumehub/internal/models"

// CanActAs reports whether a user with the given role satisfies the required
// role. Administrators satisfy every requirement.
func CanActAs(role, required models.Role) bool {
	if role == models.RoleAdmin {
		return true
	}
	return role == required
}

// CanAccessResource reports whether the identity may operate on a resource
// owned by ownerID. Administrators may access any resource; standard users
// only their own.
func CanAccessResource(userID string, role models.Role, ownerID string) bool {
	if role == models.RoleAdmin {
		return true
	}
	return userID != "" && userID == ownerID
}
