// Package authz holds the pure role-policy decisions consulted inline
// by handlers. Existence checks always run before these, so a missing
// resource yields 404 even for a caller who would be forbidden.
package authz

import "github.com/shiftline-dev/shiftline/internal/models"

// Privileged reports whether the role sits above the worker tier.
func Privileged(role models.Role) bool {
	return role == models.RoleOwner || role == models.RoleManager
}

// CanAssignPrivileged gates setting role and hourly wage on arbitrary
// users.
func CanAssignPrivileged(role models.Role) bool {
	return role == models.RoleOwner
}

// CanActForOther gates creating or reading shifts for a foreign user id.
func CanActForOther(role models.Role) bool {
	return Privileged(role)
}

// CanMutateShift allows the shift's owner and any privileged role.
func CanMutateShift(role models.Role, callerID string, shift models.Shift) bool {
	return shift.UserID == callerID || Privileged(role)
}

// CanViewAggregate gates the all-users worked-minutes listing.
func CanViewAggregate(role models.Role) bool {
	return Privileged(role)
}

// CanDeleteUser gates account deletion.
func CanDeleteUser(role models.Role) bool {
	return role == models.RoleOwner
}
