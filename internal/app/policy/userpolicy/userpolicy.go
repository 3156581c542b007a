// Package userpolicy provides authorization policies for user records.
//
// Authorization rules:
//   - Admins holding user_admin can read, update, and delete any user
//   - Every principal can read, update, and delete their own record
//   - Only sys_owner admins may change another user's permissions set;
//     for everyone else the field is silently dropped from updates
package userpolicy

import (
	"github.com/campushub/campushub/internal/domain/models"
)

// CanAccessUser reports whether the principal may read, update, or
// delete the record with the given username.
func CanAccessUser(principal *models.User, username string) bool {
	if principal == nil {
		return false
	}
	if principal.Username == username {
		return true
	}
	return principal.HasCapability(models.CapUserAdmin)
}

// CanChangePermissions reports whether the principal may alter a
// permissions set. This is the privilege-escalation guard: self-updates
// and user_admin updates never carry permission changes.
func CanChangePermissions(principal *models.User) bool {
	return principal.HasCapability(models.CapSysOwner)
}
