package userpolicy

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campushub/campushub/internal/domain/models"
)

func admin(caps ...string) *models.User {
	return &models.User{ID: primitive.NewObjectID(), Username: "boss", Role: models.RoleAdmin, Permissions: caps}
}

func TestCanAccessUser(t *testing.T) {
	self := &models.User{ID: primitive.NewObjectID(), Username: "jsmith", Role: models.RoleStudent}

	if !CanAccessUser(self, "jsmith") {
		t.Error("self access denied")
	}
	if CanAccessUser(self, "someone-else") {
		t.Error("student allowed to access another user")
	}
	if !CanAccessUser(admin(models.CapUserAdmin), "jsmith") {
		t.Error("user_admin denied access")
	}
	if CanAccessUser(admin(models.CapCourseAdmin), "jsmith") {
		t.Error("admin without user_admin allowed access")
	}
	if CanAccessUser(nil, "jsmith") {
		t.Error("anonymous allowed access")
	}
}

func TestCanChangePermissions(t *testing.T) {
	if !CanChangePermissions(admin(models.CapSysOwner)) {
		t.Error("sys_owner denied permission change")
	}
	if CanChangePermissions(admin(models.CapUserAdmin)) {
		t.Error("user_admin allowed permission change")
	}
	if CanChangePermissions(&models.User{Role: models.RoleStudent}) {
		t.Error("student allowed permission change")
	}
	if CanChangePermissions(nil) {
		t.Error("anonymous allowed permission change")
	}
}
