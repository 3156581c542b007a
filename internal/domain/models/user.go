// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles. The role field is a closed discriminator: every user
// document is exactly one of these.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Admin capabilities. An admin's Permissions set holds zero or more of
// these tags; non-admin users never carry permissions.
const (
	CapCampusAdmin = "campus_admin"
	CapUserAdmin   = "user_admin"
	CapCourseAdmin = "course_admin"
	CapOrderAdmin  = "order_admin"
	CapSysOwner    = "sys_owner"
)

// User represents students, teachers, and admins in one collection.
//
// NOTE:
//   - PasswordHash never leaves the server; the json:"-" tag keeps it
//     out of every response body.
//   - EnrolledCourses is maintained only by the order-payment transition
//     (see orders), never by direct edit.
type User struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Username     string             `bson:"username" json:"username"`
	UsernameCI   string             `bson:"username_ci" json:"-"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	DisplayName  string             `bson:"display_name" json:"display_name"`
	Telephone    string             `bson:"telephone" json:"telephone"`
	Campus       primitive.ObjectID `bson:"campus" json:"campus"`
	Role         string             `bson:"role" json:"role"`

	// Student fields
	Wx              string               `bson:"wx,omitempty" json:"wx,omitempty"`
	Uni             string               `bson:"uni,omitempty" json:"uni,omitempty"`
	EnrolledCourses []primitive.ObjectID `bson:"enrolled_courses,omitempty" json:"enrolled_courses,omitempty"`

	// Teacher fields
	Abn string `bson:"abn,omitempty" json:"abn,omitempty"`

	// Admin fields
	Permissions []string `bson:"permissions,omitempty" json:"permissions,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the user is an admin.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsTeacher reports whether the user is a teacher.
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }

// IsStudent reports whether the user is a student.
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// HasCapability reports whether the user is an admin holding the named
// capability. Role checks throughout the app go through this and the Is*
// helpers rather than comparing discriminator strings at call sites.
func (u *User) HasCapability(cap string) bool {
	if u == nil || u.Role != RoleAdmin {
		return false
	}
	for _, p := range u.Permissions {
		if p == cap {
			return true
		}
	}
	return false
}

// ValidRole reports whether role is one of the closed role set.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}
