// Package orderpolicy provides authorization policies for orders.
//
// Authorization rules:
//   - Admins holding order_admin see and manage every order
//   - Everyone else sees only orders where they are the student
//   - Placing an order requires order_admin or ordering for oneself
package orderpolicy

import (
	"github.com/campushub/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ViewScope returns the filter fragment restricting order queries to
// what the principal may see. An empty map means unrestricted.
func ViewScope(principal *models.User) bson.M {
	if principal.HasCapability(models.CapOrderAdmin) {
		return bson.M{}
	}
	return bson.M{"student": principal.ID}
}

// CanPlaceFor reports whether the principal may place an order on behalf
// of the given student.
func CanPlaceFor(principal *models.User, studentID primitive.ObjectID) bool {
	if principal == nil {
		return false
	}
	if principal.HasCapability(models.CapOrderAdmin) {
		return true
	}
	return principal.ID == studentID
}
