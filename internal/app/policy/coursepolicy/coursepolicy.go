// Package coursepolicy provides the role-scoped visibility filter for
// single-course reads and mutations.
//
// Authorization rules:
//   - Admins holding course_admin see every course
//   - Teachers see courses where they are the assigned teacher
//   - Everyone else (students) sees courses they are enrolled in
//
// Note: the course LIST endpoint is intentionally unscoped, matching the
// platform's existing behavior; only by-id access applies this scope.
package coursepolicy

import (
	"github.com/campushub/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// ViewScope returns the filter fragment restricting course queries to
// what the principal may see. An empty map means unrestricted.
func ViewScope(principal *models.User) bson.M {
	if principal.HasCapability(models.CapCourseAdmin) {
		return bson.M{}
	}
	if principal.IsTeacher() {
		return bson.M{"teacher": principal.ID}
	}
	return bson.M{"enrolled_students": principal.ID}
}
