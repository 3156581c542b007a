package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campushub/campushub/internal/app/system/authutil"
	"github.com/campushub/campushub/internal/domain/models"
)

// TestPassword is the plaintext behind every fixture user's hash.
const TestPassword = "correct horse battery staple"

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateCampus creates a test campus with the given name.
func (f *Fixtures) CreateCampus(ctx context.Context, name string) models.Campus {
	f.t.Helper()

	now := time.Now().UTC()
	campus := models.Campus{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("campuses").InsertOne(ctx, campus); err != nil {
		f.t.Fatalf("failed to create test campus: %v", err)
	}
	return campus
}

// CreateUser creates a test user with the given username and role,
// password TestPassword, belonging to the campus.
func (f *Fixtures) CreateUser(ctx context.Context, username, role string, campusID primitive.ObjectID) models.User {
	f.t.Helper()

	hash, err := authutil.HashPassword(TestPassword)
	if err != nil {
		f.t.Fatalf("failed to hash test password: %v", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		UsernameCI:   text.Fold(username),
		PasswordHash: hash,
		DisplayName:  "Test " + username,
		Campus:       campusID,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAdmin creates a test admin holding the given capabilities.
func (f *Fixtures) CreateAdmin(ctx context.Context, username string, campusID primitive.ObjectID, caps ...string) models.User {
	f.t.Helper()

	admin := f.CreateUser(ctx, username, models.RoleAdmin, campusID)
	if len(caps) > 0 {
		if _, err := f.db.Collection("users").UpdateByID(ctx, admin.ID,
			map[string]any{"$set": map[string]any{"permissions": caps}}); err != nil {
			f.t.Fatalf("failed to set test admin permissions: %v", err)
		}
		admin.Permissions = caps
	}
	return admin
}

// CreateCourse creates a test course taught by the teacher at the campus.
func (f *Fixtures) CreateCourse(ctx context.Context, campusID, teacherID primitive.ObjectID, price int64) models.Course {
	f.t.Helper()

	now := time.Now().UTC()
	course := models.Course{
		ID:            primitive.NewObjectID(),
		Campus:        campusID,
		Teacher:       teacherID,
		OriginalPrice: price,
		Description:   "test course",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := f.db.Collection("courses").InsertOne(ctx, course); err != nil {
		f.t.Fatalf("failed to create test course: %v", err)
	}
	return course
}

// CreateOrder creates an unpaid test order snapshotting the price.
func (f *Fixtures) CreateOrder(ctx context.Context, studentID, courseID primitive.ObjectID, price int64) models.Order {
	f.t.Helper()

	now := time.Now().UTC()
	order := models.Order{
		ID:            primitive.NewObjectID(),
		Student:       studentID,
		Course:        courseID,
		OriginalPrice: price,
		Paid:          false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := f.db.Collection("orders").InsertOne(ctx, order); err != nil {
		f.t.Fatalf("failed to create test order: %v", err)
	}
	return order
}
