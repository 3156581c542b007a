// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent;
errors are aggregated so every problem is visible and startup fails fast.

The unique indexes back the duplicate-record guards: stores rely on the
server rejecting duplicate usernames and campus names rather than
read-then-write checks alone.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureCampuses(ctx, db); err != nil {
		problems = append(problems, "campuses: "+err.Error())
	}
	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureCourses(ctx, db); err != nil {
		problems = append(problems, "courses: "+err.Error())
	}
	if err := ensureOrders(ctx, db); err != nil {
		problems = append(problems, "orders: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureCampuses(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("campuses").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_name"),
		},
	})
	return ignoreConflict(err)
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_username"),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "campus", Value: 1}},
			Options: options.Index().SetName("role_campus"),
		},
	})
	return ignoreConflict(err)
}

func ensureCourses(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("courses").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "campus", Value: 1}},
			Options: options.Index().SetName("campus"),
		},
		{
			Keys:    bson.D{{Key: "teacher", Value: 1}},
			Options: options.Index().SetName("teacher"),
		},
		{
			Keys:    bson.D{{Key: "enrolled_students", Value: 1}},
			Options: options.Index().SetName("enrolled_students"),
		},
	})
	return ignoreConflict(err)
}

func ensureOrders(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("orders").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "student", Value: 1}},
			Options: options.Index().SetName("student"),
		},
		{
			Keys:    bson.D{{Key: "course", Value: 1}},
			Options: options.Index().SetName("course"),
		},
		{
			Keys:    bson.D{{Key: "paid", Value: 1}},
			Options: options.Index().SetName("paid"),
		},
	})
	return ignoreConflict(err)
}

// Mongo/DocDB returns IndexOptionsConflict when an index with the same
// keys already exists under a different name or with different options.
// First deploys on existing data may hit this; it is not fatal.
func ignoreConflict(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "IndexOptionsConflict") {
		return nil
	}
	return err
}
