// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/campushub/campushub/internal/app/system/normalize"
	"github.com/campushub/campushub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	// ErrDuplicateUsername is returned when a username already exists.
	ErrDuplicateUsername = errors.New("a user with this username already exists")
	errBadRole           = errors.New(`role must be "student"|"teacher"|"admin"`)
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsername loads a user by exact username. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"username": normalize.Username(username)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing and validating fields.
// The password must already be hashed by the caller.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Username = normalize.Username(u.Username)
	u.UsernameCI = text.Fold(u.Username)
	u.DisplayName = normalize.Name(u.DisplayName)
	u.Telephone = normalize.Phone(u.Telephone)

	if !models.ValidRole(u.Role) {
		return models.User{}, errBadRole
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, err
	}
	return u, nil
}

// List returns users, optionally filtered by role and/or campus.
func (s *Store) List(ctx context.Context, role string, campus *primitive.ObjectID) ([]models.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	if campus != nil {
		filter["campus"] = *campus
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "username_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies a partial $set update to the user with the username.
// Only the provided fields change. Returns the matched count so callers
// can distinguish a missing user.
func (s *Store) Update(ctx context.Context, username string, set bson.M) (int64, error) {
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"username": normalize.Username(username)},
		bson.M{"$set": set},
	)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return 0, ErrDuplicateUsername
		}
		return 0, err
	}
	return res.MatchedCount, nil
}

// Delete hard-deletes a user by username. Returns the number of
// documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, username string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"username": normalize.Username(username)})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AddEnrolledCourse adds the course to the student's enrolled set.
// $addToSet keeps the operation idempotent; repeating it after a partial
// payment retry leaves exactly one copy.
func (s *Store) AddEnrolledCourse(ctx context.Context, studentID, courseID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": studentID, "role": models.RoleStudent},
		bson.M{"$addToSet": bson.M{"enrolled_courses": courseID}},
	)
	return err
}

// PullEnrolledCourse removes the course from every student's enrolled
// set. Called during course deletion, before the course document goes.
func (s *Store) PullEnrolledCourse(ctx context.Context, courseID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"enrolled_courses": courseID},
		bson.M{"$pull": bson.M{"enrolled_courses": courseID}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Fetcher adapts the store to the auth middleware's per-request user
// lookup so role and permission changes take effect immediately.
type Fetcher struct {
	store *Store
}

func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{store: New(db)}
}

func (f *Fetcher) FetchUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return f.store.GetByID(ctx, id)
}
