// internal/app/store/campuses/campusstore.go
package campusstore

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

var ErrDuplicateName = errors.New("a campus with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("campuses")}
}

// GetByID loads a campus by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Campus, error) {
	var c models.Campus
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Campus{}, err
	}
	return c, nil
}

// NameExists reports whether a campus with the name already exists. The
// create path checks this pre-emptively and still relies on the unique
// index catch as the real guard.
func (s *Store) NameExists(ctx context.Context, name string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"name": normalize.Name(name)}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// Create inserts a new campus. Returns ErrDuplicateName when the unique
// name index rejects it.
func (s *Store) Create(ctx context.Context, c models.Campus) (models.Campus, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.Name = normalize.Name(c.Name)
	c.NameCI = text.Fold(c.Name)
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Campus{}, ErrDuplicateName
		}
		return models.Campus{}, err
	}
	return c, nil
}

// List returns all campuses sorted by name. The campus list is an open
// read with no role filter.
func (s *Store) List(ctx context.Context) ([]models.Campus, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Campus
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
