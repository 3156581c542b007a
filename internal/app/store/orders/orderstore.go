// internal/app/store/orders/orderstore.go
package orderstore

import (
	"context"
	"time"

	"github.com/campushub/campushub/internal/app/system/paging"
	"github.com/campushub/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("orders")}
}

// Create inserts a new order. OriginalPrice must already carry the
// course-price snapshot; Paid always starts false.
func (s *Store) Create(ctx context.Context, o models.Order) (models.Order, error) {
	now := time.Now().UTC()
	o.ID = primitive.NewObjectID()
	o.Paid = false
	o.PaidPrice = nil
	o.CreatedAt = now
	o.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, o); err != nil {
		return models.Order{}, err
	}
	return o, nil
}

// GetByID loads an order with no role scoping.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var o models.Order
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return models.Order{}, err
	}
	return o, nil
}

// GetScoped loads an order by id within the caller's visibility filter
// (built by orderpolicy). An order outside the scope reads as absent.
func (s *Store) GetScoped(ctx context.Context, id primitive.ObjectID, scope bson.M) (models.Order, error) {
	filter := bson.M{"_id": id}
	for k, v := range scope {
		filter[k] = v
	}
	var o models.Order
	if err := s.c.FindOne(ctx, filter).Decode(&o); err != nil {
		return models.Order{}, err
	}
	return o, nil
}

// List returns one fixed-size page of orders matching the filter, which
// already combines the caller's visibility scope with any request
// filters.
func (s *Store) List(ctx context.Context, filter bson.M, page int) ([]models.Order, error) {
	cur, err := s.c.Find(ctx, filter, paging.ApplyToFind(options.Find(), page))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Order
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteScoped removes an order visible to the caller. Returns the
// number of documents deleted (0 or 1).
func (s *Store) DeleteScoped(ctx context.Context, id primitive.ObjectID, scope bson.M) (int64, error) {
	filter := bson.M{"_id": id}
	for k, v := range scope {
		filter[k] = v
	}
	res, err := s.c.DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// UpdatePayment applies the payment fields (paid, paid_price) to the
// order. Only these two fields ever change after creation; the price
// snapshot is immutable. Returns the matched count.
func (s *Store) UpdatePayment(ctx context.Context, id primitive.ObjectID, paid bool, paidPrice int64) (int64, error) {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"paid":       paid,
		"paid_price": paidPrice,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}
