// internal/app/store/courses/coursestore.go
//
// Lectures and attachments are embedded documents on the course, so all
// of their operations are single-document array updates ($push, $pull,
// positional $set). The database's single-document atomicity is the only
// locking involved.
package coursestore

import (
	"context"
	"time"

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
	return &Store{c: db.Collection("courses")}
}

// GetByID loads a course by ObjectID with no role scoping.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Course, error) {
	var c models.Course
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Course{}, err
	}
	return c, nil
}

// GetScoped loads a course by id within the caller's visibility filter
// (built by coursepolicy). A course outside the scope reads as absent.
func (s *Store) GetScoped(ctx context.Context, id primitive.ObjectID, scope bson.M) (models.Course, error) {
	filter := bson.M{"_id": id}
	for k, v := range scope {
		filter[k] = v
	}
	var c models.Course
	if err := s.c.FindOne(ctx, filter).Decode(&c); err != nil {
		return models.Course{}, err
	}
	return c, nil
}

// Create inserts a new course. The cover image is attached afterwards
// with SetCoverImage because its storage path embeds the generated id.
func (s *Store) Create(ctx context.Context, c models.Course) (models.Course, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Course{}, err
	}
	return c, nil
}

// SetCoverImage stores the uploaded cover's storage key on the course.
func (s *Store) SetCoverImage(ctx context.Context, id primitive.ObjectID, key string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"cover_image": key,
		"updated_at":  time.Now().UTC(),
	}})
	return err
}

// List returns courses with optional campus/teacher equality filters.
// The list read is unscoped by role.
func (s *Store) List(ctx context.Context, campus, teacher *primitive.ObjectID) ([]models.Course, error) {
	filter := bson.M{}
	if campus != nil {
		filter["campus"] = *campus
	}
	if teacher != nil {
		filter["teacher"] = *teacher
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Course
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies a partial $set update. An empty set map is a no-op.
// Returns the matched count.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (int64, error) {
	if len(set) == 0 {
		return 1, nil
	}
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// Delete removes the course document. Enrollment cleanup on the student
// side happens first, in the feature layer.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AddEnrolledStudent adds the student to the course's enrolled set.
// Idempotent via $addToSet.
func (s *Store) AddEnrolledStudent(ctx context.Context, courseID, studentID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, courseID,
		bson.M{"$addToSet": bson.M{"enrolled_students": studentID}},
	)
	return err
}

// AddLecture appends the lecture to the course's ordered lecture list.
// Returns the matched count (0 when the course is absent).
func (s *Store) AddLecture(ctx context.Context, courseID primitive.ObjectID, lec models.Lecture) (int64, error) {
	res, err := s.c.UpdateByID(ctx, courseID, bson.M{
		"$push": bson.M{"lectures": lec},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// DeleteLecture pulls the lecture with the id from the course. A missing
// lecture id is a quiet no-op (modified count 0).
func (s *Store) DeleteLecture(ctx context.Context, courseID primitive.ObjectID, lectureID string) (int64, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": courseID},
		bson.M{"$pull": bson.M{"lectures": bson.M{"id": lectureID}}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// UpdateLecture applies a positional $set to the lecture matched by id.
// A missing lecture id is a quiet no-op (matched count 0).
func (s *Store) UpdateLecture(ctx context.Context, courseID primitive.ObjectID, lectureID string, fields bson.M) (int64, error) {
	if len(fields) == 0 {
		return 1, nil
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set["lectures.$."+k] = v
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": courseID, "lectures.id": lectureID},
		bson.M{"$set": set},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// AddAttachment appends an attachment to the lecture matched by id.
// Returns the matched count (0 when course or lecture is absent).
func (s *Store) AddAttachment(ctx context.Context, courseID primitive.ObjectID, lectureID string, att models.LectureAttachment) (int64, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": courseID, "lectures.id": lectureID},
		bson.M{
			"$push": bson.M{"lectures.$.attachments": att},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// DeleteAttachments pulls every attachment with the filename from the
// lecture matched by id.
func (s *Store) DeleteAttachments(ctx context.Context, courseID primitive.ObjectID, lectureID, filename string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": courseID, "lectures.id": lectureID},
		bson.M{
			"$pull": bson.M{"lectures.$.attachments": bson.M{"filename": filename}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}
