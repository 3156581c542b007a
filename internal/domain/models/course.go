// internal/domain/models/course.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LectureAttachment is a file stored in object storage and embedded in
// its lecture. Attachments are addressed by filename within the lecture.
type LectureAttachment struct {
	Name      string `bson:"name" json:"name"`
	Filename  string `bson:"filename" json:"filename"`
	Type      string `bson:"type" json:"type"`
	BucketURL string `bson:"bucket_url" json:"bucket_url"`
}

// Lecture is embedded in its course and addressed by its id within the
// course's ordered lecture list. It has no independent identity.
type Lecture struct {
	ID          string              `bson:"id" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Attachments []LectureAttachment `bson:"attachments,omitempty" json:"attachments,omitempty"`
}

// Course is offered at a campus by one teacher. Lectures and their
// attachments live inline on the course document; enrollment is the
// mutual link with Student.EnrolledCourses maintained by order payment.
type Course struct {
	ID               primitive.ObjectID   `bson:"_id" json:"id"`
	Campus           primitive.ObjectID   `bson:"campus" json:"campus"`
	Teacher          primitive.ObjectID   `bson:"teacher" json:"teacher"`
	OriginalPrice    int64                `bson:"original_price" json:"original_price"`
	Description      string               `bson:"description,omitempty" json:"description,omitempty"`
	CoverImage       string               `bson:"cover_image,omitempty" json:"cover_image,omitempty"`
	EnrolledStudents []primitive.ObjectID `bson:"enrolled_students,omitempty" json:"enrolled_students,omitempty"`
	Lectures         []Lecture            `bson:"lectures,omitempty" json:"lectures,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasCover reports whether a cover image has been uploaded for the course.
func (c *Course) HasCover() bool { return c.CoverImage != "" }

// FindLecture returns the lecture with the given id, or nil.
func (c *Course) FindLecture(lectureID string) *Lecture {
	for i := range c.Lectures {
		if c.Lectures[i].ID == lectureID {
			return &c.Lectures[i]
		}
	}
	return nil
}
