// internal/domain/models/order.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order is a student's purchase of a course. OriginalPrice is snapshotted
// from the course when the order is placed and never changes afterwards;
// only Paid and PaidPrice move post-creation. A paid order is what links
// the student into the course's enrolled set (and vice versa).
type Order struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Student       primitive.ObjectID `bson:"student" json:"student"`
	Course        primitive.ObjectID `bson:"course" json:"course"`
	OriginalPrice int64              `bson:"original_price" json:"original_price"`
	Paid          bool               `bson:"paid" json:"paid"`
	PaidPrice     *int64             `bson:"paid_price,omitempty" json:"paid_price,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
