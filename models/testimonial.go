package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequiredRating is the only rating the public form accepts.
const RequiredRating = 5

type Testimonial struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"-"`
	EventAttended string             `bson:"event_attended" json:"event_attended"`
	Rating        int                `bson:"rating" json:"rating"`
	Testimonial   string             `bson:"testimonial" json:"testimonial"`
	City          string             `bson:"city,omitempty" json:"city,omitempty"`
	Approved      bool               `bson:"approved" json:"approved"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

type RatingSummary struct {
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int     `json:"total_ratings"`
}
