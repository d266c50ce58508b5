package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Partner is a partnership enquiry sent from the public site.
type Partner struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"`
	Phone           string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Company         string             `bson:"company,omitempty" json:"company,omitempty"`
	PartnershipType string             `bson:"partnership_type,omitempty" json:"partnership_type,omitempty"`
	Message         string             `bson:"message" json:"message"`
	Replied         bool               `bson:"replied" json:"replied"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

type Contact struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Subject   string             `bson:"subject,omitempty" json:"subject,omitempty"`
	Message   string             `bson:"message" json:"message"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type NewsletterSubscriber struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email          string             `bson:"email" json:"email"`
	Active         bool               `bson:"active" json:"active"`
	SubscribedAt   time.Time          `bson:"subscribed_at" json:"subscribed_at"`
	UnsubscribedAt *time.Time         `bson:"unsubscribed_at,omitempty" json:"unsubscribed_at,omitempty"`
}
