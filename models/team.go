package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TeamLeadership = "leadership"
	TeamCity       = "city"
)

type TeamMember struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Designation string             `bson:"designation,omitempty" json:"designation,omitempty"`
	Role        string             `bson:"role,omitempty" json:"role,omitempty"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	LinkedIn    string             `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Instagram   string             `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Bio         string             `bson:"bio,omitempty" json:"bio,omitempty"`
	City        string             `bson:"city,omitempty" json:"city,omitempty"`
	Type        string             `bson:"type" json:"type"` // leadership, city
	Order       int                `bson:"order" json:"order"`
	IsActive    bool               `bson:"is_active" json:"is_active"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
