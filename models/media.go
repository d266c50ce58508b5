package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Brand struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	LogoURL    string             `bson:"logo_url" json:"logo_url"`
	WebsiteURL string             `bson:"website_url,omitempty" json:"website_url,omitempty"`
	Order      int                `bson:"order" json:"order"`
	Active     bool               `bson:"active" json:"active"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// GalleryPhoto is an entry of the flat homepage gallery.
type GalleryPhoto struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ImageURL  string             `bson:"image_url" json:"image_url"`
	Caption   string             `bson:"caption,omitempty" json:"caption,omitempty"`
	Order     int                `bson:"order" json:"order"`
	Active    bool               `bson:"active" json:"active"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type GalleryTheme struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Slug          string             `bson:"slug" json:"slug"`
	CoverImageURL string             `bson:"cover_image_url,omitempty" json:"cover_image_url,omitempty"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Order         int                `bson:"order" json:"order"`
	Status        string             `bson:"status" json:"status"` // published, draft
	PhotoCount    int                `bson:"photo_count" json:"photo_count"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`

	Photos []ThemePhoto `bson:"-" json:"photos,omitempty"`
}

// ThemePhoto belongs to a GalleryTheme.
type ThemePhoto struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ThemeID   primitive.ObjectID `bson:"theme_id" json:"theme_id"`
	ImageURL  string             `bson:"image_url" json:"image_url"`
	Caption   string             `bson:"caption,omitempty" json:"caption,omitempty"`
	Order     int                `bson:"order" json:"order"`
	IsCover   bool               `bson:"is_cover" json:"is_cover"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type Setting struct {
	Key       string    `bson:"key" json:"key"`
	Value     any       `bson:"value" json:"value"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
