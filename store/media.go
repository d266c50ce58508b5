package store

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	models "github.com/phillip/culture-events-go/models"
	"github.com/phillip/culture-events-go/status"
)

// ---------------- BRANDS ----------------

type BrandStore struct {
	col *mongo.Collection
	now Clock
}

func NewBrandStore(db *mongo.Database) *BrandStore {
	return &BrandStore{col: db.Collection(BrandsCollection), now: utcNow}
}

func (s *BrandStore) Create(ctx context.Context, b *models.Brand) error {
	if strings.TrimSpace(b.Name) == "" {
		return status.Invalid("name is required")
	}
	if strings.TrimSpace(b.LogoURL) == "" {
		return status.Invalid("logo_url is required")
	}
	now := s.now()
	b.ID = primitive.NewObjectID()
	b.CreatedAt = now
	b.UpdatedAt = now
	if _, err := s.col.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("insert brand: %w", err)
	}
	return nil
}

// List returns all brands, or only active ones for the public site.
func (s *BrandStore) List(ctx context.Context, activeOnly bool) ([]models.Brand, error) {
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	return findAll[models.Brand](ctx, s.col, filter, sortedByOrder())
}

func (s *BrandStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	return updateByID(ctx, s.col, id, set, s.now())
}

func (s *BrandStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Brand, error) {
	return removeByID[models.Brand](ctx, s.col, id)
}

// ---------------- GALLERY ----------------

// GalleryStore holds the flat homepage gallery.
type GalleryStore struct {
	col *mongo.Collection
	now Clock
}

func NewGalleryStore(db *mongo.Database) *GalleryStore {
	return &GalleryStore{col: db.Collection(GalleryCollection), now: utcNow}
}

func (s *GalleryStore) Create(ctx context.Context, p *models.GalleryPhoto) error {
	if strings.TrimSpace(p.ImageURL) == "" {
		return status.Invalid("image_url is required")
	}
	now := s.now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.col.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert gallery photo: %w", err)
	}
	return nil
}

func (s *GalleryStore) List(ctx context.Context, activeOnly bool) ([]models.GalleryPhoto, error) {
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	return findAll[models.GalleryPhoto](ctx, s.col, filter, sortedByOrder())
}

func (s *GalleryStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	return updateByID(ctx, s.col, id, set, s.now())
}

func (s *GalleryStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.GalleryPhoto, error) {
	return removeByID[models.GalleryPhoto](ctx, s.col, id)
}
