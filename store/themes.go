package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/phillip/culture-events-go/models"
	"github.com/phillip/culture-events-go/status"
	utils "github.com/phillip/culture-events-go/utils"
)

const (
	ThemePublished = "published"
	ThemeDraft     = "draft"
)

// ThemeStore owns gallery themes and the photos filed under them.
type ThemeStore struct {
	col    *mongo.Collection
	photos *mongo.Collection
	now    Clock
}

func NewThemeStore(db *mongo.Database) *ThemeStore {
	return &ThemeStore{
		col:    db.Collection(ThemesCollection),
		photos: db.Collection(ThemePhotosCollection),
		now:    utcNow,
	}
}

type ThemePatch struct {
	Name          *string
	CoverImageURL *string
	Description   *string
	Order         *int
	Status        *string
}

func validThemeStatus(s string) bool {
	return s == ThemePublished || s == ThemeDraft
}

// themeSlug derives the slug from name and falls back to a timestamp suffix
// when another theme already owns it.
func (s *ThemeStore) themeSlug(ctx context.Context, name string, self primitive.ObjectID) (string, error) {
	slug := utils.Slugify(name)
	if slug == "" {
		return "", status.Invalid("name must contain letters or digits")
	}
	filter := bson.M{"slug": slug}
	if !self.IsZero() {
		filter["_id"] = bson.M{"$ne": self}
	}
	n, err := s.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return "", fmt.Errorf("check theme slug: %w", err)
	}
	if n > 0 {
		slug = fmt.Sprintf("%s-%d", slug, s.now().UnixMilli())
	}
	return slug, nil
}

func (s *ThemeStore) Create(ctx context.Context, t *models.GalleryTheme) error {
	if strings.TrimSpace(t.Name) == "" {
		return status.Invalid("name is required")
	}
	if t.Status == "" {
		t.Status = ThemeDraft
	}
	if !validThemeStatus(t.Status) {
		return status.Invalid("status must be %q or %q", ThemePublished, ThemeDraft)
	}
	slug, err := s.themeSlug(ctx, t.Name, primitive.NilObjectID)
	if err != nil {
		return err
	}

	now := s.now()
	t.ID = primitive.NewObjectID()
	t.Slug = slug
	t.PhotoCount = 0
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.col.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("theme slug %q: %w", slug, status.ErrConflict)
		}
		return fmt.Errorf("insert theme: %w", err)
	}
	return nil
}

func (s *ThemeStore) List(ctx context.Context, publishedOnly bool) ([]models.GalleryTheme, error) {
	filter := bson.M{}
	if publishedOnly {
		filter["status"] = ThemePublished
	}
	return findAll[models.GalleryTheme](ctx, s.col, filter, sortedByOrder())
}

func (s *ThemeStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.GalleryTheme, error) {
	return findOne[models.GalleryTheme](ctx, s.col, bson.M{"_id": id})
}

// GetBySlug loads the theme with its photos.
func (s *ThemeStore) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.GalleryTheme, error) {
	filter := bson.M{"slug": slug}
	if publishedOnly {
		filter["status"] = ThemePublished
	}
	t, err := findOne[models.GalleryTheme](ctx, s.col, filter)
	if err != nil {
		return nil, err
	}
	if t.Photos, err = s.ListPhotos(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

// Update renaming a theme regenerates its slug.
func (s *ThemeStore) Update(ctx context.Context, id primitive.ObjectID, p ThemePatch) error {
	set := bson.M{}
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return status.Invalid("name must not be empty")
		}
		slug, err := s.themeSlug(ctx, *p.Name, id)
		if err != nil {
			return err
		}
		set["name"] = *p.Name
		set["slug"] = slug
	}
	if p.CoverImageURL != nil {
		set["cover_image_url"] = *p.CoverImageURL
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Order != nil {
		set["order"] = *p.Order
	}
	if p.Status != nil {
		if !validThemeStatus(*p.Status) {
			return status.Invalid("status must be %q or %q", ThemePublished, ThemeDraft)
		}
		set["status"] = *p.Status
	}
	err := updateByID(ctx, s.col, id, set, s.now())
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("theme slug: %w", status.ErrConflict)
	}
	return err
}

// Delete removes the theme and every photo filed under it. The returned
// theme carries the removed photos.
func (s *ThemeStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.GalleryTheme, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Photos, err = s.ListPhotos(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.photos.DeleteMany(ctx, bson.M{"theme_id": id}); err != nil {
		return nil, fmt.Errorf("delete theme photos: %w", err)
	}
	if err := deleteByID(ctx, s.col, id); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *ThemeStore) ListPhotos(ctx context.Context, themeID primitive.ObjectID) ([]models.ThemePhoto, error) {
	return findAll[models.ThemePhoto](ctx, s.photos, bson.M{"theme_id": themeID}, sortedByOrder())
}

// AddPhotos appends photos after the theme's current ones.
func (s *ThemeStore) AddPhotos(ctx context.Context, themeID primitive.ObjectID, photos []models.ThemePhoto) ([]models.ThemePhoto, error) {
	if len(photos) == 0 {
		return nil, status.Invalid("at least one photo is required")
	}
	if _, err := s.GetByID(ctx, themeID); err != nil {
		return nil, err
	}
	next, err := s.nextPhotoOrder(ctx, themeID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	docs := make([]any, len(photos))
	for i := range photos {
		if strings.TrimSpace(photos[i].ImageURL) == "" {
			return nil, status.Invalid("photo %d: image_url is required", i+1)
		}
		photos[i].ID = primitive.NewObjectID()
		photos[i].ThemeID = themeID
		photos[i].Order = next + i
		photos[i].IsCover = false
		photos[i].CreatedAt = now
		photos[i].UpdatedAt = now
		docs[i] = photos[i]
	}
	if _, err := s.photos.InsertMany(ctx, docs); err != nil {
		return nil, fmt.Errorf("insert theme photos: %w", err)
	}
	if err := s.recount(ctx, themeID); err != nil {
		return nil, err
	}
	return photos, nil
}

// nextPhotoOrder is one past the highest order in the theme, so deletions
// that leave gaps never produce duplicates.
func (s *ThemeStore) nextPhotoOrder(ctx context.Context, themeID primitive.ObjectID) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "order", Value: -1}}).SetProjection(bson.M{"order": 1})
	last, err := findOne[models.ThemePhoto](ctx, s.photos, bson.M{"theme_id": themeID}, opts)
	if errors.Is(err, status.ErrNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return last.Order + 1, nil
}

// SetCover makes the photo its theme's only cover and copies its URL onto the theme.
func (s *ThemeStore) SetCover(ctx context.Context, photoID primitive.ObjectID) (*models.ThemePhoto, error) {
	photo, err := findOne[models.ThemePhoto](ctx, s.photos, bson.M{"_id": photoID})
	if err != nil {
		return nil, err
	}
	now := s.now()
	if _, err := s.photos.UpdateMany(ctx,
		bson.M{"theme_id": photo.ThemeID, "_id": bson.M{"$ne": photoID}},
		bson.M{"$set": bson.M{"is_cover": false, "updated_at": now}},
	); err != nil {
		return nil, fmt.Errorf("clear covers: %w", err)
	}
	if err := updateByID(ctx, s.photos, photoID, bson.M{"is_cover": true}, now); err != nil {
		return nil, err
	}
	if err := updateByID(ctx, s.col, photo.ThemeID, bson.M{"cover_image_url": photo.ImageURL}, now); err != nil {
		return nil, err
	}
	photo.IsCover = true
	return photo, nil
}

// Reorder assigns order 1..n following ids. Ids of other themes are ignored.
func (s *ThemeStore) Reorder(ctx context.Context, themeID primitive.ObjectID, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return status.Invalid("photo_ids must not be empty")
	}
	now := s.now()
	writes := make([]mongo.WriteModel, len(ids))
	for i, id := range ids {
		writes[i] = mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id, "theme_id": themeID}).
			SetUpdate(bson.M{"$set": bson.M{"order": i + 1, "updated_at": now}})
	}
	if _, err := s.photos.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("reorder theme photos: %w", err)
	}
	return nil
}

func (s *ThemeStore) DeletePhoto(ctx context.Context, photoID primitive.ObjectID) (*models.ThemePhoto, error) {
	photo, err := removeByID[models.ThemePhoto](ctx, s.photos, photoID)
	if err != nil {
		return nil, err
	}
	if photo.IsCover {
		if err := updateByID(ctx, s.col, photo.ThemeID, bson.M{"cover_image_url": ""}, s.now()); err != nil {
			return nil, err
		}
	}
	if err := s.recount(ctx, photo.ThemeID); err != nil {
		return nil, err
	}
	return photo, nil
}

func (s *ThemeStore) recount(ctx context.Context, themeID primitive.ObjectID) error {
	n, err := s.photos.CountDocuments(ctx, bson.M{"theme_id": themeID})
	if err != nil {
		return fmt.Errorf("count theme photos: %w", err)
	}
	return updateByID(ctx, s.col, themeID, bson.M{"photo_count": int(n)}, s.now())
}
