package store

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/phillip/culture-events-go/models"
	"github.com/phillip/culture-events-go/status"
)

const defaultTestimonialLimit = 6

type TestimonialStore struct {
	col *mongo.Collection
	now Clock
}

func NewTestimonialStore(db *mongo.Database) *TestimonialStore {
	return &TestimonialStore{col: db.Collection(TestimonialCollection), now: utcNow}
}

// ValidateTestimonial checks a public submission before it is stored.
func ValidateTestimonial(t *models.Testimonial) error {
	switch {
	case strings.TrimSpace(t.Name) == "":
		return status.Invalid("name is required")
	case !strings.Contains(t.Email, "@"):
		return status.Invalid("a valid email is required")
	case strings.TrimSpace(t.EventAttended) == "":
		return status.Invalid("event_attended is required")
	case strings.TrimSpace(t.Testimonial) == "":
		return status.Invalid("testimonial is required")
	case t.Rating != models.RequiredRating:
		return status.Invalid("only 5-star reviews are accepted")
	}
	return nil
}

// Create stores an unapproved testimonial.
func (s *TestimonialStore) Create(ctx context.Context, t *models.Testimonial) error {
	t.Email = strings.ToLower(strings.TrimSpace(t.Email))
	if err := ValidateTestimonial(t); err != nil {
		return err
	}
	now := s.now()
	t.ID = primitive.NewObjectID()
	t.Approved = false
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.col.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("insert testimonial: %w", err)
	}
	return nil
}

// SubmittedSince reports whether email already submitted after since.
func (s *TestimonialStore) SubmittedSince(ctx context.Context, email string, since time.Time) (bool, error) {
	filter := bson.M{
		"email":      strings.ToLower(strings.TrimSpace(email)),
		"created_at": bson.M{"$gt": since},
	}
	n, err := s.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count testimonials: %w", err)
	}
	return n > 0, nil
}

func (s *TestimonialStore) Approve(ctx context.Context, id primitive.ObjectID) error {
	return updateByID(ctx, s.col, id, bson.M{"approved": true}, s.now())
}

// Delete also serves as reject.
func (s *TestimonialStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col, id)
}

// ListApproved returns the newest approved testimonials.
func (s *TestimonialStore) ListApproved(ctx context.Context, limit int) ([]models.Testimonial, error) {
	if limit <= 0 {
		limit = defaultTestimonialLimit
	}
	opts := newestFirst().SetLimit(int64(limit))
	return findAll[models.Testimonial](ctx, s.col, bson.M{"approved": true}, opts)
}

func (s *TestimonialStore) ListAll(ctx context.Context) ([]models.Testimonial, error) {
	return findAll[models.Testimonial](ctx, s.col, bson.M{}, newestFirst())
}

// ListPending returns submissions awaiting moderation.
func (s *TestimonialStore) ListPending(ctx context.Context) ([]models.Testimonial, error) {
	return findAll[models.Testimonial](ctx, s.col, bson.M{"approved": false}, newestFirst())
}

// AverageRating is rounded to one decimal and is 5.0 when nothing is approved yet.
func (s *TestimonialStore) AverageRating(ctx context.Context) (models.RatingSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"approved": true}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$rating"}, "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingSummary{}, fmt.Errorf("average rating: %w", err)
	}
	var rows []struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return models.RatingSummary{}, fmt.Errorf("decode average rating: %w", err)
	}
	if len(rows) == 0 || rows[0].Count == 0 {
		return models.RatingSummary{AverageRating: 5.0}, nil
	}
	return models.RatingSummary{
		AverageRating: math.Round(rows[0].Avg*10) / 10,
		TotalRatings:  rows[0].Count,
	}, nil
}

// Distribution counts approved testimonials per star, 1 through 5.
func (s *TestimonialStore) Distribution(ctx context.Context) (map[int]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"approved": true}}},
		{{Key: "$group", Value: bson.M{"_id": "$rating", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("rating distribution: %w", err)
	}
	var rows []struct {
		Rating int `bson:"_id"`
		Count  int `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode rating distribution: %w", err)
	}
	dist := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range rows {
		dist[r.Rating] = r.Count
	}
	return dist, nil
}
