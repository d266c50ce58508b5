package store

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/phillip/culture-events-go/models"
	"github.com/phillip/culture-events-go/status"
)

type NewsletterStore struct {
	col *mongo.Collection
	now Clock
}

func NewNewsletterStore(db *mongo.Database) *NewsletterStore {
	return &NewsletterStore{col: db.Collection(NewsletterCollection), now: utcNow}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return "", status.Invalid("a valid email is required")
	}
	return email, nil
}

// Subscribe reports false when the address is already an active subscriber.
// An unsubscribed address is reactivated in place.
func (s *NewsletterStore) Subscribe(ctx context.Context, email string) (bool, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return false, err
	}
	now := s.now()

	res, err := s.col.UpdateOne(ctx,
		bson.M{"email": email, "active": false},
		bson.M{
			"$set":   bson.M{"active": true, "subscribed_at": now},
			"$unset": bson.M{"unsubscribed_at": ""},
		},
	)
	if err != nil {
		return false, fmt.Errorf("reactivate subscriber: %w", err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	sub := models.NewsletterSubscriber{
		ID:           primitive.NewObjectID(),
		Email:        email,
		Active:       true,
		SubscribedAt: now,
	}
	if _, err := s.col.InsertOne(ctx, sub); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert subscriber: %w", err)
	}
	return true, nil
}

func (s *NewsletterStore) Unsubscribe(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	now := s.now()
	res, err := s.col.UpdateOne(ctx,
		bson.M{"email": email, "active": true},
		bson.M{"$set": bson.M{"active": false, "unsubscribed_at": now}},
	)
	if err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	if res.MatchedCount == 0 {
		return status.ErrNotFound
	}
	return nil
}

func (s *NewsletterStore) List(ctx context.Context, activeOnly bool) ([]models.NewsletterSubscriber, error) {
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "subscribed_at", Value: -1}})
	return findAll[models.NewsletterSubscriber](ctx, s.col, filter, opts)
}
