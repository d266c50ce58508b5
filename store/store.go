// Package store wraps the MongoDB collections behind one accessor per resource.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phillip/culture-events-go/status"
)

const (
	EventsCollection      = "events"
	OrdersCollection      = "orders"
	TicketsCollection     = "tickets"
	TestimonialCollection = "testimonials"
	TeamCollection        = "team_members"
	PartnersCollection    = "partners"
	ContactsCollection    = "contacts"
	BrandsCollection      = "brands"
	GalleryCollection     = "gallery"
	ThemesCollection      = "gallery_themes"
	ThemePhotosCollection = "gallery_photos"
	NewsletterCollection  = "newsletter_subscribers"
	SettingsCollection    = "site_settings"
)

// Clock is swapped in tests.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// Store groups every accessor over one database.
type Store struct {
	Events       *EventStore
	Orders       *OrderStore
	Tickets      *TicketStore
	Testimonials *TestimonialStore
	Team         *TeamStore
	Partners     *PartnerStore
	Contacts     *ContactStore
	Brands       *BrandStore
	Gallery      *GalleryStore
	Themes       *ThemeStore
	Newsletter   *NewsletterStore
	Settings     *SettingsStore
}

// New builds all accessors. useTransactions selects the transactional order
// write; standalone servers must pass false.
func New(db *mongo.Database, useTransactions bool) *Store {
	tickets := NewTicketStore(db)
	return &Store{
		Events:       NewEventStore(db),
		Orders:       NewOrderStore(db, tickets, useTransactions),
		Tickets:      tickets,
		Testimonials: NewTestimonialStore(db),
		Team:         NewTeamStore(db),
		Partners:     NewPartnerStore(db),
		Contacts:     NewContactStore(db),
		Brands:       NewBrandStore(db),
		Gallery:      NewGalleryStore(db),
		Themes:       NewThemeStore(db),
		Newsletter:   NewNewsletterStore(db),
		Settings:     NewSettingsStore(db),
	}
}

var indexes = map[string][]mongo.IndexModel{
	EventsCollection: {
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "start_date_time", Value: 1}}},
	},
	OrdersCollection: {
		{Keys: bson.D{{Key: "order_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "idempotency_key", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "status", Value: 1}}},
	},
	TicketsCollection: {
		{Keys: bson.D{{Key: "ticket_code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "order_id", Value: 1}}},
		{Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "is_used", Value: 1}}},
	},
	TestimonialCollection: {
		{Keys: bson.D{{Key: "approved", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "created_at", Value: -1}}},
	},
	NewsletterCollection: {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	SettingsCollection: {
		{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	ThemesCollection: {
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	ThemePhotosCollection: {
		{Keys: bson.D{{Key: "theme_id", Value: 1}, {Key: "order", Value: 1}}},
	},
}

// EnsureIndexes creates the indexes the stores rely on for uniqueness.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, specs := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// findAll never returns a nil slice so empty lists encode as [].
func findAll[T any](ctx context.Context, col *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", col.Name(), err)
	}
	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", col.Name(), err)
	}
	return out, nil
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter any, opts ...*options.FindOneOptions) (*T, error) {
	var out T
	err := col.FindOne(ctx, filter, opts...).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, status.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", col.Name(), err)
	}
	return &out, nil
}

// updateByID applies $set and stamps updated_at.
func updateByID(ctx context.Context, col *mongo.Collection, id primitive.ObjectID, set bson.M, now time.Time) error {
	if len(set) == 0 {
		return status.Invalid("no fields to update")
	}
	set["updated_at"] = now
	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update %s: %w", col.Name(), err)
	}
	if res.MatchedCount == 0 {
		return status.ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, col *mongo.Collection, id primitive.ObjectID) error {
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", col.Name(), err)
	}
	if res.DeletedCount == 0 {
		return status.ErrNotFound
	}
	return nil
}

// removeByID deletes the document and returns it, so callers can release
// what it referenced.
func removeByID[T any](ctx context.Context, col *mongo.Collection, id primitive.ObjectID) (*T, error) {
	var out T
	err := col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, status.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete %s: %w", col.Name(), err)
	}
	return &out, nil
}

// sortedByOrder lists by the explicit order field, oldest first on ties.
func sortedByOrder() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "created_at", Value: 1}})
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
}
