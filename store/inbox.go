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

func validateSender(name, email, message string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return status.Invalid("name is required")
	case !strings.Contains(email, "@"):
		return status.Invalid("a valid email is required")
	case strings.TrimSpace(message) == "":
		return status.Invalid("message is required")
	}
	return nil
}

// ---------------- PARTNERS ----------------

type PartnerStore struct {
	col *mongo.Collection
	now Clock
}

func NewPartnerStore(db *mongo.Database) *PartnerStore {
	return &PartnerStore{col: db.Collection(PartnersCollection), now: utcNow}
}

func (s *PartnerStore) Create(ctx context.Context, p *models.Partner) error {
	if err := validateSender(p.Name, p.Email, p.Message); err != nil {
		return err
	}
	now := s.now()
	p.ID = primitive.NewObjectID()
	p.Replied = false
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.col.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert partner: %w", err)
	}
	return nil
}

func (s *PartnerStore) List(ctx context.Context) ([]models.Partner, error) {
	return findAll[models.Partner](ctx, s.col, bson.M{}, newestFirst())
}

func (s *PartnerStore) SetReplied(ctx context.Context, id primitive.ObjectID, replied bool) error {
	return updateByID(ctx, s.col, id, bson.M{"replied": replied}, s.now())
}

func (s *PartnerStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col, id)
}

// ---------------- CONTACTS ----------------

type ContactStore struct {
	col *mongo.Collection
	now Clock
}

func NewContactStore(db *mongo.Database) *ContactStore {
	return &ContactStore{col: db.Collection(ContactsCollection), now: utcNow}
}

func (s *ContactStore) Create(ctx context.Context, c *models.Contact) error {
	if err := validateSender(c.Name, c.Email, c.Message); err != nil {
		return err
	}
	now := s.now()
	c.ID = primitive.NewObjectID()
	c.Read = false
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.col.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (s *ContactStore) List(ctx context.Context) ([]models.Contact, error) {
	return findAll[models.Contact](ctx, s.col, bson.M{}, newestFirst())
}

func (s *ContactStore) SetRead(ctx context.Context, id primitive.ObjectID, read bool) error {
	return updateByID(ctx, s.col, id, bson.M{"read": read}, s.now())
}

func (s *ContactStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col, id)
}
