package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/phillip/culture-events-go/models"
	"github.com/phillip/culture-events-go/status"
	utils "github.com/phillip/culture-events-go/utils"
)

type TicketStore struct {
	col *mongo.Collection
	now Clock
}

func NewTicketStore(db *mongo.Database) *TicketStore {
	return &TicketStore{col: db.Collection(TicketsCollection), now: utcNow}
}

// newBatch builds quantity unused tickets for order, each with a fresh code
// and its QR image. Codes are distinct within the batch.
func (s *TicketStore) newBatch(order *models.Order, quantity int) ([]models.Ticket, error) {
	now := s.now()
	seen := make(map[string]bool, quantity)
	tickets := make([]models.Ticket, 0, quantity)
	for len(tickets) < quantity {
		code, err := utils.GenerateTicketCode(now)
		if err != nil {
			return nil, err
		}
		if seen[code] {
			continue
		}
		seen[code] = true

		qr, err := utils.EncodeQRDataURL(code)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, models.Ticket{
			ID:           primitive.NewObjectID(),
			TicketCode:   code,
			QRCode:       qr,
			OrderID:      order.ID,
			EventID:      order.EventID,
			TicketType:   order.TicketType,
			AttendeeName: order.Name,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return tickets, nil
}

func (s *TicketStore) insertMany(ctx context.Context, tickets []models.Ticket) error {
	docs := make([]any, len(tickets))
	for i := range tickets {
		docs[i] = tickets[i]
	}
	_, err := s.col.InsertMany(ctx, docs)
	return err
}

func (s *TicketStore) FindByOrder(ctx context.Context, orderID primitive.ObjectID) ([]models.Ticket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return findAll[models.Ticket](ctx, s.col, bson.M{"order_id": orderID}, opts)
}

func (s *TicketStore) FindByCode(ctx context.Context, code string) (*models.Ticket, error) {
	return findOne[models.Ticket](ctx, s.col, bson.M{"ticket_code": code})
}

// Lookup is the read-only preflight for the door scanner. A used ticket
// yields *status.AlreadyUsedError.
func (s *TicketStore) Lookup(ctx context.Context, code string) (*models.Ticket, error) {
	t, err := s.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if t.IsUsed {
		return t, alreadyUsed(t)
	}
	return t, nil
}

// CheckIn marks the ticket used in a single conditional update, so two
// scanners racing on the same code cannot both succeed.
func (s *TicketStore) CheckIn(ctx context.Context, code string) (*models.Ticket, error) {
	now := s.now()
	filter := bson.M{"ticket_code": code, "is_used": false}
	update := bson.M{"$set": bson.M{"is_used": true, "used_at": now, "updated_at": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var t models.Ticket
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&t)
	if err == nil {
		return &t, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("check in %s: %w", code, err)
	}

	existing, err := s.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return existing, alreadyUsed(existing)
}

func alreadyUsed(t *models.Ticket) error {
	e := &status.AlreadyUsedError{TicketCode: t.TicketCode}
	if t.UsedAt != nil {
		e.UsedAt = *t.UsedAt
	}
	return e
}

// Stats counts tickets of one event.
func (s *TicketStore) Stats(ctx context.Context, eventID primitive.ObjectID) (models.TicketStats, error) {
	var st models.TicketStats
	total, err := s.col.CountDocuments(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return st, fmt.Errorf("count tickets: %w", err)
	}
	used, err := s.col.CountDocuments(ctx, bson.M{"event_id": eventID, "is_used": true})
	if err != nil {
		return st, fmt.Errorf("count used tickets: %w", err)
	}
	st.Total = int(total)
	st.Used = int(used)
	st.Unused = st.Total - st.Used
	return st, nil
}
