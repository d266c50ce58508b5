package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phillip/culture-events-go/logger"
	models "github.com/phillip/culture-events-go/models"
	"github.com/phillip/culture-events-go/status"
	utils "github.com/phillip/culture-events-go/utils"
)

const (
	// MaxTicketsPerOrder caps a single purchase.
	MaxTicketsPerOrder = 20

	maxIssueAttempts = 3
)

type OrderStore struct {
	col          *mongo.Collection
	tickets      *TicketStore
	transactions bool
	now          Clock
}

func NewOrderStore(db *mongo.Database, tickets *TicketStore, useTransactions bool) *OrderStore {
	return &OrderStore{
		col:          db.Collection(OrdersCollection),
		tickets:      tickets,
		transactions: useTransactions,
		now:          utcNow,
	}
}

type OrderFilter struct {
	EventID primitive.ObjectID
	Status  string
}

func validateOrder(o *models.Order) error {
	switch {
	case o.EventID.IsZero():
		return status.Invalid("event_id is required")
	case !strings.Contains(o.Email, "@"):
		return status.Invalid("a valid email is required")
	case strings.TrimSpace(o.Name) == "":
		return status.Invalid("name is required")
	case strings.TrimSpace(o.TicketType) == "":
		return status.Invalid("ticket_type is required")
	case o.Quantity < 1 || o.Quantity > MaxTicketsPerOrder:
		return status.Invalid("quantity must be between 1 and %d", MaxTicketsPerOrder)
	case o.TotalAmount.IsNegative():
		return status.Invalid("total_amount must not be negative")
	}
	return nil
}

// CreateWithTickets writes a pending order and exactly o.Quantity tickets.
// When o.IdempotencyKey matches an earlier order for the same purchase, that
// order and its tickets are returned with replayed set and nothing is written.
// A key already used for a different purchase yields ErrConflict.
func (s *OrderStore) CreateWithTickets(ctx context.Context, o *models.Order) ([]models.Ticket, bool, error) {
	o.Email = strings.ToLower(strings.TrimSpace(o.Email))
	if err := validateOrder(o); err != nil {
		return nil, false, err
	}

	if o.IdempotencyKey != "" {
		prev, prevTickets, err := s.replay(ctx, o)
		if err == nil {
			*o = *prev
			return prevTickets, true, nil
		}
		if !errors.Is(err, status.ErrNotFound) {
			return nil, false, err
		}
	}

	var lastErr error
	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		if err := s.prepare(o); err != nil {
			return nil, false, err
		}
		tickets, err := s.tickets.newBatch(o, o.Quantity)
		if err != nil {
			return nil, false, err
		}

		err = s.write(ctx, o, tickets)
		if err == nil {
			return tickets, false, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, false, err
		}
		if o.IdempotencyKey != "" && strings.Contains(err.Error(), "idempotency_key") {
			prev, prevTickets, rerr := s.replay(ctx, o)
			if rerr != nil {
				return nil, false, rerr
			}
			*o = *prev
			return prevTickets, true, nil
		}
		logger.Log.Warn("[orders] duplicate code on insert, retrying", "attempt", attempt, "error", err)
		lastErr = err
	}
	return nil, false, fmt.Errorf("issue tickets after %d attempts: %w", maxIssueAttempts, lastErr)
}

func (s *OrderStore) prepare(o *models.Order) error {
	now := s.now()
	number, err := utils.GenerateOrderNumber(now)
	if err != nil {
		return err
	}
	o.ID = primitive.NewObjectID()
	o.OrderNumber = number
	o.Status = models.OrderPending
	o.CompletedAt = nil
	o.CreatedAt = now
	o.UpdatedAt = now
	return nil
}

// samePurchase reports whether prev was created from the same request as o.
func samePurchase(prev, o *models.Order) bool {
	return prev.EventID == o.EventID &&
		prev.Email == o.Email &&
		strings.EqualFold(prev.TicketType, o.TicketType) &&
		prev.Quantity == o.Quantity
}

func (s *OrderStore) replay(ctx context.Context, o *models.Order) (*models.Order, []models.Ticket, error) {
	prev, err := findOne[models.Order](ctx, s.col, bson.M{"idempotency_key": o.IdempotencyKey})
	if err != nil {
		return nil, nil, err
	}
	if !samePurchase(prev, o) {
		logger.Log.Warn("[orders] idempotency key reused for a different purchase", "order", prev.OrderNumber)
		return nil, nil, fmt.Errorf("idempotency key already used for another order: %w", status.ErrConflict)
	}
	tickets, err := s.tickets.FindByOrder(ctx, prev.ID)
	if err != nil {
		return nil, nil, err
	}
	return prev, tickets, nil
}

func (s *OrderStore) write(ctx context.Context, o *models.Order, tickets []models.Ticket) error {
	if s.transactions {
		return s.writeInTransaction(ctx, o, tickets)
	}
	return s.writeCompensated(ctx, o, tickets)
}

func (s *OrderStore) writeInTransaction(ctx context.Context, o *models.Order, tickets []models.Ticket) error {
	sess, err := s.col.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		if _, err := s.col.InsertOne(sc, o); err != nil {
			return nil, err
		}
		return nil, s.tickets.insertMany(sc, tickets)
	})
	if err != nil {
		return fmt.Errorf("write order %s: %w", o.OrderNumber, err)
	}
	return nil
}

// writeCompensated is used where the server has no transactions. A failed
// ticket insert removes the order again so no order is left without tickets.
func (s *OrderStore) writeCompensated(ctx context.Context, o *models.Order, tickets []models.Ticket) error {
	if _, err := s.col.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	err := s.tickets.insertMany(ctx, tickets)
	if err == nil {
		return nil
	}

	cleanup, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, derr := s.tickets.col.DeleteMany(cleanup, bson.M{"order_id": o.ID}); derr != nil {
		logger.Log.Error("[orders] failed to remove partial tickets", "order", o.OrderNumber, "error", derr)
	}
	if _, derr := s.col.DeleteOne(cleanup, bson.M{"_id": o.ID}); derr != nil {
		logger.Log.Error("[orders] failed to remove order after ticket insert failed", "order", o.OrderNumber, "error", derr)
	}
	return fmt.Errorf("insert tickets: %w", err)
}

// orderRef matches either an order id or an order number.
func orderRef(ref string) bson.M {
	if id, err := primitive.ObjectIDFromHex(ref); err == nil {
		return bson.M{"_id": id}
	}
	return bson.M{"order_number": ref}
}

// Confirm moves a pending order to completed. Confirming a completed order
// returns it unchanged.
func (s *OrderStore) Confirm(ctx context.Context, ref, paymentIntentID string) (*models.Order, error) {
	now := s.now()
	filter := orderRef(ref)
	filter["status"] = models.OrderPending
	set := bson.M{"status": models.OrderCompleted, "completed_at": now, "updated_at": now}
	if paymentIntentID != "" {
		set["payment_intent_id"] = paymentIntentID
	}

	var o models.Order
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&o)
	if err == nil {
		return &o, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("confirm order: %w", err)
	}
	return findOne[models.Order](ctx, s.col, orderRef(ref))
}

// LookupByNumber returns the order only when email matches, ignoring case.
func (s *OrderStore) LookupByNumber(ctx context.Context, number, email string) (*models.Order, error) {
	filter := bson.M{"order_number": number, "email": strings.ToLower(strings.TrimSpace(email))}
	return findOne[models.Order](ctx, s.col, filter)
}

func (s *OrderStore) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	filter := bson.M{}
	if !f.EventID.IsZero() {
		filter["event_id"] = f.EventID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return findAll[models.Order](ctx, s.col, filter, newestFirst())
}

// EventStats sums completed revenue in Decimal128 so amounts stay exact.
func (s *OrderStore) EventStats(ctx context.Context, eventID primitive.ObjectID) (models.EventStats, error) {
	var st models.EventStats

	total, err := s.col.CountDocuments(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return st, fmt.Errorf("count orders: %w", err)
	}
	completed, err := s.col.CountDocuments(ctx, bson.M{"event_id": eventID, "status": models.OrderCompleted})
	if err != nil {
		return st, fmt.Errorf("count completed orders: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"event_id": eventID, "status": models.OrderCompleted}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "revenue": bson.M{"$sum": "$total_amount"}}}},
	}
	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return st, fmt.Errorf("sum revenue: %w", err)
	}
	var rows []struct {
		Revenue models.Money `bson:"revenue"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return st, fmt.Errorf("decode revenue: %w", err)
	}

	tickets, err := s.tickets.Stats(ctx, eventID)
	if err != nil {
		return st, err
	}

	st.TotalOrders = int(total)
	st.CompletedOrders = int(completed)
	if len(rows) > 0 {
		st.Revenue = rows[0].Revenue
	}
	st.Tickets = tickets
	return st, nil
}
