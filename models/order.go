package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderPending   = "pending"
	OrderCompleted = "completed"
)

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber     string             `bson:"order_number" json:"order_number"`
	EventID         primitive.ObjectID `bson:"event_id" json:"event_id"`
	Email           string             `bson:"email" json:"email"`
	Name            string             `bson:"name" json:"name"`
	TicketType      string             `bson:"ticket_type" json:"ticket_type"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	TotalAmount     Money              `bson:"total_amount" json:"total_amount"`
	Status          string             `bson:"status" json:"status"` // pending, completed
	PaymentIntentID string             `bson:"payment_intent_id,omitempty" json:"payment_intent_id,omitempty"`
	IdempotencyKey  string             `bson:"idempotency_key,omitempty" json:"-"`
	CompletedAt     *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

type EventStats struct {
	TotalOrders     int         `json:"total_orders"`
	CompletedOrders int         `json:"completed_orders"`
	Revenue         Money       `json:"revenue"`
	Tickets         TicketStats `json:"tickets"`
}
