package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Ticket struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TicketCode   string             `bson:"ticket_code" json:"ticket_code"`
	QRCode       string             `bson:"qr_code" json:"qr_code"` // PNG data URL
	OrderID      primitive.ObjectID `bson:"order_id" json:"order_id"`
	EventID      primitive.ObjectID `bson:"event_id" json:"event_id"`
	TicketType   string             `bson:"ticket_type" json:"ticket_type"`
	AttendeeName string             `bson:"attendee_name" json:"attendee_name"`
	IsUsed       bool               `bson:"is_used" json:"is_used"`
	UsedAt       *time.Time         `bson:"used_at" json:"used_at"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

type TicketStats struct {
	Total  int `json:"total"`
	Used   int `json:"used"`
	Unused int `json:"unused"`
}
