package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	models "github.com/phillip/culture-events-go/models"
	"github.com/phillip/culture-events-go/status"
)

func newOrder(qty int) *models.Order {
	return &models.Order{
		EventID:     primitive.NewObjectID(),
		Email:       " Guest@Example.com ",
		Name:        "Guest",
		TicketType:  "regular",
		Quantity:    qty,
		TotalAmount: models.MoneyFromFloat(25.5 * float64(qty)),
	}
}

func TestCreateWithTicketsIssuesQuantity(t *testing.T) {
	mt := newMock(t)

	mt.Run("n tickets with distinct codes", func(mt *mtest.T) {
		tickets := NewTicketStore(mt.DB)
		s := NewOrderStore(mt.DB, tickets, false)
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())

		o := newOrder(4)
		issued, replayed, err := s.CreateWithTickets(context.Background(), o)
		require.NoError(mt, err)
		assert.False(mt, replayed)
		assert.Equal(mt, "guest@example.com", o.Email)
		assert.Equal(mt, models.OrderPending, o.Status)
		assert.Regexp(mt, `^ORD-\d+-[0-9A-Z]{9}$`, o.OrderNumber)

		require.Len(mt, issued, 4)
		codes := map[string]bool{}
		for _, tk := range issued {
			assert.Equal(mt, o.ID, tk.OrderID)
			assert.Equal(mt, o.EventID, tk.EventID)
			assert.False(mt, tk.IsUsed)
			assert.Contains(mt, tk.QRCode, "data:image/png;base64,")
			codes[tk.TicketCode] = true
		}
		assert.Len(mt, codes, 4)
	})

	mt.Run("retries after duplicate ticket code", func(mt *mtest.T) {
		tickets := NewTicketStore(mt.DB)
		s := NewOrderStore(mt.DB, tickets, false)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),                           // order
			duplicateKey("ticket_code_1"),                           // tickets
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}), // cleanup tickets
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}), // cleanup order
			mtest.CreateSuccessResponse(),                           // order, second attempt
			mtest.CreateSuccessResponse(),                           // tickets, second attempt
		)

		issued, _, err := s.CreateWithTickets(context.Background(), newOrder(2))
		require.NoError(mt, err)
		assert.Len(mt, issued, 2)
	})

	mt.Run("gives up after repeated duplicates", func(mt *mtest.T) {
		tickets := NewTicketStore(mt.DB)
		s := NewOrderStore(mt.DB, tickets, false)
		for i := 0; i < maxIssueAttempts; i++ {
			mt.AddMockResponses(duplicateKey("order_number_1"))
		}

		_, _, err := s.CreateWithTickets(context.Background(), newOrder(1))
		assert.Error(mt, err)
	})

	mt.Run("rejects bad quantity", func(mt *mtest.T) {
		s := NewOrderStore(mt.DB, NewTicketStore(mt.DB), false)
		_, _, err := s.CreateWithTickets(context.Background(), newOrder(0))
		assert.ErrorIs(mt, err, status.ErrValidation)
		_, _, err = s.CreateWithTickets(context.Background(), newOrder(MaxTicketsPerOrder+1))
		assert.ErrorIs(mt, err, status.ErrValidation)
	})
}

func TestCreateWithTicketsReplaysIdempotencyKey(t *testing.T) {
	mt := newMock(t)

	mt.Run("existing key", func(mt *mtest.T) {
		s := NewOrderStore(mt.DB, NewTicketStore(mt.DB), false)
		o := newOrder(1)
		o.IdempotencyKey = "k-1"
		prev := models.Order{
			ID: primitive.NewObjectID(), OrderNumber: "ORD-1-AAAAAAAAA", EventID: o.EventID,
			Email: "guest@example.com", Name: "Guest", TicketType: "regular", Quantity: 1,
			Status: models.OrderPending, IdempotencyKey: "k-1",
		}
		tk := models.Ticket{ID: primitive.NewObjectID(), TicketCode: "TKT-1-AAAAAAAAA", OrderID: prev.ID}
		mt.AddMockResponses(
			cursor("db.orders", doc(mt, prev)),
			cursor("db.tickets", doc(mt, tk)),
		)

		issued, replayed, err := s.CreateWithTickets(context.Background(), o)
		require.NoError(mt, err)
		assert.True(mt, replayed)
		assert.Equal(mt, prev.ID, o.ID)
		assert.Equal(mt, "ORD-1-AAAAAAAAA", o.OrderNumber)
		require.Len(mt, issued, 1)
		assert.Equal(mt, "TKT-1-AAAAAAAAA", issued[0].TicketCode)
	})

	mt.Run("concurrent insert with same key", func(mt *mtest.T) {
		s := NewOrderStore(mt.DB, NewTicketStore(mt.DB), false)
		o := newOrder(1)
		o.IdempotencyKey = "k-2"
		prev := models.Order{
			ID: primitive.NewObjectID(), OrderNumber: "ORD-2-BBBBBBBBB", EventID: o.EventID,
			Email: "guest@example.com", TicketType: "regular", IdempotencyKey: "k-2", Quantity: 1,
		}
		mt.AddMockResponses(
			cursor("db.orders"),
			duplicateKey("idempotency_key_1"),
			cursor("db.orders", doc(mt, prev)),
			cursor("db.tickets"),
		)

		_, replayed, err := s.CreateWithTickets(context.Background(), o)
		require.NoError(mt, err)
		assert.True(mt, replayed)
		assert.Equal(mt, "ORD-2-BBBBBBBBB", o.OrderNumber)
	})

	mt.Run("key reused by another buyer", func(mt *mtest.T) {
		s := NewOrderStore(mt.DB, NewTicketStore(mt.DB), false)
		prev := models.Order{
			ID: primitive.NewObjectID(), OrderNumber: "ORD-5-EEEEEEEEE", EventID: primitive.NewObjectID(),
			Email: "first@example.com", Name: "First", TicketType: "regular", Quantity: 1,
			Status: models.OrderPending, IdempotencyKey: "k-5",
		}
		mt.AddMockResponses(cursor("db.orders", doc(mt, prev)))

		o := newOrder(1)
		o.IdempotencyKey = "k-5"
		issued, replayed, err := s.CreateWithTickets(context.Background(), o)
		assert.ErrorIs(mt, err, status.ErrConflict)
		assert.False(mt, replayed)
		assert.Nil(mt, issued)
		assert.Empty(mt, o.OrderNumber)
		assert.Equal(mt, "guest@example.com", o.Email)
	})

	mt.Run("same buyer with a different quantity", func(mt *mtest.T) {
		s := NewOrderStore(mt.DB, NewTicketStore(mt.DB), false)
		o := newOrder(3)
		o.IdempotencyKey = "k-6"
		prev := models.Order{
			ID: primitive.NewObjectID(), OrderNumber: "ORD-6-FFFFFFFFF", EventID: o.EventID,
			Email: "guest@example.com", TicketType: "regular", Quantity: 1, IdempotencyKey: "k-6",
		}
		mt.AddMockResponses(cursor("db.orders", doc(mt, prev)))

		_, _, err := s.CreateWithTickets(context.Background(), o)
		assert.ErrorIs(mt, err, status.ErrConflict)
	})
}

func TestConfirmOrder(t *testing.T) {
	mt := newMock(t)

	mt.Run("pending to completed", func(mt *mtest.T) {
		s := NewOrderStore(mt.DB, NewTicketStore(mt.DB), false)
		done := models.Order{ID: primitive.NewObjectID(), OrderNumber: "ORD-3-CCCCCCCCC", Status: models.OrderCompleted, PaymentIntentID: "pi_1"}
		mt.AddMockResponses(findAndModify(doc(mt, done)))

		got, err := s.Confirm(context.Background(), "ORD-3-CCCCCCCCC", "pi_1")
		require.NoError(mt, err)
		assert.Equal(mt, models.OrderCompleted, got.Status)
	})

	mt.Run("already completed is returned as is", func(mt *mtest.T) {
		s := NewOrderStore(mt.DB, NewTicketStore(mt.DB), false)
		done := models.Order{ID: primitive.NewObjectID(), OrderNumber: "ORD-4-DDDDDDDDD", Status: models.OrderCompleted}
		mt.AddMockResponses(findAndModify(nil), cursor("db.orders", doc(mt, done)))

		got, err := s.Confirm(context.Background(), "ORD-4-DDDDDDDDD", "")
		require.NoError(mt, err)
		assert.Equal(mt, done.ID, got.ID)
	})

	mt.Run("unknown order", func(mt *mtest.T) {
		s := NewOrderStore(mt.DB, NewTicketStore(mt.DB), false)
		mt.AddMockResponses(findAndModify(nil), cursor("db.orders"))

		_, err := s.Confirm(context.Background(), "ORD-404", "")
		assert.ErrorIs(mt, err, status.ErrNotFound)
	})
}

func TestEventStatsSumsDecimalRevenue(t *testing.T) {
	mt := newMock(t)

	mt.Run("stats", func(mt *mtest.T) {
		s := NewOrderStore(mt.DB, NewTicketStore(mt.DB), false)
		revenue, err := primitive.ParseDecimal128("76.50")
		require.NoError(mt, err)
		mt.AddMockResponses(
			count(3),
			count(2),
			cursor("db.orders", bson.D{{Key: "_id", Value: nil}, {Key: "revenue", Value: revenue}}),
			count(5),
			count(2),
		)

		st, err := s.EventStats(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Equal(mt, 3, st.TotalOrders)
		assert.Equal(mt, 2, st.CompletedOrders)
		assert.Equal(mt, "76.5", st.Revenue.String())
		assert.Equal(mt, models.TicketStats{Total: 5, Used: 2, Unused: 3}, st.Tickets)
	})
}
