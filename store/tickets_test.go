package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	models "github.com/phillip/culture-events-go/models"
	"github.com/phillip/culture-events-go/status"
)

func TestCheckIn(t *testing.T) {
	mt := newMock(t)
	usedAt := time.Date(2026, 6, 1, 19, 5, 0, 0, time.UTC)

	mt.Run("first scan succeeds", func(mt *mtest.T) {
		s := NewTicketStore(mt.DB)
		s.now = func() time.Time { return usedAt }
		used := models.Ticket{ID: primitive.NewObjectID(), TicketCode: "TKT-1-AAA", IsUsed: true, UsedAt: &usedAt}
		mt.AddMockResponses(findAndModify(doc(mt, used)))

		got, err := s.CheckIn(context.Background(), "TKT-1-AAA")
		require.NoError(mt, err)
		assert.True(mt, got.IsUsed)
		require.NotNil(mt, got.UsedAt)
		assert.True(mt, usedAt.Equal(*got.UsedAt))
	})

	mt.Run("second scan reports first admission time", func(mt *mtest.T) {
		s := NewTicketStore(mt.DB)
		used := models.Ticket{ID: primitive.NewObjectID(), TicketCode: "TKT-1-AAA", IsUsed: true, UsedAt: &usedAt}
		mt.AddMockResponses(findAndModify(nil), cursor("db.tickets", doc(mt, used)))

		_, err := s.CheckIn(context.Background(), "TKT-1-AAA")
		var already *status.AlreadyUsedError
		require.True(mt, errors.As(err, &already))
		assert.True(mt, usedAt.Equal(already.UsedAt))
		assert.ErrorIs(mt, err, status.ErrConflict)
	})

	mt.Run("unknown code", func(mt *mtest.T) {
		s := NewTicketStore(mt.DB)
		mt.AddMockResponses(findAndModify(nil), cursor("db.tickets"))

		_, err := s.CheckIn(context.Background(), "TKT-NOPE")
		assert.ErrorIs(mt, err, status.ErrNotFound)
	})
}

func TestLookup(t *testing.T) {
	mt := newMock(t)

	mt.Run("unused ticket is valid", func(mt *mtest.T) {
		s := NewTicketStore(mt.DB)
		tk := models.Ticket{ID: primitive.NewObjectID(), TicketCode: "TKT-2-BBB"}
		mt.AddMockResponses(cursor("db.tickets", doc(mt, tk)))

		got, err := s.Lookup(context.Background(), "TKT-2-BBB")
		require.NoError(mt, err)
		assert.Equal(mt, "TKT-2-BBB", got.TicketCode)
	})

	mt.Run("used ticket", func(mt *mtest.T) {
		s := NewTicketStore(mt.DB)
		at := time.Now().UTC().Truncate(time.Millisecond)
		tk := models.Ticket{ID: primitive.NewObjectID(), TicketCode: "TKT-2-BBB", IsUsed: true, UsedAt: &at}
		mt.AddMockResponses(cursor("db.tickets", doc(mt, tk)))

		_, err := s.Lookup(context.Background(), "TKT-2-BBB")
		assert.ErrorIs(mt, err, status.ErrConflict)
	})
}

func TestNewBatchDistinctCodes(t *testing.T) {
	s := &TicketStore{now: fixedClock}
	order := &models.Order{ID: primitive.NewObjectID(), EventID: primitive.NewObjectID(), TicketType: "vip", Name: "Asha"}

	tickets, err := s.newBatch(order, 10)
	require.NoError(t, err)
	require.Len(t, tickets, 10)
	seen := map[string]bool{}
	for _, tk := range tickets {
		assert.False(t, seen[tk.TicketCode])
		seen[tk.TicketCode] = true
		assert.Equal(t, "vip", tk.TicketType)
		assert.Equal(t, "Asha", tk.AttendeeName)
	}
}
