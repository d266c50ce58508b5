package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/phillip/culture-events-go/status"
)

func TestSubscribe(t *testing.T) {
	mt := newMock(t)

	mt.Run("new address", func(mt *mtest.T) {
		s := NewNewsletterStore(mt.DB)
		mt.AddMockResponses(updated(0), mtest.CreateSuccessResponse())

		ok, err := s.Subscribe(context.Background(), "Fan@Example.com")
		require.NoError(mt, err)
		assert.True(mt, ok)
	})

	mt.Run("duplicate is not an error", func(mt *mtest.T) {
		s := NewNewsletterStore(mt.DB)
		mt.AddMockResponses(updated(0), duplicateKey("email_1"))

		ok, err := s.Subscribe(context.Background(), "fan@example.com")
		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("reactivates unsubscribed address", func(mt *mtest.T) {
		s := NewNewsletterStore(mt.DB)
		mt.AddMockResponses(updated(1))

		ok, err := s.Subscribe(context.Background(), "fan@example.com")
		require.NoError(mt, err)
		assert.True(mt, ok)
	})

	mt.Run("invalid address", func(mt *mtest.T) {
		s := NewNewsletterStore(mt.DB)
		_, err := s.Subscribe(context.Background(), "not-an-email")
		assert.ErrorIs(mt, err, status.ErrValidation)
	})
}

func TestUnsubscribeUnknown(t *testing.T) {
	mt := newMock(t)

	mt.Run("unknown", func(mt *mtest.T) {
		s := NewNewsletterStore(mt.DB)
		mt.AddMockResponses(updated(0))
		assert.ErrorIs(mt, s.Unsubscribe(context.Background(), "ghost@example.com"), status.ErrNotFound)
	})
}
