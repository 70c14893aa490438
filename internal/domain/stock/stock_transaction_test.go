package stock

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransaction(t *testing.T) {
	tenantID := uuid.New()
	lineItemID := uuid.New()
	orderID := uuid.New()
	productID := uuid.New()
	actorID := uuid.New()

	t.Run("creates outbound movement", func(t *testing.T) {
		tx, err := NewTransaction(tenantID, lineItemID, orderID, productID, nil, DirectionOutbound, 4, 10, 6, SourceTypeSalesOrder, actorID)
		require.NoError(t, err)

		assert.Equal(t, int64(4), tx.Quantity)
		assert.Equal(t, int64(10), tx.BalanceBefore)
		assert.Equal(t, int64(6), tx.BalanceAfter)
		assert.Equal(t, int64(-4), tx.SignedQuantity())
		assert.False(t, tx.IsInbound())
		assert.False(t, tx.OccurredAt.IsZero())
	})

	t.Run("creates inbound movement", func(t *testing.T) {
		tx, err := NewTransaction(tenantID, lineItemID, orderID, productID, nil, DirectionInbound, 7, 0, 7, SourceTypePurchaseOrder, actorID)
		require.NoError(t, err)
		assert.Equal(t, int64(7), tx.SignedQuantity())
		assert.True(t, tx.IsInbound())
	})

	t.Run("rejects invalid inputs", func(t *testing.T) {
		_, err := NewTransaction(uuid.Nil, lineItemID, orderID, productID, nil, DirectionInbound, 1, 0, 1, SourceTypePurchaseOrder, actorID)
		assert.Error(t, err)

		_, err = NewTransaction(tenantID, uuid.Nil, orderID, productID, nil, DirectionInbound, 1, 0, 1, SourceTypePurchaseOrder, actorID)
		assert.Error(t, err)

		_, err = NewTransaction(tenantID, lineItemID, orderID, productID, nil, Direction("SIDEWAYS"), 1, 0, 1, SourceTypePurchaseOrder, actorID)
		assert.Error(t, err)

		_, err = NewTransaction(tenantID, lineItemID, orderID, productID, nil, DirectionInbound, 0, 0, 0, SourceTypePurchaseOrder, actorID)
		assert.Error(t, err)

		_, err = NewTransaction(tenantID, lineItemID, orderID, productID, nil, DirectionInbound, 1, 0, 1, SourceType("UNKNOWN"), actorID)
		assert.Error(t, err)

		_, err = NewTransaction(tenantID, lineItemID, orderID, productID, nil, DirectionInbound, 1, 0, 1, SourceTypePurchaseOrder, uuid.Nil)
		assert.Error(t, err)
	})
}

func TestDirection_IsValid(t *testing.T) {
	assert.True(t, DirectionInbound.IsValid())
	assert.True(t, DirectionOutbound.IsValid())
	assert.False(t, Direction("").IsValid())
}
