package order

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/order"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	sent []Notification
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, notification Notification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

func draftFixture(t *testing.T, notifier Notifier) (*DraftBuilder, *MockOrderRepository) {
	t.Helper()
	repo := new(MockOrderRepository)
	service := NewService(repo, zap.NewNop())
	return NewDraftBuilder(service, notifier, zap.NewNop(), order.OrderTypeSales), repo
}

func TestDraftBuilder_RunningTotal(t *testing.T) {
	builder, _ := draftFixture(t, nil)

	first, err := builder.AddItem(uuid.New(), nil, "Widget", "WID-001", 10, decimal.RequireFromString("2.00"))
	require.NoError(t, err)
	_, err = builder.AddItem(uuid.New(), nil, "Bracket", "BRK-001", 2, decimal.RequireFromString("5.25"))
	require.NoError(t, err)
	assert.True(t, builder.Total().Equal(decimal.RequireFromString("30.50")))

	require.NoError(t, builder.SetQuantity(first.ID, 3))
	assert.True(t, builder.Total().Equal(decimal.RequireFromString("16.50")))

	require.NoError(t, builder.SetUnitPrice(first.ID, decimal.RequireFromString("1.00")))
	assert.True(t, builder.Total().Equal(decimal.RequireFromString("13.50")))

	require.NoError(t, builder.RemoveItem(first.ID))
	assert.True(t, builder.Total().Equal(decimal.RequireFromString("10.50")))
	assert.Len(t, builder.Items(), 1)
}

func TestDraftBuilder_AddItemValidation(t *testing.T) {
	builder, _ := draftFixture(t, nil)

	_, err := builder.AddItem(uuid.Nil, nil, "Widget", "", 1, decimal.RequireFromString("1.00"))
	assert.True(t, shared.IsValidation(err))

	_, err = builder.AddItem(uuid.New(), nil, "Widget", "", 0, decimal.RequireFromString("1.00"))
	assert.True(t, shared.IsValidation(err))

	_, err = builder.AddItem(uuid.New(), nil, "Widget", "", 1, decimal.RequireFromString("-1.00"))
	assert.True(t, shared.IsValidation(err))

	assert.Empty(t, builder.Items())
}

func TestDraftBuilder_Commit(t *testing.T) {
	tenantID := uuid.New()

	prepare := func(builder *DraftBuilder) {
		builder.SetCounterparty(uuid.New(), "Acme Hardware")
		_, err := builder.AddItem(uuid.New(), nil, "Widget", "WID-001", 10, decimal.RequireFromString("2.00"))
		require.NoError(t, err)
	}

	t.Run("commit as pending", func(t *testing.T) {
		builder, repo := draftFixture(t, nil)
		prepare(builder)
		repo.On("GenerateOrderNumber", mock.Anything, tenantID, order.OrderTypeSales).Return("SO-2026-00010", nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)

		result, err := builder.Commit(context.Background(), tenantID, false)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", result.Order.Status)
		assert.Empty(t, result.Warning)
	})

	t.Run("commit as draft", func(t *testing.T) {
		builder, repo := draftFixture(t, nil)
		prepare(builder)
		repo.On("GenerateOrderNumber", mock.Anything, tenantID, order.OrderTypeSales).Return("SO-2026-00011", nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)

		result, err := builder.Commit(context.Background(), tenantID, true)
		require.NoError(t, err)
		assert.Equal(t, "DRAFT", result.Order.Status)
	})

	t.Run("missing counterparty rejected", func(t *testing.T) {
		builder, _ := draftFixture(t, nil)
		_, err := builder.AddItem(uuid.New(), nil, "Widget", "", 1, decimal.RequireFromString("1.00"))
		require.NoError(t, err)

		_, err = builder.Commit(context.Background(), tenantID, false)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("empty draft rejected", func(t *testing.T) {
		builder, _ := draftFixture(t, nil)
		builder.SetCounterparty(uuid.New(), "Acme Hardware")

		_, err := builder.Commit(context.Background(), tenantID, false)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("notification sent on commit", func(t *testing.T) {
		notifier := &recordingNotifier{}
		builder, repo := draftFixture(t, notifier)
		prepare(builder)
		builder.SetRecipient("orders@acme.example").SetNotify(true)
		repo.On("GenerateOrderNumber", mock.Anything, tenantID, order.OrderTypeSales).Return("SO-2026-00012", nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)

		result, err := builder.Commit(context.Background(), tenantID, false)
		require.NoError(t, err)
		assert.Empty(t, result.Warning)
		require.Len(t, notifier.sent, 1)
		assert.Equal(t, "orders@acme.example", notifier.sent[0].Recipient)
		assert.Equal(t, "Order SO-2026-00012", notifier.sent[0].Subject)
	})

	t.Run("notification failure is a warning, not an error", func(t *testing.T) {
		notifier := &recordingNotifier{err: errors.New("smtp unreachable")}
		builder, repo := draftFixture(t, notifier)
		prepare(builder)
		builder.SetNotify(true)
		repo.On("GenerateOrderNumber", mock.Anything, tenantID, order.OrderTypeSales).Return("SO-2026-00013", nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)

		result, err := builder.Commit(context.Background(), tenantID, false)
		require.NoError(t, err)
		require.NotNil(t, result.Order)
		assert.Contains(t, result.Warning, "notification failed")
	})

	t.Run("create failure aborts commit", func(t *testing.T) {
		builder, repo := draftFixture(t, nil)
		prepare(builder)
		repo.On("GenerateOrderNumber", mock.Anything, tenantID, order.OrderTypeSales).Return("", errors.New("sequence unavailable"))

		_, err := builder.Commit(context.Background(), tenantID, false)
		assert.Error(t, err)
	})
}
