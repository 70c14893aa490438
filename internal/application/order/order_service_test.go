package order

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/order"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, tenantID, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByCounterparty(ctx context.Context, tenantID, counterpartyID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, tenantID, counterpartyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status order.OrderStatus, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, tenantID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status order.OrderStatus) (int64, error) {
	args := m.Called(ctx, tenantID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) ExistsByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (bool, error) {
	args := m.Called(ctx, tenantID, orderNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID, orderType order.OrderType) (string, error) {
	args := m.Called(ctx, tenantID, orderType)
	return args.String(0), args.Error(1)
}

func newTestService(repo *MockOrderRepository) *Service {
	return NewService(repo, zap.NewNop())
}

func salesOrderFixture(t *testing.T, tenantID uuid.UUID, quantities ...int64) *order.Order {
	t.Helper()
	o, err := order.NewOrder(tenantID, "SO-2026-00042", order.OrderTypeSales, uuid.New(), "Acme Hardware")
	require.NoError(t, err)
	for i, qty := range quantities {
		price, err := valueobject.NewMoneyUSDFromString("2.00")
		require.NoError(t, err)
		_, err = o.AddItem(uuid.New(), nil, "Widget", "WID-001", qty, price)
		require.NoError(t, err)
		_ = i
	}
	o.ClearDomainEvents()
	return o
}

func TestService_Create(t *testing.T) {
	tenantID := uuid.New()

	baseRequest := func() CreateOrderRequest {
		return CreateOrderRequest{
			Type:             order.OrderTypeSales,
			CounterpartyID:   uuid.New(),
			CounterpartyName: "Acme Hardware",
			Items: []OrderItemInput{
				{
					ProductID:   uuid.New(),
					ProductName: "Widget",
					ProductSKU:  "WID-001",
					Quantity:    10,
					UnitPrice:   decimal.RequireFromString("2.00"),
				},
			},
		}
	}

	t.Run("creates pending order with computed total", func(t *testing.T) {
		repo := new(MockOrderRepository)
		repo.On("GenerateOrderNumber", mock.Anything, tenantID, order.OrderTypeSales).Return("SO-2026-00001", nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

		resp, err := newTestService(repo).Create(context.Background(), tenantID, baseRequest())

		require.NoError(t, err)
		assert.Equal(t, "SO-2026-00001", resp.OrderNumber)
		assert.Equal(t, "PENDING", resp.Status)
		assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("20.00")))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, int64(10), resp.Items[0].QuantityOrdered)
		assert.Equal(t, int64(10), resp.Items[0].Remaining)
		repo.AssertExpectations(t)
	})

	t.Run("as draft keeps draft status", func(t *testing.T) {
		repo := new(MockOrderRepository)
		repo.On("GenerateOrderNumber", mock.Anything, tenantID, order.OrderTypeSales).Return("SO-2026-00002", nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

		req := baseRequest()
		req.AsDraft = true
		resp, err := newTestService(repo).Create(context.Background(), tenantID, req)

		require.NoError(t, err)
		assert.Equal(t, "DRAFT", resp.Status)
	})

	t.Run("empty items rejected before any persistence", func(t *testing.T) {
		repo := new(MockOrderRepository)

		req := baseRequest()
		req.Items = nil
		_, err := newTestService(repo).Create(context.Background(), tenantID, req)

		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("invalid item aborts the whole create", func(t *testing.T) {
		repo := new(MockOrderRepository)
		repo.On("GenerateOrderNumber", mock.Anything, tenantID, order.OrderTypeSales).Return("SO-2026-00003", nil)

		req := baseRequest()
		req.Items[0].Quantity = 0
		_, err := newTestService(repo).Create(context.Background(), tenantID, req)

		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("save failure surfaces as persistence error", func(t *testing.T) {
		repo := new(MockOrderRepository)
		repo.On("GenerateOrderNumber", mock.Anything, tenantID, order.OrderTypeSales).Return("SO-2026-00004", nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

		_, err := newTestService(repo).Create(context.Background(), tenantID, baseRequest())
		require.Error(t, err)
		assert.True(t, shared.IsPersistence(err))
		var pe *shared.PersistenceError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "order.save", pe.Op)
	})
}

func TestService_Update(t *testing.T) {
	tenantID := uuid.New()

	t.Run("replaces items and recomputes total", func(t *testing.T) {
		o := salesOrderFixture(t, tenantID, 10)
		existing := o.Items[0]

		repo := new(MockOrderRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, o.ID).Return(o, nil)
		repo.On("SaveWithLock", mock.Anything, o).Return(nil)

		itemID := existing.ID
		resp, err := newTestService(repo).Update(context.Background(), tenantID, o.ID, UpdateOrderRequest{
			CounterpartyID:   o.CounterpartyID,
			CounterpartyName: "Acme Hardware",
			Items: []UpdateOrderItemInput{
				{
					ItemID:      &itemID,
					ProductID:   existing.ProductID,
					ProductName: existing.ProductName,
					Quantity:    3,
					UnitPrice:   decimal.RequireFromString("2.00"),
				},
				{
					ProductID:   uuid.New(),
					ProductName: "Bracket",
					Quantity:    2,
					UnitPrice:   decimal.RequireFromString("5.25"),
				},
			},
		})

		require.NoError(t, err)
		assert.Len(t, resp.Items, 2)
		assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("16.50")))
		repo.AssertExpectations(t)
	})

	t.Run("empty item set rejected", func(t *testing.T) {
		o := salesOrderFixture(t, tenantID, 10)
		repo := new(MockOrderRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, o.ID).Return(o, nil)

		_, err := newTestService(repo).Update(context.Background(), tenantID, o.ID, UpdateOrderRequest{
			CounterpartyID:   o.CounterpartyID,
			CounterpartyName: "Acme Hardware",
		})

		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("not found propagates", func(t *testing.T) {
		repo := new(MockOrderRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, mock.Anything).Return(nil, shared.ErrNotFound)

		_, err := newTestService(repo).Update(context.Background(), tenantID, uuid.New(), UpdateOrderRequest{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	tenantID := uuid.New()

	t.Run("draft order deleted", func(t *testing.T) {
		o := salesOrderFixture(t, tenantID, 5)
		repo := new(MockOrderRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, o.ID).Return(o, nil)
		repo.On("DeleteForTenant", mock.Anything, tenantID, o.ID).Return(nil)

		err := newTestService(repo).Delete(context.Background(), tenantID, o.ID)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("cancelled order deleted", func(t *testing.T) {
		o := salesOrderFixture(t, tenantID, 5)
		require.NoError(t, o.Submit())
		require.NoError(t, o.Cancel("duplicate entry"))

		repo := new(MockOrderRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, o.ID).Return(o, nil)
		repo.On("DeleteForTenant", mock.Anything, tenantID, o.ID).Return(nil)

		err := newTestService(repo).Delete(context.Background(), tenantID, o.ID)
		require.NoError(t, err)
	})

	t.Run("pending order rejected", func(t *testing.T) {
		o := salesOrderFixture(t, tenantID, 5)
		require.NoError(t, o.Submit())

		repo := new(MockOrderRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, o.ID).Return(o, nil)

		err := newTestService(repo).Delete(context.Background(), tenantID, o.ID)
		require.Error(t, err)
		assert.True(t, shared.IsConflict(err))
		repo.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_SubmitAndCancel(t *testing.T) {
	tenantID := uuid.New()

	t.Run("submit promotes draft to pending", func(t *testing.T) {
		o := salesOrderFixture(t, tenantID, 5)
		repo := new(MockOrderRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, o.ID).Return(o, nil)
		repo.On("SaveWithLock", mock.Anything, o).Return(nil)

		resp, err := newTestService(repo).Submit(context.Background(), tenantID, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", resp.Status)
	})

	t.Run("cancel records the reason", func(t *testing.T) {
		o := salesOrderFixture(t, tenantID, 5)
		require.NoError(t, o.Submit())
		o.ClearDomainEvents()

		repo := new(MockOrderRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, o.ID).Return(o, nil)
		repo.On("SaveWithLock", mock.Anything, o).Return(nil)

		resp, err := newTestService(repo).Cancel(context.Background(), tenantID, o.ID, CancelOrderRequest{Reason: "customer withdrew"})
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
		assert.Equal(t, "customer withdrew", resp.CancelReason)
		assert.NotNil(t, resp.CancelledAt)
	})

	t.Run("cancel fulfilled order rejected", func(t *testing.T) {
		o := salesOrderFixture(t, tenantID, 2)
		require.NoError(t, o.Submit())
		require.NoError(t, o.Items[0].ApplyFulfillment(2))
		require.True(t, o.RecomputeStatus())
		o.ClearDomainEvents()

		repo := new(MockOrderRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, o.ID).Return(o, nil)

		_, err := newTestService(repo).Cancel(context.Background(), tenantID, o.ID, CancelOrderRequest{Reason: "too late"})
		require.Error(t, err)
		assert.True(t, shared.IsConflict(err))
	})
}

func TestService_List(t *testing.T) {
	tenantID := uuid.New()
	o := salesOrderFixture(t, tenantID, 5)

	repo := new(MockOrderRepository)
	repo.On("FindAllForTenant", mock.Anything, tenantID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 1 && f.PageSize == 20 && f.OrderBy == "created_at" && f.OrderDir == "desc"
	})).Return([]order.Order{*o}, nil)
	repo.On("CountForTenant", mock.Anything, tenantID, mock.Anything).Return(int64(1), nil)

	items, total, err := newTestService(repo).List(context.Background(), tenantID, OrderListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, o.OrderNumber, items[0].OrderNumber)
	repo.AssertExpectations(t)
}

func TestService_StatusSummary(t *testing.T) {
	tenantID := uuid.New()

	repo := new(MockOrderRepository)
	repo.On("CountByStatus", mock.Anything, tenantID, order.OrderStatusDraft).Return(int64(2), nil)
	repo.On("CountByStatus", mock.Anything, tenantID, order.OrderStatusPending).Return(int64(5), nil)
	repo.On("CountByStatus", mock.Anything, tenantID, order.OrderStatusFulfilled).Return(int64(11), nil)
	repo.On("CountByStatus", mock.Anything, tenantID, order.OrderStatusCancelled).Return(int64(1), nil)

	summary, err := newTestService(repo).StatusSummary(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Draft)
	assert.Equal(t, int64(5), summary.Pending)
	assert.Equal(t, int64(11), summary.Fulfilled)
	assert.Equal(t, int64(1), summary.Cancelled)
}
