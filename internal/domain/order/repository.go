package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
)

// Repository defines the interface for order persistence.
// The order header and its line items are always loaded and stored as one
// consistency unit.
type Repository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForTenant finds an order by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)

	// FindByIDForUpdate finds an order by ID acquiring a row-level lock.
	// Must be called inside a transaction; concurrent callers for the same
	// order block until the owning transaction commits.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by order number for a tenant
	FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*Order, error)

	// FindAllForTenant finds all orders for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindByCounterparty finds orders for a customer or vendor
	FindByCounterparty(ctx context.Context, tenantID, counterpartyID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindByStatus finds orders by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status OrderStatus, filter shared.Filter) ([]Order, error)

	// Save creates or updates an order together with its items
	Save(ctx context.Context, o *Order) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, o *Order) error

	// DeleteForTenant hard-deletes an order and its items as one transaction
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts orders for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts orders by status for a tenant
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status OrderStatus) (int64, error)

	// ExistsByOrderNumber checks if an order number exists for a tenant
	ExistsByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (bool, error)

	// GenerateOrderNumber generates a unique order number for a tenant
	GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID, orderType OrderType) (string, error)
}

// LineItemRepository exposes direct access to line item rows for the
// fulfillment path, which mutates fulfillment counters without rewriting the
// whole aggregate.
type LineItemRepository interface {
	// FindByID finds a line item by ID
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*LineItem, error)

	// FindByOrder finds all line items of an order
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]LineItem, error)

	// UpdateFulfilledQuantity persists the fulfilled counter of one item
	UpdateFulfilledQuantity(ctx context.Context, item *LineItem) error
}
