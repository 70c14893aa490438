package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
)

// LevelRepository defines the interface for stock level persistence
type LevelRepository interface {
	// FindByProduct finds the stock level for a product/variant pair
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (*StockLevel, error)

	// FindByProductForUpdate finds the stock level acquiring a row-level lock.
	// Must be called inside a transaction.
	FindByProductForUpdate(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (*StockLevel, error)

	// FindAllForTenant lists stock levels for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockLevel, error)

	// Save creates or updates a stock level
	Save(ctx context.Context, level *StockLevel) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, level *StockLevel) error
}

// TransactionRepository defines the interface for the append-only movement ledger
type TransactionRepository interface {
	// Append durably records a transaction. Existing rows are never updated.
	Append(ctx context.Context, tx *Transaction) error

	// FindByLineItem lists all movements recorded against a line item
	FindByLineItem(ctx context.Context, tenantID, lineItemID uuid.UUID) ([]Transaction, error)

	// FindByOrder lists all movements recorded against an order
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]Transaction, error)

	// FindByProduct lists movements for a product with filtering
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]Transaction, error)

	// SumByLineItem returns the net signed quantity recorded for a line item
	SumByLineItem(ctx context.Context, tenantID, lineItemID uuid.UUID) (int64, error)
}
