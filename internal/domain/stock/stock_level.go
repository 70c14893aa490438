package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
)

// StockLevel represents the on-hand stock counter for one product.
// It is shared across every line item of every order referencing the product;
// all mutations go through the transaction recorder to preserve the audit trail.
type StockLevel struct {
	shared.TenantAggregateRoot
	ProductID      uuid.UUID
	VariantID      *uuid.UUID
	QuantityOnHand int64
}

// TableName returns the table name for GORM
func (StockLevel) TableName() string {
	return "stock_levels"
}

// NewStockLevel creates a stock level record for a product
func NewStockLevel(tenantID, productID uuid.UUID, variantID *uuid.UUID) (*StockLevel, error) {
	if productID == uuid.Nil {
		return nil, shared.NewFieldValidationError("INVALID_PRODUCT", "product_id", "Product ID cannot be empty")
	}

	return &StockLevel{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		VariantID:           variantID,
		QuantityOnHand:      0,
	}, nil
}

// Receive increments on-hand stock (purchase receipt)
func (s *StockLevel) Receive(quantity int64) error {
	if quantity <= 0 {
		return shared.NewFieldValidationError("INVALID_QUANTITY", "quantity", "Quantity must be positive")
	}
	s.QuantityOnHand += quantity
	s.UpdatedAt = time.Now()
	return nil
}

// Issue decrements on-hand stock (sales fulfillment).
// On-hand stock can never go negative.
func (s *StockLevel) Issue(quantity int64) error {
	if quantity <= 0 {
		return shared.NewFieldValidationError("INVALID_QUANTITY", "quantity", "Quantity must be positive")
	}
	if quantity > s.QuantityOnHand {
		return shared.NewConflictError(
			"INSUFFICIENT_STOCK",
			fmt.Sprintf("Cannot issue %d units, only %d on hand", quantity, s.QuantityOnHand),
		)
	}
	s.QuantityOnHand -= quantity
	s.UpdatedAt = time.Now()
	return nil
}

// Apply moves stock in the given direction
func (s *StockLevel) Apply(direction Direction, quantity int64) error {
	if direction == DirectionInbound {
		return s.Receive(quantity)
	}
	return s.Issue(quantity)
}
