package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
)

// Direction represents which way a stock transaction moves on-hand stock
type Direction string

const (
	// DirectionInbound represents stock coming in (purchase receipt)
	DirectionInbound Direction = "INBOUND"
	// DirectionOutbound represents stock going out (sales fulfillment)
	DirectionOutbound Direction = "OUTBOUND"
)

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// IsValid returns true if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionInbound || d == DirectionOutbound
}

// SourceType represents the source document type for a transaction
type SourceType string

const (
	// SourceTypeSalesOrder is a sales order fulfillment
	SourceTypeSalesOrder SourceType = "SALES_ORDER"
	// SourceTypePurchaseOrder is a purchase order receipt
	SourceTypePurchaseOrder SourceType = "PURCHASE_ORDER"
	// SourceTypeCompensation is a compensating correction for an earlier transaction
	SourceTypeCompensation SourceType = "COMPENSATION"
)

// String returns the string representation of SourceType
func (s SourceType) String() string {
	return string(s)
}

// IsValid returns true if the source type is valid
func (s SourceType) IsValid() bool {
	switch s {
	case SourceTypeSalesOrder, SourceTypePurchaseOrder, SourceTypeCompensation:
		return true
	}
	return false
}

// Transaction represents an immutable record of one stock movement tied to
// one line item. Once written it is never mutated or deleted; corrections
// happen via compensating transactions.
type Transaction struct {
	shared.BaseEntity
	TenantID      uuid.UUID
	LineItemID    uuid.UUID
	OrderID       uuid.UUID
	ProductID     uuid.UUID
	VariantID     *uuid.UUID
	Direction     Direction
	Quantity      int64 // Always positive, direction carries the sign
	BalanceBefore int64 // On-hand quantity before the movement
	BalanceAfter  int64 // On-hand quantity after the movement
	SourceType    SourceType
	ActorID       uuid.UUID
	OccurredAt    time.Time
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "stock_transactions"
}

// NewTransaction creates a new stock transaction
func NewTransaction(
	tenantID uuid.UUID,
	lineItemID uuid.UUID,
	orderID uuid.UUID,
	productID uuid.UUID,
	variantID *uuid.UUID,
	direction Direction,
	quantity int64,
	balanceBefore int64,
	balanceAfter int64,
	sourceType SourceType,
	actorID uuid.UUID,
) (*Transaction, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewFieldValidationError("INVALID_TENANT", "tenant_id", "Tenant ID cannot be empty")
	}
	if lineItemID == uuid.Nil {
		return nil, shared.NewFieldValidationError("INVALID_LINE_ITEM", "line_item_id", "Line item ID cannot be empty")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewFieldValidationError("INVALID_ORDER", "order_id", "Order ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewFieldValidationError("INVALID_PRODUCT", "product_id", "Product ID cannot be empty")
	}
	if !direction.IsValid() {
		return nil, shared.NewFieldValidationError("INVALID_DIRECTION", "direction", "Invalid stock direction")
	}
	if quantity <= 0 {
		return nil, shared.NewFieldValidationError("INVALID_QUANTITY", "quantity", "Quantity must be positive")
	}
	if !sourceType.IsValid() {
		return nil, shared.NewFieldValidationError("INVALID_SOURCE_TYPE", "source_type", "Invalid source type")
	}
	if actorID == uuid.Nil {
		return nil, shared.NewFieldValidationError("INVALID_ACTOR", "actor_id", "Actor ID cannot be empty")
	}

	return &Transaction{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		LineItemID:    lineItemID,
		OrderID:       orderID,
		ProductID:     productID,
		VariantID:     variantID,
		Direction:     direction,
		Quantity:      quantity,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		SourceType:    sourceType,
		ActorID:       actorID,
		OccurredAt:    time.Now(),
	}, nil
}

// SignedQuantity returns the quantity with sign based on direction.
// Positive for inbound, negative for outbound.
func (t *Transaction) SignedQuantity() int64 {
	if t.Direction == DirectionOutbound {
		return -t.Quantity
	}
	return t.Quantity
}

// IsInbound returns true if this movement increased on-hand stock
func (t *Transaction) IsInbound() bool {
	return t.Direction == DirectionInbound
}

// WithOccurredAt overrides the transaction timestamp
func (t *Transaction) WithOccurredAt(at time.Time) *Transaction {
	t.OccurredAt = at
	return t
}
