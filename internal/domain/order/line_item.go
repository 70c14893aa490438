package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

// LineItem represents one product/quantity/price row within an order.
// It is exclusively owned by one order.
type LineItem struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	ProductID         uuid.UUID
	VariantID         *uuid.UUID
	ProductName       string
	ProductSKU        string
	QuantityOrdered   int64
	QuantityFulfilled int64
	UnitPrice         decimal.Decimal
	TotalPrice        decimal.Decimal
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName returns the table name for GORM
func (LineItem) TableName() string {
	return "order_line_items"
}

// NewLineItem creates a new line item
func NewLineItem(orderID, productID uuid.UUID, variantID *uuid.UUID, productName, productSKU string, quantityOrdered int64, unitPrice valueobject.Money) (*LineItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewFieldValidationError("INVALID_PRODUCT", "product_id", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewFieldValidationError("INVALID_PRODUCT_NAME", "product_name", "Product name cannot be empty")
	}
	if quantityOrdered <= 0 {
		return nil, shared.NewFieldValidationError("INVALID_QUANTITY", "quantity_ordered", "Ordered quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewFieldValidationError("INVALID_PRICE", "unit_price", "Unit price cannot be negative")
	}

	now := time.Now()
	return &LineItem{
		ID:                uuid.New(),
		OrderID:           orderID,
		ProductID:         productID,
		VariantID:         variantID,
		ProductName:       productName,
		ProductSKU:        productSKU,
		QuantityOrdered:   quantityOrdered,
		QuantityFulfilled: 0,
		UnitPrice:         unitPrice.Amount(),
		TotalPrice:        unitPrice.Amount().Mul(decimal.NewFromInt(quantityOrdered)),
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Remaining returns the quantity still open for fulfillment
func (i *LineItem) Remaining() int64 {
	return i.QuantityOrdered - i.QuantityFulfilled
}

// IsFullyFulfilled returns true if the fulfilled quantity reached the ordered quantity
func (i *LineItem) IsFullyFulfilled() bool {
	return i.QuantityFulfilled >= i.QuantityOrdered
}

// IsPartiallyFulfilled returns true if some quantity was fulfilled
func (i *LineItem) IsPartiallyFulfilled() bool {
	return i.QuantityFulfilled > 0
}

// ValidateFulfillmentRequest checks whether the requested quantity can be
// fulfilled against the current counters. It is the single gate preventing
// over-fulfillment and must be evaluated against the latest persisted state
// immediately before commit.
func (i *LineItem) ValidateFulfillmentRequest(requestedQty int64) error {
	if requestedQty <= 0 {
		return shared.NewFieldValidationError("INVALID_QUANTITY", "quantity", "Requested quantity must be positive")
	}
	if remaining := i.Remaining(); requestedQty > remaining {
		return shared.NewFieldValidationError(
			"OVER_FULFILLMENT",
			"quantity",
			fmt.Sprintf("Requested quantity %d exceeds remaining %d", requestedQty, remaining),
		)
	}
	return nil
}

// ApplyFulfillment increments the fulfilled counter after validation.
// The fulfilled quantity is monotonically non-decreasing and never exceeds
// the ordered quantity.
func (i *LineItem) ApplyFulfillment(quantity int64) error {
	if err := i.ValidateFulfillmentRequest(quantity); err != nil {
		return err
	}
	i.QuantityFulfilled += quantity
	i.UpdatedAt = time.Now()
	return nil
}

// UpdateQuantity changes the ordered quantity and recalculates the total price.
// The ordered quantity can never drop below what was already fulfilled.
func (i *LineItem) UpdateQuantity(quantity int64) error {
	if quantity <= 0 {
		return shared.NewFieldValidationError("INVALID_QUANTITY", "quantity_ordered", "Ordered quantity must be positive")
	}
	if quantity < i.QuantityFulfilled {
		return shared.NewConflictError(
			"QUANTITY_BELOW_FULFILLED",
			fmt.Sprintf("Ordered quantity %d cannot drop below already fulfilled %d", quantity, i.QuantityFulfilled),
		)
	}

	i.QuantityOrdered = quantity
	i.TotalPrice = i.UnitPrice.Mul(decimal.NewFromInt(quantity))
	i.UpdatedAt = time.Now()
	return nil
}

// UpdateUnitPrice changes the unit price and recalculates the total price
func (i *LineItem) UpdateUnitPrice(unitPrice valueobject.Money) error {
	if unitPrice.IsNegative() {
		return shared.NewFieldValidationError("INVALID_PRICE", "unit_price", "Unit price cannot be negative")
	}

	i.UnitPrice = unitPrice.Amount()
	i.TotalPrice = i.UnitPrice.Mul(decimal.NewFromInt(i.QuantityOrdered))
	i.UpdatedAt = time.Now()
	return nil
}

// SetNotes sets the free-text notes on the item
func (i *LineItem) SetNotes(notes string) {
	i.Notes = notes
	i.UpdatedAt = time.Now()
}

// GetUnitPriceMoney returns the unit price as Money value object
func (i *LineItem) GetUnitPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(i.UnitPrice)
}

// GetTotalPriceMoney returns the total price as Money value object
func (i *LineItem) GetTotalPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(i.TotalPrice)
}

// MatchesProduct returns true if the item references the given product/variant pair
func (i *LineItem) MatchesProduct(productID uuid.UUID, variantID *uuid.UUID) bool {
	if i.ProductID != productID {
		return false
	}
	if i.VariantID == nil || variantID == nil {
		return i.VariantID == variantID
	}
	return *i.VariantID == *variantID
}
