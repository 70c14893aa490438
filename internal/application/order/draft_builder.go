package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/order"
	"github.com/stockflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DraftItem is one line accumulated in an in-memory draft
type DraftItem struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	VariantID   *uuid.UUID
	ProductName string
	ProductSKU  string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Notes       string
}

// Total returns quantity * unit price for this draft line
func (d *DraftItem) Total() decimal.Decimal {
	return d.UnitPrice.Mul(decimal.NewFromInt(d.Quantity))
}

// CommitResult is the outcome of committing a draft. Warning carries a
// non-fatal notification failure; the order itself is always committed when
// Order is non-nil.
type CommitResult struct {
	Order   *OrderResponse
	Warning string
}

// DraftBuilder accumulates order header fields and line items in memory and
// materializes them into one create call. The running totals it maintains are
// a convenience for callers; the committed total is always recomputed by the
// order aggregate from the persisted items.
type DraftBuilder struct {
	service  *Service
	notifier Notifier
	logger   *zap.Logger

	orderType        order.OrderType
	counterpartyID   uuid.UUID
	counterpartyName string
	recipient        string
	shippingAddress  string
	expectedDelivery *time.Time
	notes            string
	notify           bool
	items            []DraftItem
}

// NewDraftBuilder creates a draft builder for the given order type
func NewDraftBuilder(service *Service, notifier Notifier, logger *zap.Logger, orderType order.OrderType) *DraftBuilder {
	return &DraftBuilder{
		service:   service,
		notifier:  notifier,
		logger:    logger,
		orderType: orderType,
		items:     make([]DraftItem, 0),
	}
}

// SetCounterparty selects the customer or vendor for the draft
func (b *DraftBuilder) SetCounterparty(id uuid.UUID, name string) *DraftBuilder {
	b.counterpartyID = id
	b.counterpartyName = name
	return b
}

// SetRecipient sets the notification recipient address
func (b *DraftBuilder) SetRecipient(recipient string) *DraftBuilder {
	b.recipient = recipient
	return b
}

// SetShipping sets the delivery details
func (b *DraftBuilder) SetShipping(address string, expectedDelivery *time.Time) *DraftBuilder {
	b.shippingAddress = address
	b.expectedDelivery = expectedDelivery
	return b
}

// SetNotes sets the free-text order notes
func (b *DraftBuilder) SetNotes(notes string) *DraftBuilder {
	b.notes = notes
	return b
}

// SetNotify controls whether the counterparty is notified after commit
func (b *DraftBuilder) SetNotify(notify bool) *DraftBuilder {
	b.notify = notify
	return b
}

// AddItem adds a product line to the draft
func (b *DraftBuilder) AddItem(productID uuid.UUID, variantID *uuid.UUID, productName, productSKU string, quantity int64, unitPrice decimal.Decimal) (*DraftItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewFieldValidationError("INVALID_PRODUCT", "product_id", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewFieldValidationError("INVALID_QUANTITY", "quantity", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewFieldValidationError("INVALID_PRICE", "unit_price", "Unit price cannot be negative")
	}

	item := DraftItem{
		ID:          uuid.New(),
		ProductID:   productID,
		VariantID:   variantID,
		ProductName: productName,
		ProductSKU:  productSKU,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}
	b.items = append(b.items, item)
	return &b.items[len(b.items)-1], nil
}

// RemoveItem removes a line from the draft
func (b *DraftBuilder) RemoveItem(itemID uuid.UUID) error {
	for idx := range b.items {
		if b.items[idx].ID == itemID {
			b.items = append(b.items[:idx], b.items[idx+1:]...)
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Draft item not found")
}

// SetQuantity updates the quantity of a draft line
func (b *DraftBuilder) SetQuantity(itemID uuid.UUID, quantity int64) error {
	if quantity <= 0 {
		return shared.NewFieldValidationError("INVALID_QUANTITY", "quantity", "Quantity must be positive")
	}
	item := b.getItem(itemID)
	if item == nil {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Draft item not found")
	}
	item.Quantity = quantity
	return nil
}

// SetUnitPrice updates the unit price of a draft line
func (b *DraftBuilder) SetUnitPrice(itemID uuid.UUID, unitPrice decimal.Decimal) error {
	if unitPrice.IsNegative() {
		return shared.NewFieldValidationError("INVALID_PRICE", "unit_price", "Unit price cannot be negative")
	}
	item := b.getItem(itemID)
	if item == nil {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Draft item not found")
	}
	item.UnitPrice = unitPrice
	return nil
}

// Items returns the current draft lines
func (b *DraftBuilder) Items() []DraftItem {
	return b.items
}

// Total returns the running total of the draft
func (b *DraftBuilder) Total() decimal.Decimal {
	total := decimal.Zero
	for idx := range b.items {
		total = total.Add(b.items[idx].Total())
	}
	return total
}

// Commit materializes the draft into one order create call. With asDraft the
// order stays in draft status, otherwise it is submitted as pending. If the
// notify flag is set and commit succeeds, the counterparty notification is
// dispatched; its failure is reported as a warning, never as an error.
func (b *DraftBuilder) Commit(ctx context.Context, tenantID uuid.UUID, asDraft bool) (*CommitResult, error) {
	if b.counterpartyID == uuid.Nil {
		return nil, shared.NewFieldValidationError("MISSING_COUNTERPARTY", "counterparty_id", "No counterparty selected")
	}
	if len(b.items) == 0 {
		return nil, shared.NewFieldValidationError("EMPTY_ITEMS", "items", "Draft has no items")
	}

	req := CreateOrderRequest{
		Type:             b.orderType,
		CounterpartyID:   b.counterpartyID,
		CounterpartyName: b.counterpartyName,
		ShippingAddress:  b.shippingAddress,
		ExpectedDelivery: b.expectedDelivery,
		Notes:            b.notes,
		AsDraft:          asDraft,
		Items:            make([]OrderItemInput, len(b.items)),
	}
	for i := range b.items {
		req.Items[i] = OrderItemInput{
			ProductID:   b.items[i].ProductID,
			VariantID:   b.items[i].VariantID,
			ProductName: b.items[i].ProductName,
			ProductSKU:  b.items[i].ProductSKU,
			Quantity:    b.items[i].Quantity,
			UnitPrice:   b.items[i].UnitPrice,
			Notes:       b.items[i].Notes,
		}
	}

	resp, err := b.service.Create(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	result := &CommitResult{Order: resp}

	if b.notify && b.notifier != nil {
		notification := Notification{
			Recipient: b.recipient,
			Subject:   fmt.Sprintf("Order %s", resp.OrderNumber),
			Body:      fmt.Sprintf("Order %s for %s totaling %s has been created.", resp.OrderNumber, resp.CounterpartyName, resp.TotalAmount.StringFixed(2)),
		}
		if err := b.notifier.Send(ctx, notification); err != nil {
			result.Warning = fmt.Sprintf("order committed but notification failed: %v", err)
			b.logger.Warn("notification dispatch failed",
				zap.String("order_number", resp.OrderNumber),
				zap.Error(err))
		}
	}

	return result, nil
}

func (b *DraftBuilder) getItem(itemID uuid.UUID) *DraftItem {
	for idx := range b.items {
		if b.items[idx].ID == itemID {
			return &b.items[idx]
		}
	}
	return nil
}
