package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

// OrderType distinguishes sales orders from purchase orders
type OrderType string

const (
	// OrderTypeSales is an order promising goods to a customer, fulfilled by decrementing stock
	OrderTypeSales OrderType = "SALES"
	// OrderTypePurchase is an order requesting goods from a vendor, received by incrementing stock
	OrderTypePurchase OrderType = "PURCHASE"
)

// IsValid checks if the order type is valid
func (t OrderType) IsValid() bool {
	return t == OrderTypeSales || t == OrderTypePurchase
}

// String returns the string representation of OrderType
func (t OrderType) String() string {
	return string(t)
}

// StockDirection indicates which way fulfillment moves on-hand stock
type StockDirection string

const (
	// StockDirectionInbound increments on-hand stock (purchase receipt)
	StockDirectionInbound StockDirection = "INBOUND"
	// StockDirectionOutbound decrements on-hand stock (sales fulfillment)
	StockDirectionOutbound StockDirection = "OUTBOUND"
)

// String returns the string representation of StockDirection
func (d StockDirection) String() string {
	return string(d)
}

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusFulfilled OrderStatus = "FULFILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusPending, OrderStatusFulfilled, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusPending || target == OrderStatusCancelled
	case OrderStatusPending:
		return target == OrderStatusFulfilled || target == OrderStatusCancelled
	case OrderStatusFulfilled, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true for fulfilled and cancelled states
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFulfilled || s == OrderStatusCancelled
}

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// Order represents an order aggregate root (sales or purchase variant).
// It owns its line items and the referential integrity between them.
type Order struct {
	shared.TenantAggregateRoot
	OrderNumber      string
	Type             OrderType
	CounterpartyID   uuid.UUID // Customer for sales, vendor for purchase
	CounterpartyName string
	OrderDate        time.Time
	Status           OrderStatus
	PaymentStatus    PaymentStatus
	ShippingAddress  string
	ExpectedDelivery *time.Time
	Notes            string
	TotalAmount      decimal.Decimal
	Items            []LineItem
	FulfilledAt      *time.Time
	CancelledAt      *time.Time
	CancelReason     string
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order in draft status
func NewOrder(tenantID uuid.UUID, orderNumber string, orderType OrderType, counterpartyID uuid.UUID, counterpartyName string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewFieldValidationError("INVALID_ORDER_NUMBER", "order_number", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewFieldValidationError("INVALID_ORDER_NUMBER", "order_number", "Order number cannot exceed 50 characters")
	}
	if !orderType.IsValid() {
		return nil, shared.NewFieldValidationError("INVALID_ORDER_TYPE", "type", "Order type must be SALES or PURCHASE")
	}
	if counterpartyID == uuid.Nil {
		return nil, shared.NewFieldValidationError("MISSING_COUNTERPARTY", "counterparty_id", "Counterparty reference is required")
	}
	if counterpartyName == "" {
		return nil, shared.NewFieldValidationError("MISSING_COUNTERPARTY", "counterparty_name", "Counterparty name is required")
	}

	order := &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		Type:                orderType,
		CounterpartyID:      counterpartyID,
		CounterpartyName:    counterpartyName,
		OrderDate:           time.Now(),
		Status:              OrderStatusDraft,
		PaymentStatus:       PaymentStatusUnpaid,
		TotalAmount:         decimal.Zero,
		Items:               make([]LineItem, 0),
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// StockDirection returns the direction of the stock movement produced by
// fulfilling this order: sales decrement on-hand stock, purchases increment it.
func (o *Order) StockDirection() StockDirection {
	if o.Type == OrderTypePurchase {
		return StockDirectionInbound
	}
	return StockDirectionOutbound
}

// CanModifyItems returns true if the item set may still be edited
func (o *Order) CanModifyItems() bool {
	return o.Status == OrderStatusDraft || o.Status == OrderStatusPending
}

// AddItem adds a new line item to the order.
// Only allowed while the order is in draft or pending status.
func (o *Order) AddItem(productID uuid.UUID, variantID *uuid.UUID, productName, productSKU string, quantity int64, unitPrice valueobject.Money) (*LineItem, error) {
	if !o.CanModifyItems() {
		return nil, shared.NewStatusConflictError("INVALID_STATE", "Cannot add items to an order in a terminal status", o.Status.String())
	}

	for idx := range o.Items {
		if o.Items[idx].MatchesProduct(productID, variantID) {
			return nil, shared.NewFieldValidationError("DUPLICATE_PRODUCT", "product_id", "Product already exists in order, update its quantity instead")
		}
	}

	item, err := NewLineItem(o.ID, productID, variantID, productName, productSKU, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()

	return item, nil
}

// UpdateItemQuantity updates the ordered quantity of an existing item
func (o *Order) UpdateItemQuantity(itemID uuid.UUID, quantity int64) error {
	if !o.CanModifyItems() {
		return shared.NewStatusConflictError("INVALID_STATE", "Cannot update items on an order in a terminal status", o.Status.String())
	}

	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			if err := o.Items[idx].UpdateQuantity(quantity); err != nil {
				return err
			}
			o.recalculateTotal()
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// UpdateItemPrice updates the unit price of an existing item
func (o *Order) UpdateItemPrice(itemID uuid.UUID, unitPrice valueobject.Money) error {
	if !o.CanModifyItems() {
		return shared.NewStatusConflictError("INVALID_STATE", "Cannot update items on an order in a terminal status", o.Status.String())
	}

	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			if err := o.Items[idx].UpdateUnitPrice(unitPrice); err != nil {
				return err
			}
			o.recalculateTotal()
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// RemoveItem removes a line item from the order.
// A partially fulfilled item can never be removed, and the last remaining
// item cannot be removed either.
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if !o.CanModifyItems() {
		return shared.NewStatusConflictError("INVALID_STATE", "Cannot remove items from an order in a terminal status", o.Status.String())
	}
	if len(o.Items) == 1 && o.Items[0].ID == itemID {
		return shared.NewFieldValidationError("LAST_ITEM", "items", "Cannot remove the last remaining item of an order")
	}

	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			if o.Items[idx].IsPartiallyFulfilled() {
				return shared.NewStatusConflictError("ITEM_PARTIALLY_FULFILLED", "Cannot remove a line item that has recorded fulfillments", o.Status.String())
			}
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotal()
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// ReplaceItems performs a full replace-style update of the item set.
// Items carrying a known ID are updated in place, items with unknown or nil
// IDs are inserted, and current items absent from the new set are deleted.
// Deleting a partially fulfilled item fails with a conflict.
func (o *Order) ReplaceItems(newItems []ItemChange) error {
	if !o.CanModifyItems() {
		return shared.NewStatusConflictError("INVALID_STATE", "Cannot replace items on an order in a terminal status", o.Status.String())
	}
	if len(newItems) == 0 {
		return shared.NewFieldValidationError("EMPTY_ITEMS", "items", "Order must have at least one item")
	}

	keep := make(map[uuid.UUID]bool, len(newItems))
	for _, change := range newItems {
		if change.ItemID != nil {
			keep[*change.ItemID] = true
		}
	}

	// Reject deletions of partially fulfilled items before mutating anything
	for idx := range o.Items {
		if !keep[o.Items[idx].ID] && o.Items[idx].IsPartiallyFulfilled() {
			return shared.NewStatusConflictError("ITEM_PARTIALLY_FULFILLED", "Cannot delete a line item that has recorded fulfillments", o.Status.String())
		}
	}

	retained := make([]LineItem, 0, len(newItems))
	for idx := range o.Items {
		if keep[o.Items[idx].ID] {
			retained = append(retained, o.Items[idx])
		}
	}
	o.Items = retained

	for _, change := range newItems {
		if change.ItemID != nil {
			existing := o.GetItem(*change.ItemID)
			if existing == nil {
				return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
			}
			if err := existing.UpdateQuantity(change.Quantity); err != nil {
				return err
			}
			if err := existing.UpdateUnitPrice(change.UnitPrice); err != nil {
				return err
			}
			existing.SetNotes(change.Notes)
			continue
		}

		item, err := NewLineItem(o.ID, change.ProductID, change.VariantID, change.ProductName, change.ProductSKU, change.Quantity, change.UnitPrice)
		if err != nil {
			return err
		}
		item.SetNotes(change.Notes)
		o.Items = append(o.Items, *item)
	}

	o.recalculateTotal()
	o.UpdatedAt = time.Now()
	return nil
}

// ItemChange describes one desired line item in a replace-style update.
// A nil ItemID means a new item to insert.
type ItemChange struct {
	ItemID      *uuid.UUID
	ProductID   uuid.UUID
	VariantID   *uuid.UUID
	ProductName string
	ProductSKU  string
	Quantity    int64
	UnitPrice   valueobject.Money
	Notes       string
}

// UpdateHeader updates the editable header fields
func (o *Order) UpdateHeader(counterpartyID uuid.UUID, counterpartyName, shippingAddress, notes string, expectedDelivery *time.Time) error {
	if !o.CanModifyItems() {
		return shared.NewStatusConflictError("INVALID_STATE", "Cannot update an order in a terminal status", o.Status.String())
	}
	if counterpartyID == uuid.Nil {
		return shared.NewFieldValidationError("MISSING_COUNTERPARTY", "counterparty_id", "Counterparty reference is required")
	}
	if counterpartyName == "" {
		return shared.NewFieldValidationError("MISSING_COUNTERPARTY", "counterparty_name", "Counterparty name is required")
	}

	o.CounterpartyID = counterpartyID
	o.CounterpartyName = counterpartyName
	o.ShippingAddress = shippingAddress
	o.Notes = notes
	o.ExpectedDelivery = expectedDelivery
	o.UpdatedAt = time.Now()
	return nil
}

// Submit promotes a draft order to pending, making it ready for execution.
// Requires at least one item.
func (o *Order) Submit() error {
	if !o.Status.CanTransitionTo(OrderStatusPending) {
		return shared.NewStatusConflictError("INVALID_STATE", fmt.Sprintf("Cannot submit order in %s status", o.Status), o.Status.String())
	}
	if len(o.Items) == 0 {
		return shared.NewFieldValidationError("EMPTY_ITEMS", "items", "Cannot submit an order without items")
	}

	o.Status = OrderStatusPending
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewOrderSubmittedEvent(o))

	return nil
}

// Cancel cancels the order. Allowed only from draft or pending.
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewStatusConflictError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status), o.Status.String())
	}
	if reason == "" {
		return shared.NewFieldValidationError("INVALID_REASON", "reason", "Cancel reason is required")
	}

	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderCancelledEvent(o))

	return nil
}

// CanAcceptFulfillment returns an error unless the order may record new fulfillments
func (o *Order) CanAcceptFulfillment() error {
	if o.Status == OrderStatusCancelled {
		return shared.NewStatusConflictError("ORDER_CANCELLED", "Cannot fulfill a cancelled order", o.Status.String())
	}
	if o.Status == OrderStatusFulfilled {
		return shared.NewStatusConflictError("ORDER_FULFILLED", "Order is already fully fulfilled", o.Status.String())
	}
	return nil
}

// RecomputeStatus re-derives the lifecycle status from the item counters.
// When every item is fully fulfilled the order becomes fulfilled and the
// fulfillment timestamp is stamped; otherwise a draft order with recorded
// progress is promoted to pending. Returns true if the status changed.
func (o *Order) RecomputeStatus() bool {
	if o.Status.IsTerminal() {
		return false
	}
	if len(o.Items) == 0 {
		return false
	}

	allFulfilled := true
	for idx := range o.Items {
		if !o.Items[idx].IsFullyFulfilled() {
			allFulfilled = false
			break
		}
	}

	if allFulfilled {
		now := time.Now()
		o.Status = OrderStatusFulfilled
		o.FulfilledAt = &now
		o.UpdatedAt = now
		o.AddDomainEvent(NewOrderFulfilledEvent(o))
		return true
	}

	if o.Status == OrderStatusDraft {
		o.Status = OrderStatusPending
		o.UpdatedAt = time.Now()
		return true
	}

	return false
}

// CanDelete returns true if the order may be hard-deleted
func (o *Order) CanDelete() bool {
	return o.Status == OrderStatusDraft || o.Status == OrderStatusCancelled
}

// MarkPaid updates the payment status
func (o *Order) MarkPaid(status PaymentStatus) error {
	if !status.IsValid() {
		return shared.NewFieldValidationError("INVALID_PAYMENT_STATUS", "payment_status", "Invalid payment status")
	}
	o.PaymentStatus = status
	o.UpdatedAt = time.Now()
	return nil
}

// recalculateTotal recomputes the order total from the current items.
// The total is always derived server-side, never trusted from the caller.
func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for idx := range o.Items {
		total = total.Add(o.Items[idx].TotalPrice)
	}
	o.TotalAmount = total
}

// GetTotalAmountMoney returns the total amount as Money
func (o *Order) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(o.TotalAmount)
}

// GetItem returns an item by its ID
func (o *Order) GetItem(itemID uuid.UUID) *LineItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// ItemCount returns the number of line items
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// IsDraft returns true if the order is in draft status
func (o *Order) IsDraft() bool {
	return o.Status == OrderStatusDraft
}

// IsPending returns true if the order is pending execution
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// IsFulfilled returns true if the order is fully fulfilled
func (o *Order) IsFulfilled() bool {
	return o.Status == OrderStatusFulfilled
}

// IsCancelled returns true if the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}
