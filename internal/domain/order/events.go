package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated   = "OrderCreated"
	EventTypeOrderSubmitted = "OrderSubmitted"
	EventTypeOrderFulfilled = "OrderFulfilled"
	EventTypeOrderCancelled = "OrderCancelled"
)

// OrderItemInfo represents item information for events
type OrderItemInfo struct {
	ItemID            uuid.UUID       `json:"item_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	ProductName       string          `json:"product_name"`
	QuantityOrdered   int64           `json:"quantity_ordered"`
	QuantityFulfilled int64           `json:"quantity_fulfilled"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalPrice        decimal.Decimal `json:"total_price"`
}

func itemInfos(o *Order) []OrderItemInfo {
	items := make([]OrderItemInfo, len(o.Items))
	for i := range o.Items {
		items[i] = OrderItemInfo{
			ItemID:            o.Items[i].ID,
			ProductID:         o.Items[i].ProductID,
			ProductName:       o.Items[i].ProductName,
			QuantityOrdered:   o.Items[i].QuantityOrdered,
			QuantityFulfilled: o.Items[i].QuantityFulfilled,
			UnitPrice:         o.Items[i].UnitPrice,
			TotalPrice:        o.Items[i].TotalPrice,
		}
	}
	return items
}

// OrderCreatedEvent is raised when a new order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID          uuid.UUID `json:"order_id"`
	OrderNumber      string    `json:"order_number"`
	OrderType        OrderType `json:"order_type"`
	CounterpartyID   uuid.UUID `json:"counterparty_id"`
	CounterpartyName string    `json:"counterparty_name"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:          o.ID,
		OrderNumber:      o.OrderNumber,
		OrderType:        o.Type,
		CounterpartyID:   o.CounterpartyID,
		CounterpartyName: o.CounterpartyName,
	}
}

// EventType returns the event type name
func (e *OrderCreatedEvent) EventType() string {
	return EventTypeOrderCreated
}

// OrderSubmittedEvent is raised when a draft order is promoted to pending
type OrderSubmittedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	OrderType   OrderType       `json:"order_type"`
	Items       []OrderItemInfo `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderSubmittedEvent creates a new OrderSubmittedEvent
func NewOrderSubmittedEvent(o *Order) *OrderSubmittedEvent {
	return &OrderSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderSubmitted, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		OrderType:       o.Type,
		Items:           itemInfos(o),
		TotalAmount:     o.TotalAmount,
	}
}

// EventType returns the event type name
func (e *OrderSubmittedEvent) EventType() string {
	return EventTypeOrderSubmitted
}

// OrderFulfilledEvent is raised when every line item reaches its ordered quantity
type OrderFulfilledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	OrderType   OrderType       `json:"order_type"`
	Items       []OrderItemInfo `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderFulfilledEvent creates a new OrderFulfilledEvent
func NewOrderFulfilledEvent(o *Order) *OrderFulfilledEvent {
	return &OrderFulfilledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderFulfilled, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		OrderType:       o.Type,
		Items:           itemInfos(o),
		TotalAmount:     o.TotalAmount,
	}
}

// EventType returns the event type name
func (e *OrderFulfilledEvent) EventType() string {
	return EventTypeOrderFulfilled
}

// OrderCancelledEvent is raised when an order is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	OrderType    OrderType `json:"order_type"`
	CancelReason string    `json:"cancel_reason"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(o *Order) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		OrderType:       o.Type,
		CancelReason:    o.CancelReason,
	}
}

// EventType returns the event type name
func (e *OrderCancelledEvent) EventType() string {
	return EventTypeOrderCancelled
}
