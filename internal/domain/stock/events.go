package stock

import (
	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeStockLevel = "StockLevel"

// Event type constants
const (
	EventTypeStockMovementRecorded = "StockMovementRecorded"
)

// StockMovementRecordedEvent is raised when a fulfillment movement is committed
type StockMovementRecordedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID `json:"transaction_id"`
	LineItemID    uuid.UUID `json:"line_item_id"`
	OrderID       uuid.UUID `json:"order_id"`
	ProductID     uuid.UUID `json:"product_id"`
	Direction     Direction `json:"direction"`
	Quantity      int64     `json:"quantity"`
	BalanceAfter  int64     `json:"balance_after"`
	ActorID       uuid.UUID `json:"actor_id"`
}

// NewStockMovementRecordedEvent creates a new StockMovementRecordedEvent
func NewStockMovementRecordedEvent(tx *Transaction) *StockMovementRecordedEvent {
	return &StockMovementRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMovementRecorded, AggregateTypeStockLevel, tx.ProductID, tx.TenantID),
		TransactionID:   tx.ID,
		LineItemID:      tx.LineItemID,
		OrderID:         tx.OrderID,
		ProductID:       tx.ProductID,
		Direction:       tx.Direction,
		Quantity:        tx.Quantity,
		BalanceAfter:    tx.BalanceAfter,
		ActorID:         tx.ActorID,
	}
}

// EventType returns the event type name
func (e *StockMovementRecordedEvent) EventType() string {
	return EventTypeStockMovementRecorded
}
