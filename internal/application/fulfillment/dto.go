package fulfillment

import (
	"time"

	"github.com/google/uuid"
)

// ItemOutcome classifies the result of one line in a fulfillment batch
type ItemOutcome string

const (
	// ItemOutcomeFulfilled means the movement was committed
	ItemOutcomeFulfilled ItemOutcome = "FULFILLED"
	// ItemOutcomeSkipped means the requested quantity was zero or negative
	ItemOutcomeSkipped ItemOutcome = "SKIPPED"
	// ItemOutcomeFailed means validation or persistence rejected the line
	ItemOutcomeFailed ItemOutcome = "FAILED"
)

// FulfillRequest represents a per-order, multi-item fulfillment request.
// When IdempotencyKey is set, a replay of the same key against the same
// order is rejected until the key expires.
type FulfillRequest struct {
	Items          []FulfillItemInput `json:"items" binding:"required"`
	IdempotencyKey string             `json:"idempotency_key,omitempty" binding:"omitempty,max=128"`
}

// FulfillItemInput requests a quantity against one line item
type FulfillItemInput struct {
	LineItemID uuid.UUID `json:"line_item_id" binding:"required"`
	Quantity   int64     `json:"quantity"`
}

// ItemResult reports the outcome for one requested line.
// Lines are processed independently: a committed line stays committed even
// when a later line in the same batch fails.
type ItemResult struct {
	LineItemID        uuid.UUID   `json:"line_item_id"`
	RequestedQuantity int64       `json:"requested_quantity"`
	Outcome           ItemOutcome `json:"outcome"`
	Error             string      `json:"error,omitempty"`
	ErrorCode         string      `json:"error_code,omitempty"`
	QuantityFulfilled int64       `json:"quantity_fulfilled"`
	Remaining         int64       `json:"remaining"`
}

// FulfillResponse reports the batch outcome and the recomputed order status
type FulfillResponse struct {
	OrderID     uuid.UUID    `json:"order_id"`
	OrderStatus string       `json:"order_status"`
	FulfilledAt *time.Time   `json:"fulfilled_at,omitempty"`
	Results     []ItemResult `json:"results"`
}

// TransactionResponse represents a stock movement in API responses
type TransactionResponse struct {
	ID            uuid.UUID  `json:"id"`
	LineItemID    uuid.UUID  `json:"line_item_id"`
	OrderID       uuid.UUID  `json:"order_id"`
	ProductID     uuid.UUID  `json:"product_id"`
	VariantID     *uuid.UUID `json:"variant_id,omitempty"`
	Direction     string     `json:"direction"`
	Quantity      int64      `json:"quantity"`
	BalanceBefore int64      `json:"balance_before"`
	BalanceAfter  int64      `json:"balance_after"`
	SourceType    string     `json:"source_type"`
	ActorID       uuid.UUID  `json:"actor_id"`
	OccurredAt    time.Time  `json:"occurred_at"`
}
