package fulfillment

import (
	"context"

	"go.uber.org/zap"

	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/stock"
)

// MovementAuditHandler writes an audit log line for every committed stock
// movement. It is registered behind an idempotency wrapper so redelivered
// events are logged once.
type MovementAuditHandler struct {
	logger *zap.Logger
}

// NewMovementAuditHandler creates a new movement audit handler
func NewMovementAuditHandler(logger *zap.Logger) *MovementAuditHandler {
	return &MovementAuditHandler{logger: logger.Named("movement_audit")}
}

// EventTypes returns the event types this handler subscribes to
func (h *MovementAuditHandler) EventTypes() []string {
	return []string{stock.EventTypeStockMovementRecorded}
}

// Handle logs the movement
func (h *MovementAuditHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	movement, ok := event.(*stock.StockMovementRecordedEvent)
	if !ok {
		return nil
	}
	h.logger.Info("stock movement recorded",
		zap.String("transaction_id", movement.TransactionID.String()),
		zap.String("order_id", movement.OrderID.String()),
		zap.String("line_item_id", movement.LineItemID.String()),
		zap.String("product_id", movement.ProductID.String()),
		zap.String("direction", movement.Direction.String()),
		zap.Int64("quantity", movement.Quantity),
		zap.Int64("balance_after", movement.BalanceAfter),
		zap.String("actor_id", movement.ActorID.String()))
	return nil
}

var _ shared.EventHandler = (*MovementAuditHandler)(nil)
