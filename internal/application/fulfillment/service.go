package fulfillment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/order"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// Service orchestrates the per-order, multi-item fulfillment workflow.
//
// Each requested line runs in its own transaction that locks the order row,
// re-reads the current item state, validates the request, appends the stock
// movement, updates the on-hand counter and the item's fulfilled counter.
// Lines are processed independently: a committed line stays committed even
// when a later line fails, and callers receive a per-line report instead of
// batch rollback semantics.
type Service struct {
	scope           TransactionScope
	eventPublisher  shared.EventPublisher
	idempotency     shared.IdempotencyStore
	idempotencyConf shared.IdempotencyConfig
	logger          *zap.Logger
}

// NewService creates a new fulfillment Service
func NewService(scope TransactionScope, logger *zap.Logger) *Service {
	return &Service{
		scope:           scope,
		idempotencyConf: shared.DefaultIdempotencyConfig(),
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables request deduplication for fulfillment calls
// that carry an idempotency key. Without a store, keys are ignored.
func (s *Service) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotency = store
}

// Fulfill processes a fulfillment request against an order.
//
// Entries with a non-positive quantity are skipped. If every entry is
// non-positive or the request is empty, the whole call fails with a
// validation error and no stock transaction is produced. Cancelled and
// already fulfilled orders reject the request with a conflict error.
func (s *Service) Fulfill(ctx context.Context, tenantID, orderID, actorID uuid.UUID, req FulfillRequest) (*FulfillResponse, error) {
	if actorID == uuid.Nil {
		return nil, shared.NewFieldValidationError("INVALID_ACTOR", "actor_id", "Actor ID cannot be empty")
	}

	results := make([]ItemResult, 0, len(req.Items))
	anyPositive := false
	for _, input := range req.Items {
		if input.Quantity <= 0 {
			results = append(results, ItemResult{
				LineItemID:        input.LineItemID,
				RequestedQuantity: input.Quantity,
				Outcome:           ItemOutcomeSkipped,
			})
			continue
		}
		anyPositive = true
		results = append(results, ItemResult{
			LineItemID:        input.LineItemID,
			RequestedQuantity: input.Quantity,
		})
	}
	if !anyPositive {
		return nil, shared.NewFieldValidationError("NOTHING_TO_FULFILL", "items", "Nothing to fulfill")
	}

	if err := s.claimIdempotencyKey(ctx, tenantID, orderID, req.IdempotencyKey); err != nil {
		return nil, err
	}

	// Reject terminal orders up front so a cancelled or fulfilled order fails
	// the whole call rather than every line individually.
	if err := s.checkOrderAcceptsFulfillment(ctx, tenantID, orderID); err != nil {
		return nil, err
	}

	var events []shared.DomainEvent

	for idx := range results {
		if results[idx].Outcome == ItemOutcomeSkipped {
			continue
		}

		lineItemID := results[idx].LineItemID
		quantity := results[idx].RequestedQuantity

		var committedItem *order.LineItem
		var movement *stock.Transaction

		err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			// Locks the order row, serializing concurrent fulfillment
			// against the same order. Validation below always sees the
			// latest committed counters.
			o, err := repos.OrderRepo().FindByIDForUpdate(ctx, tenantID, orderID)
			if err != nil {
				return err
			}
			if err := o.CanAcceptFulfillment(); err != nil {
				return err
			}

			item := o.GetItem(lineItemID)
			if item == nil {
				return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
			}
			if err := item.ValidateFulfillmentRequest(quantity); err != nil {
				return err
			}

			level, err := s.findOrCreateLevel(ctx, repos, o, item)
			if err != nil {
				return err
			}

			balanceBefore := level.QuantityOnHand
			direction := stockDirection(o)
			if err := level.Apply(direction, quantity); err != nil {
				return err
			}

			tx, err := stock.NewTransaction(
				tenantID,
				item.ID,
				o.ID,
				item.ProductID,
				item.VariantID,
				direction,
				quantity,
				balanceBefore,
				level.QuantityOnHand,
				sourceType(o),
				actorID,
			)
			if err != nil {
				return err
			}

			// The three writes below share one transaction: either the
			// movement, the stock counter and the item counter all commit,
			// or none of them do.
			if err := repos.StockTransactionRepo().Append(ctx, tx); err != nil {
				return err
			}
			if err := repos.StockLevelRepo().Save(ctx, level); err != nil {
				return err
			}
			if err := item.ApplyFulfillment(quantity); err != nil {
				return err
			}
			if err := repos.LineItemRepo().UpdateFulfilledQuantity(ctx, item); err != nil {
				return err
			}

			committedItem = item
			movement = tx
			return nil
		})

		if err != nil {
			err = shared.EnsurePersistence("fulfillment.line", err)
			results[idx].Outcome = ItemOutcomeFailed
			results[idx].Error = err.Error()
			results[idx].ErrorCode = errorCode(err)
			s.logger.Warn("fulfillment line rejected",
				zap.String("order_id", orderID.String()),
				zap.String("line_item_id", lineItemID.String()),
				zap.Int64("quantity", quantity),
				zap.Error(err))
			continue
		}

		results[idx].Outcome = ItemOutcomeFulfilled
		results[idx].QuantityFulfilled = committedItem.QuantityFulfilled
		results[idx].Remaining = committedItem.Remaining()
		events = append(events, stock.NewStockMovementRecordedEvent(movement))

		s.logger.Info("fulfillment recorded",
			zap.String("order_id", orderID.String()),
			zap.String("line_item_id", lineItemID.String()),
			zap.String("direction", movement.Direction.String()),
			zap.Int64("quantity", quantity),
			zap.Int64("balance_after", movement.BalanceAfter))
	}

	// Status recomputation always runs from freshly read item state, in its
	// own transaction, never from counters accumulated above.
	response := &FulfillResponse{OrderID: orderID, Results: results}
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByIDForUpdate(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if o.RecomputeStatus() {
			if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
				return err
			}
			events = append(events, o.GetDomainEvents()...)
			o.ClearDomainEvents()
		}
		response.OrderStatus = o.Status.String()
		response.FulfilledAt = o.FulfilledAt
		return nil
	})
	if err != nil {
		return nil, shared.EnsurePersistence("fulfillment.status", err)
	}

	s.publishEvents(ctx, orderID, events)

	return response, nil
}

// ListByOrder lists the movements recorded against an order
func (s *Service) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]TransactionResponse, error) {
	var out []TransactionResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		txs, err := repos.StockTransactionRepo().FindByOrder(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		out = toTransactionResponses(txs)
		return nil
	})
	if err != nil {
		return nil, shared.EnsurePersistence("fulfillment.list", err)
	}
	return out, nil
}

// ListByLineItem lists the movements recorded against one line item
func (s *Service) ListByLineItem(ctx context.Context, tenantID, lineItemID uuid.UUID) ([]TransactionResponse, error) {
	var out []TransactionResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		txs, err := repos.StockTransactionRepo().FindByLineItem(ctx, tenantID, lineItemID)
		if err != nil {
			return err
		}
		out = toTransactionResponses(txs)
		return nil
	})
	if err != nil {
		return nil, shared.EnsurePersistence("fulfillment.list", err)
	}
	return out, nil
}

// ListByProduct lists the movements for a product with filtering
func (s *Service) ListByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]TransactionResponse, error) {
	var out []TransactionResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		txs, err := repos.StockTransactionRepo().FindByProduct(ctx, tenantID, productID, filter)
		if err != nil {
			return err
		}
		out = toTransactionResponses(txs)
		return nil
	})
	if err != nil {
		return nil, shared.EnsurePersistence("fulfillment.list", err)
	}
	return out, nil
}

func (s *Service) checkOrderAcceptsFulfillment(ctx context.Context, tenantID, orderID uuid.UUID) error {
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		return o.CanAcceptFulfillment()
	})
	return shared.EnsurePersistence("fulfillment.precheck", err)
}

// claimIdempotencyKey marks the request key as processed before any line is
// touched. A replay within the TTL is rejected with a conflict. A store
// failure degrades to processing the request; the key stays claimed on a
// failed call, so the TTL acts as a retry cooldown.
func (s *Service) claimIdempotencyKey(ctx context.Context, tenantID, orderID uuid.UUID, key string) error {
	if key == "" || s.idempotency == nil || !s.idempotencyConf.Enabled {
		return nil
	}
	storeKey := "fulfillment:" + tenantID.String() + ":" + orderID.String() + ":" + key
	fresh, err := s.idempotency.MarkProcessed(ctx, storeKey, s.idempotencyConf.TTL)
	if err != nil {
		s.logger.Warn("idempotency check unavailable, processing request",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
		return nil
	}
	if !fresh {
		return shared.NewConflictError("ALREADY_PROCESSED", "Request with this idempotency key was already processed")
	}
	return nil
}

// findOrCreateLevel loads the stock level under a row lock. A missing level
// is lazily created for inbound movements; outbound movements against a
// missing level fail as insufficient stock.
func (s *Service) findOrCreateLevel(ctx context.Context, repos TransactionalRepositories, o *order.Order, item *order.LineItem) (*stock.StockLevel, error) {
	level, err := repos.StockLevelRepo().FindByProductForUpdate(ctx, o.TenantID, item.ProductID, item.VariantID)
	if err == nil {
		return level, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if stockDirection(o) == stock.DirectionOutbound {
		return nil, shared.NewConflictError("INSUFFICIENT_STOCK", "No stock on hand for product")
	}

	level, err = stock.NewStockLevel(o.TenantID, item.ProductID, item.VariantID)
	if err != nil {
		return nil, err
	}
	if err := repos.StockLevelRepo().Save(ctx, level); err != nil {
		return nil, err
	}
	return level, nil
}

func (s *Service) publishEvents(ctx context.Context, orderID uuid.UUID, events []shared.DomainEvent) {
	if len(events) == 0 || s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
	}
}

func stockDirection(o *order.Order) stock.Direction {
	if o.StockDirection() == order.StockDirectionInbound {
		return stock.DirectionInbound
	}
	return stock.DirectionOutbound
}

func sourceType(o *order.Order) stock.SourceType {
	if o.Type == order.OrderTypePurchase {
		return stock.SourceTypePurchaseOrder
	}
	return stock.SourceTypeSalesOrder
}

func errorCode(err error) string {
	var ve *shared.ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	var ce *shared.ConflictError
	if errors.As(err, &ce) {
		return ce.Code
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	var pe *shared.PersistenceError
	if errors.As(err, &pe) {
		return "PERSISTENCE_ERROR"
	}
	return "INTERNAL_ERROR"
}

func toTransactionResponses(txs []stock.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i := range txs {
		out[i] = TransactionResponse{
			ID:            txs[i].ID,
			LineItemID:    txs[i].LineItemID,
			OrderID:       txs[i].OrderID,
			ProductID:     txs[i].ProductID,
			VariantID:     txs[i].VariantID,
			Direction:     txs[i].Direction.String(),
			Quantity:      txs[i].Quantity,
			BalanceBefore: txs[i].BalanceBefore,
			BalanceAfter:  txs[i].BalanceAfter,
			SourceType:    txs[i].SourceType.String(),
			ActorID:       txs[i].ActorID,
			OccurredAt:    txs[i].OccurredAt,
		}
	}
	return out
}
