package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/order"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// Service handles order lifecycle operations: creation, replace-style
// updates, deletion, cancellation and queries. Fulfillment is handled by the
// fulfillment service.
type Service struct {
	orderRepo      order.Repository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new order Service
func NewService(orderRepo order.Repository, logger *zap.Logger) *Service {
	return &Service{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new order with its items as one consistency unit.
// The total amount is always computed server-side from the items.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewFieldValidationError("EMPTY_ITEMS", "items", "Order must have at least one item")
	}

	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx, tenantID, req.Type)
	if err != nil {
		return nil, shared.EnsurePersistence("order.number", err)
	}

	o, err := order.NewOrder(tenantID, orderNumber, req.Type, req.CounterpartyID, req.CounterpartyName)
	if err != nil {
		return nil, err
	}

	if err := o.UpdateHeader(req.CounterpartyID, req.CounterpartyName, req.ShippingAddress, req.Notes, req.ExpectedDelivery); err != nil {
		return nil, err
	}

	for _, input := range req.Items {
		unitPrice := valueobject.NewMoneyUSD(input.UnitPrice)
		item, err := o.AddItem(input.ProductID, input.VariantID, input.ProductName, input.ProductSKU, input.Quantity, unitPrice)
		if err != nil {
			return nil, err
		}
		if input.Notes != "" {
			o.GetItem(item.ID).SetNotes(input.Notes)
		}
	}

	if !req.AsDraft {
		if err := o.Submit(); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, shared.EnsurePersistence("order.save", err)
	}

	s.publishEvents(ctx, o)

	s.logger.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("type", o.Type.String()),
		zap.String("status", o.Status.String()))

	response := ToOrderResponse(o)
	return &response, nil
}

// GetByID retrieves an order by ID
func (s *Service) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// GetByOrderNumber retrieves an order by its human-readable number
func (s *Service) GetByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, tenantID, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// List retrieves orders with filtering and pagination
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter OrderListFilter) ([]OrderListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.Type != nil {
		domainFilter.Filters["type"] = string(*filter.Type)
	}
	if filter.CounterpartyID != nil {
		domainFilter.Filters["counterparty_id"] = *filter.CounterpartyID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	orders, err := s.orderRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orderRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToOrderListItemResponses(orders), total, nil
}

// Update performs a full replace-style update of the order header and item
// set. Allowed only while the order is in draft or pending status. Items
// absent from the request are deleted unless they already recorded
// fulfillments.
func (s *Service) Update(ctx context.Context, tenantID, orderID uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.UpdateHeader(req.CounterpartyID, req.CounterpartyName, req.ShippingAddress, req.Notes, req.ExpectedDelivery); err != nil {
		return nil, err
	}

	changes := make([]order.ItemChange, len(req.Items))
	for i, input := range req.Items {
		changes[i] = order.ItemChange{
			ItemID:      input.ItemID,
			ProductID:   input.ProductID,
			VariantID:   input.VariantID,
			ProductName: input.ProductName,
			ProductSKU:  input.ProductSKU,
			Quantity:    input.Quantity,
			UnitPrice:   valueobject.NewMoneyUSD(input.UnitPrice),
			Notes:       input.Notes,
		}
	}

	if err := o.ReplaceItems(changes); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, shared.EnsurePersistence("order.save", err)
	}

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// Delete hard-deletes an order and its items as one transaction.
// Permitted only from draft or cancelled status.
func (s *Service) Delete(ctx context.Context, tenantID, orderID uuid.UUID) error {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return err
	}

	if !o.CanDelete() {
		return shared.NewStatusConflictError("INVALID_STATE", "Only draft or cancelled orders can be deleted", o.Status.String())
	}

	if err := s.orderRepo.DeleteForTenant(ctx, tenantID, orderID); err != nil {
		return shared.EnsurePersistence("order.delete", err)
	}

	s.logger.Info("order deleted",
		zap.String("order_id", orderID.String()),
		zap.String("order_number", o.OrderNumber))

	return nil
}

// Submit promotes a draft order to pending
func (s *Service) Submit(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.Submit(); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, shared.EnsurePersistence("order.save", err)
	}

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// Cancel cancels a draft or pending order
func (s *Service) Cancel(ctx context.Context, tenantID, orderID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, shared.EnsurePersistence("order.save", err)
	}

	s.publishEvents(ctx, o)

	s.logger.Info("order cancelled",
		zap.String("order_id", o.ID.String()),
		zap.String("reason", req.Reason))

	response := ToOrderResponse(o)
	return &response, nil
}

// StatusSummary reports order counts per lifecycle status for a tenant
func (s *Service) StatusSummary(ctx context.Context, tenantID uuid.UUID) (*StatusSummaryResponse, error) {
	summary := &StatusSummaryResponse{}
	counts := []struct {
		status order.OrderStatus
		target *int64
	}{
		{order.OrderStatusDraft, &summary.Draft},
		{order.OrderStatusPending, &summary.Pending},
		{order.OrderStatusFulfilled, &summary.Fulfilled},
		{order.OrderStatusCancelled, &summary.Cancelled},
	}

	for _, c := range counts {
		n, err := s.orderRepo.CountByStatus(ctx, tenantID, c.status)
		if err != nil {
			return nil, err
		}
		*c.target = n
	}

	return summary, nil
}

// publishEvents publishes pending domain events after a successful commit.
// Event delivery is best-effort; failures are logged and never surfaced.
func (s *Service) publishEvents(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	if len(events) == 0 || s.eventPublisher == nil {
		o.ClearDomainEvents()
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}
	o.ClearDomainEvents()
}
