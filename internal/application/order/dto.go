package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/order"
)

// ==================== Order DTOs ====================

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	Type             order.OrderType   `json:"type" binding:"required,oneof=SALES PURCHASE"`
	CounterpartyID   uuid.UUID         `json:"counterparty_id" binding:"required"`
	CounterpartyName string            `json:"counterparty_name" binding:"required,min=1,max=200"`
	ShippingAddress  string            `json:"shipping_address"`
	ExpectedDelivery *time.Time        `json:"expected_delivery"`
	Notes            string            `json:"notes"`
	Items            []OrderItemInput  `json:"items"`
	AsDraft          bool              `json:"as_draft"`
}

// OrderItemInput represents an item in the create order request
type OrderItemInput struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	VariantID   *uuid.UUID      `json:"variant_id"`
	ProductName string          `json:"product_name" binding:"required,min=1,max=200"`
	ProductSKU  string          `json:"product_sku" binding:"max=50"`
	Quantity    int64           `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Notes       string          `json:"notes"`
}

// UpdateOrderItemInput represents one desired item in a replace-style update.
// A nil ItemID means a new item to insert; current items absent from the
// request are deleted.
type UpdateOrderItemInput struct {
	ItemID      *uuid.UUID      `json:"item_id"`
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	VariantID   *uuid.UUID      `json:"variant_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	Quantity    int64           `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Notes       string          `json:"notes"`
}

// UpdateOrderRequest represents a full replace-style update of header and items
type UpdateOrderRequest struct {
	CounterpartyID   uuid.UUID              `json:"counterparty_id" binding:"required"`
	CounterpartyName string                 `json:"counterparty_name" binding:"required,min=1,max=200"`
	ShippingAddress  string                 `json:"shipping_address"`
	ExpectedDelivery *time.Time             `json:"expected_delivery"`
	Notes            string                 `json:"notes"`
	Items            []UpdateOrderItemInput `json:"items" binding:"required,min=1"`
}

// CancelOrderRequest represents a request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// OrderListFilter represents filter options for order lists
type OrderListFilter struct {
	Search         string             `form:"search"`
	Type           *order.OrderType   `form:"type"`
	CounterpartyID *uuid.UUID         `form:"counterparty_id"`
	Status         *order.OrderStatus `form:"status"`
	StartDate      *time.Time         `form:"start_date"`
	EndDate        *time.Time         `form:"end_date"`
	Page           int                `form:"page" binding:"min=0"`
	PageSize       int                `form:"page_size" binding:"min=0,max=100"`
	OrderBy        string             `form:"order_by"`
	OrderDir       string             `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LineItemResponse represents a line item in API responses
type LineItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	VariantID         *uuid.UUID      `json:"variant_id,omitempty"`
	ProductName       string          `json:"product_name"`
	ProductSKU        string          `json:"product_sku"`
	QuantityOrdered   int64           `json:"quantity_ordered"`
	QuantityFulfilled int64           `json:"quantity_fulfilled"`
	Remaining         int64           `json:"remaining"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	Notes             string          `json:"notes,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID               uuid.UUID          `json:"id"`
	TenantID         uuid.UUID          `json:"tenant_id"`
	OrderNumber      string             `json:"order_number"`
	Type             string             `json:"type"`
	CounterpartyID   uuid.UUID          `json:"counterparty_id"`
	CounterpartyName string             `json:"counterparty_name"`
	OrderDate        time.Time          `json:"order_date"`
	Status           string             `json:"status"`
	PaymentStatus    string             `json:"payment_status"`
	ShippingAddress  string             `json:"shipping_address,omitempty"`
	ExpectedDelivery *time.Time         `json:"expected_delivery,omitempty"`
	Notes            string             `json:"notes,omitempty"`
	TotalAmount      decimal.Decimal    `json:"total_amount"`
	Items            []LineItemResponse `json:"items"`
	ItemCount        int                `json:"item_count"`
	FulfilledAt      *time.Time         `json:"fulfilled_at,omitempty"`
	CancelledAt      *time.Time         `json:"cancelled_at,omitempty"`
	CancelReason     string             `json:"cancel_reason,omitempty"`
	Version          int                `json:"version"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// OrderListItemResponse is a compact order representation for list endpoints
type OrderListItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	OrderNumber      string          `json:"order_number"`
	Type             string          `json:"type"`
	CounterpartyName string          `json:"counterparty_name"`
	OrderDate        time.Time       `json:"order_date"`
	Status           string          `json:"status"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	ItemCount        int             `json:"item_count"`
}

// ToLineItemResponse converts a domain line item to a response DTO
func ToLineItemResponse(item *order.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:                item.ID,
		ProductID:         item.ProductID,
		VariantID:         item.VariantID,
		ProductName:       item.ProductName,
		ProductSKU:        item.ProductSKU,
		QuantityOrdered:   item.QuantityOrdered,
		QuantityFulfilled: item.QuantityFulfilled,
		Remaining:         item.Remaining(),
		UnitPrice:         item.UnitPrice,
		TotalPrice:        item.TotalPrice,
		Notes:             item.Notes,
	}
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]LineItemResponse, len(o.Items))
	for i := range o.Items {
		items[i] = ToLineItemResponse(&o.Items[i])
	}

	return OrderResponse{
		ID:               o.ID,
		TenantID:         o.TenantID,
		OrderNumber:      o.OrderNumber,
		Type:             o.Type.String(),
		CounterpartyID:   o.CounterpartyID,
		CounterpartyName: o.CounterpartyName,
		OrderDate:        o.OrderDate,
		Status:           o.Status.String(),
		PaymentStatus:    string(o.PaymentStatus),
		ShippingAddress:  o.ShippingAddress,
		ExpectedDelivery: o.ExpectedDelivery,
		Notes:            o.Notes,
		TotalAmount:      o.TotalAmount,
		Items:            items,
		ItemCount:        o.ItemCount(),
		FulfilledAt:      o.FulfilledAt,
		CancelledAt:      o.CancelledAt,
		CancelReason:     o.CancelReason,
		Version:          o.Version,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// ToOrderListItemResponses converts domain orders to compact list DTOs
func ToOrderListItemResponses(orders []order.Order) []OrderListItemResponse {
	out := make([]OrderListItemResponse, len(orders))
	for i := range orders {
		out[i] = OrderListItemResponse{
			ID:               orders[i].ID,
			OrderNumber:      orders[i].OrderNumber,
			Type:             orders[i].Type.String(),
			CounterpartyName: orders[i].CounterpartyName,
			OrderDate:        orders[i].OrderDate,
			Status:           orders[i].Status.String(),
			TotalAmount:      orders[i].TotalAmount,
			ItemCount:        orders[i].ItemCount(),
		}
	}
	return out
}

// StatusSummaryResponse reports order counts per lifecycle status
type StatusSummaryResponse struct {
	Draft     int64 `json:"draft"`
	Pending   int64 `json:"pending"`
	Fulfilled int64 `json:"fulfilled"`
	Cancelled int64 `json:"cancelled"`
}
