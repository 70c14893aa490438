package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	orderapp "github.com/stockflow/backend/internal/application/order"
	"github.com/stockflow/backend/internal/interfaces/http/dto"
)

// OrderHandler serves the order lifecycle endpoints
type OrderHandler struct {
	BaseHandler
	service  *orderapp.Service
	notifier orderapp.Notifier
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(service *orderapp.Service, notifier orderapp.Notifier, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		notifier:    notifier,
	}
}

// createOrderRequest extends the application request with the notification
// options only the HTTP surface knows about
type createOrderRequest struct {
	orderapp.CreateOrderRequest
	Notify          bool   `json:"notify"`
	NotifyRecipient string `json:"notify_recipient" binding:"omitempty,email"`
}

// Create handles POST /orders. With the notify flag set the order is built
// through the draft builder so a failed notification surfaces as a warning on
// an otherwise successful response.
func (h *OrderHandler) Create(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if !req.Notify {
		resp, err := h.service.Create(c.Request.Context(), tenantID, req.CreateOrderRequest)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Created(c, resp)
		return
	}

	builder := orderapp.NewDraftBuilder(h.service, h.notifier, h.logger, req.Type)
	builder.SetCounterparty(req.CounterpartyID, req.CounterpartyName).
		SetShipping(req.ShippingAddress, req.ExpectedDelivery).
		SetNotes(req.Notes).
		SetRecipient(req.NotifyRecipient).
		SetNotify(true)

	for _, input := range req.Items {
		item, err := builder.AddItem(input.ProductID, input.VariantID, input.ProductName, input.ProductSKU, input.Quantity, input.UnitPrice)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		item.Notes = input.Notes
	}

	result, err := builder.Commit(c.Request.Context(), tenantID, req.AsDraft)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.Warning != "" {
		c.JSON(http.StatusCreated, dto.NewSuccessResponseWithWarning(result.Order, result.Warning))
		return
	}
	h.Created(c, result.Order)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByNumber handles GET /orders/number/:number
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "order number is required")
		return
	}

	resp, err := h.service.GetByOrderNumber(c.Request.Context(), tenantID, number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}

	var filter orderapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, total, err := h.service.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// Update handles PUT /orders/:id
func (h *OrderHandler) Update(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req orderapp.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Update(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), tenantID, orderID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Submit handles POST /orders/:id/submit
func (h *OrderHandler) Submit(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel handles POST /orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req orderapp.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// StatusSummary handles GET /orders/summary
func (h *OrderHandler) StatusSummary(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}

	resp, err := h.service.StatusSummary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
