package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	fulfillmentapp "github.com/stockflow/backend/internal/application/fulfillment"
)

// FulfillmentHandler serves the fulfillment workflow endpoints
type FulfillmentHandler struct {
	BaseHandler
	service *fulfillmentapp.Service
}

// NewFulfillmentHandler creates a new fulfillment handler
func NewFulfillmentHandler(service *fulfillmentapp.Service, logger *zap.Logger) *FulfillmentHandler {
	return &FulfillmentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Fulfill handles POST /orders/:id/fulfill
func (h *FulfillmentHandler) Fulfill(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}
	actorID, ok := h.getUserID(c)
	if !ok {
		return
	}
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req fulfillmentapp.FulfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Fulfill(c.Request.Context(), tenantID, orderID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByOrder handles GET /orders/:id/transactions
func (h *FulfillmentHandler) ListByOrder(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.ListByOrder(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByLineItem handles GET /line-items/:id/transactions
func (h *FulfillmentHandler) ListByLineItem(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}
	lineItemID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.ListByLineItem(c.Request.Context(), tenantID, lineItemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
