package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	fulfillmentapp "github.com/stockflow/backend/internal/application/fulfillment"
	stockapp "github.com/stockflow/backend/internal/application/stock"
	"github.com/stockflow/backend/internal/domain/shared"
)

// StockHandler serves the read-only stock level and movement endpoints
type StockHandler struct {
	BaseHandler
	levels       *stockapp.QueryService
	transactions *fulfillmentapp.Service
}

// NewStockHandler creates a new stock handler
func NewStockHandler(levels *stockapp.QueryService, transactions *fulfillmentapp.Service, logger *zap.Logger) *StockHandler {
	return &StockHandler{
		BaseHandler:  NewBaseHandler(logger),
		levels:       levels,
		transactions: transactions,
	}
}

// transactionListQuery holds query parameters for the movement list endpoint
type transactionListQuery struct {
	Direction  string     `form:"direction" binding:"omitempty,oneof=INBOUND OUTBOUND"`
	SourceType string     `form:"source_type"`
	VariantID  *uuid.UUID `form:"variant_id"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// List handles GET /stock
func (h *StockHandler) List(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}

	var filter stockapp.LevelListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.levels.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByProduct handles GET /stock/:productId
func (h *StockHandler) GetByProduct(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}
	productID, ok := h.parseIDParam(c, "productId")
	if !ok {
		return
	}

	variantID, ok := h.parseVariantQuery(c)
	if !ok {
		return
	}

	resp, err := h.levels.GetByProduct(c.Request.Context(), tenantID, productID, variantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListTransactions handles GET /stock/:productId/transactions
func (h *StockHandler) ListTransactions(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}
	productID, ok := h.parseIDParam(c, "productId")
	if !ok {
		return
	}

	var query transactionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.DefaultFilter()
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}
	if query.OrderBy != "" {
		filter.OrderBy = query.OrderBy
	}
	if query.OrderDir != "" {
		filter.OrderDir = query.OrderDir
	}
	if query.Direction != "" {
		filter.Filters["direction"] = query.Direction
	}
	if query.SourceType != "" {
		filter.Filters["source_type"] = query.SourceType
	}
	if query.VariantID != nil {
		filter.Filters["variant_id"] = *query.VariantID
	}

	resp, err := h.transactions.ListByProduct(c.Request.Context(), tenantID, productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *StockHandler) parseVariantQuery(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("variant_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "invalid variant_id parameter")
		return nil, false
	}
	return &id, true
}
