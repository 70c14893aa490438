// Package stock provides read-side application services for stock levels.
package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/stock"
)

// LevelResponse represents a stock level in API responses
type LevelResponse struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      uuid.UUID  `json:"product_id"`
	VariantID      *uuid.UUID `json:"variant_id,omitempty"`
	QuantityOnHand int64      `json:"quantity_on_hand"`
	Version        int        `json:"version"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// LevelListFilter represents filter options for stock level lists
type LevelListFilter struct {
	ProductID *uuid.UUID `form:"product_id"`
	Page      int        `form:"page" binding:"min=0"`
	PageSize  int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// QueryService answers read-only stock level queries. All writes go through
// the fulfillment workflow.
type QueryService struct {
	levelRepo stock.LevelRepository
	logger    *zap.Logger
}

// NewQueryService creates a new stock QueryService
func NewQueryService(levelRepo stock.LevelRepository, logger *zap.Logger) *QueryService {
	return &QueryService{
		levelRepo: levelRepo,
		logger:    logger,
	}
}

// GetByProduct returns the stock level for a product/variant pair
func (s *QueryService) GetByProduct(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (*LevelResponse, error) {
	level, err := s.levelRepo.FindByProduct(ctx, tenantID, productID, variantID)
	if err != nil {
		return nil, err
	}
	response := toLevelResponse(level)
	return &response, nil
}

// List returns stock levels for a tenant with filtering and pagination
func (s *QueryService) List(ctx context.Context, tenantID uuid.UUID, filter LevelListFilter) ([]LevelResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.ProductID != nil {
		domainFilter.Filters["product_id"] = *filter.ProductID
	}

	levels, err := s.levelRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	out := make([]LevelResponse, len(levels))
	for i := range levels {
		out[i] = toLevelResponse(&levels[i])
	}
	return out, nil
}

func toLevelResponse(level *stock.StockLevel) LevelResponse {
	return LevelResponse{
		ID:             level.ID,
		ProductID:      level.ProductID,
		VariantID:      level.VariantID,
		QuantityOnHand: level.QuantityOnHand,
		Version:        level.Version,
		UpdatedAt:      level.UpdatedAt,
	}
}
