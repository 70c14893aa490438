package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/order"
	"github.com/stockflow/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormLineItemRepository implements order.LineItemRepository using GORM
type GormLineItemRepository struct {
	db *gorm.DB
}

// NewGormLineItemRepository creates a new GormLineItemRepository
func NewGormLineItemRepository(db *gorm.DB) *GormLineItemRepository {
	return &GormLineItemRepository{db: db}
}

// FindByID finds a line item by ID, scoped to its owning order's tenant
func (r *GormLineItemRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*order.LineItem, error) {
	var item order.LineItem
	if err := r.db.WithContext(ctx).
		Where("id = ? AND order_id IN (?)",
			id,
			r.db.Model(&order.Order{}).Select("id").Where("tenant_id = ?", tenantID),
		).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByOrder finds all line items of an order
func (r *GormLineItemRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]order.LineItem, error) {
	var items []order.LineItem
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND order_id IN (?)",
			orderID,
			r.db.Model(&order.Order{}).Select("id").Where("tenant_id = ?", tenantID),
		).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateFulfilledQuantity persists the fulfilled counter of one item.
// Only the counter and timestamp columns are touched so the update cannot
// clobber concurrent edits to other item fields.
func (r *GormLineItemRepository) UpdateFulfilledQuantity(ctx context.Context, item *order.LineItem) error {
	result := r.db.WithContext(ctx).
		Model(&order.LineItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"quantity_fulfilled": item.QuantityFulfilled,
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormLineItemRepository implements order.LineItemRepository
var _ order.LineItemRepository = (*GormLineItemRepository)(nil)
