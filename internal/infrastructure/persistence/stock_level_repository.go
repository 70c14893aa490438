package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/stock"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockLevelRepository implements stock.LevelRepository using GORM
type GormStockLevelRepository struct {
	db *gorm.DB
}

// NewGormStockLevelRepository creates a new GormStockLevelRepository
func NewGormStockLevelRepository(db *gorm.DB) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db}
}

// FindByProduct finds the stock level for a product/variant pair
func (r *GormStockLevelRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (*stock.StockLevel, error) {
	var level stock.StockLevel
	if err := r.variantScope(
		r.db.WithContext(ctx).Where("tenant_id = ? AND product_id = ?", tenantID, productID),
		variantID,
	).First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindByProductForUpdate finds the stock level acquiring a FOR UPDATE row lock
func (r *GormStockLevelRepository) FindByProductForUpdate(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (*stock.StockLevel, error) {
	var level stock.StockLevel
	if err := r.variantScope(
		r.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND product_id = ?", tenantID, productID),
		variantID,
	).First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindAllForTenant lists stock levels for a tenant with filtering
func (r *GormStockLevelRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.StockLevel, error) {
	var levels []stock.StockLevel
	query := r.db.WithContext(ctx).
		Model(&stock.StockLevel{}).
		Where("tenant_id = ?", tenantID)

	if productID, ok := filter.Filters["product_id"]; ok {
		query = query.Where("product_id = ?", productID)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, StockLevelSortFields, "updated_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	if err := query.Order(orderBy + " " + orderDir).Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// Save creates or updates a stock level
func (r *GormStockLevelRepository) Save(ctx context.Context, level *stock.StockLevel) error {
	return r.db.WithContext(ctx).Save(level).Error
}

// SaveWithLock saves with optimistic locking on the aggregate version
func (r *GormStockLevelRepository) SaveWithLock(ctx context.Context, level *stock.StockLevel) error {
	currentVersion := level.Version
	level.Version++
	level.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).
		Model(&stock.StockLevel{}).
		Where("id = ? AND version = ?", level.ID, currentVersion).
		Updates(map[string]interface{}{
			"quantity_on_hand": level.QuantityOnHand,
			"version":          level.Version,
			"updated_at":       level.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		level.Version = currentVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormStockLevelRepository) variantScope(query *gorm.DB, variantID *uuid.UUID) *gorm.DB {
	if variantID == nil {
		return query.Where("variant_id IS NULL")
	}
	return query.Where("variant_id = ?", *variantID)
}

// Ensure GormStockLevelRepository implements stock.LevelRepository
var _ stock.LevelRepository = (*GormStockLevelRepository)(nil)
