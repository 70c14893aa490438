package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/stock"
	"gorm.io/gorm"
)

// GormStockTransactionRepository implements stock.TransactionRepository using
// GORM. The table is append-only; this repository never issues UPDATE or
// DELETE statements.
type GormStockTransactionRepository struct {
	db *gorm.DB
}

// NewGormStockTransactionRepository creates a new GormStockTransactionRepository
func NewGormStockTransactionRepository(db *gorm.DB) *GormStockTransactionRepository {
	return &GormStockTransactionRepository{db: db}
}

// Append durably records a transaction
func (r *GormStockTransactionRepository) Append(ctx context.Context, tx *stock.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// FindByLineItem lists all movements recorded against a line item
func (r *GormStockTransactionRepository) FindByLineItem(ctx context.Context, tenantID, lineItemID uuid.UUID) ([]stock.Transaction, error) {
	var txs []stock.Transaction
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND line_item_id = ?", tenantID, lineItemID).
		Order("occurred_at ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FindByOrder lists all movements recorded against an order
func (r *GormStockTransactionRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]stock.Transaction, error) {
	var txs []stock.Transaction
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("occurred_at ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FindByProduct lists movements for a product with filtering
func (r *GormStockTransactionRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]stock.Transaction, error) {
	var txs []stock.Transaction
	query := r.db.WithContext(ctx).
		Model(&stock.Transaction{}).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID)

	for key, value := range filter.Filters {
		switch key {
		case "direction":
			query = query.Where("direction = ?", value)
		case "source_type":
			query = query.Where("source_type = ?", value)
		case "variant_id":
			query = query.Where("variant_id = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, StockTransactionSortFields, "occurred_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	if err := query.Order(orderBy + " " + orderDir).Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// SumByLineItem returns the net signed quantity recorded for a line item.
// Inbound movements count positive, outbound negative.
func (r *GormStockTransactionRepository) SumByLineItem(ctx context.Context, tenantID, lineItemID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&stock.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN direction = ? THEN quantity ELSE -quantity END), 0)", stock.DirectionInbound).
		Where("tenant_id = ? AND line_item_id = ?", tenantID, lineItemID).
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}

// Ensure GormStockTransactionRepository implements stock.TransactionRepository
var _ stock.TransactionRepository = (*GormStockTransactionRepository)(nil)
