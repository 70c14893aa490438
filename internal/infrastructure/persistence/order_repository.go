package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/order"
	"github.com/stockflow/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByIDForTenant finds an order by ID within a tenant
func (r *GormOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByIDForUpdate finds an order by ID acquiring a FOR UPDATE row lock.
// Concurrent fulfillment against the same order serializes on this lock, so
// validation downstream always sees the latest committed counters.
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByOrderNumber finds an order by order number for a tenant
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindAllForTenant finds all orders for a tenant with filtering
func (r *GormOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&order.Order{}).Preload("Items").Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByCounterparty finds orders for a customer or vendor
func (r *GormOrderRepository) FindByCounterparty(ctx context.Context, tenantID, counterpartyID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&order.Order{}).Preload("Items").
			Where("tenant_id = ? AND counterparty_id = ?", tenantID, counterpartyID),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByStatus finds orders by status for a tenant
func (r *GormOrderRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status order.OrderStatus, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&order.Order{}).Preload("Items").
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates an order together with its items.
// Items removed from the aggregate are deleted from the item table.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(o).Error; err != nil {
			return err
		}
		return r.syncItems(tx, o)
	})
}

// SaveWithLock saves with optimistic locking on the aggregate version
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := o.Version
		o.Version++
		o.UpdatedAt = time.Now()

		result := tx.Model(&order.Order{}).
			Where("id = ? AND tenant_id = ? AND version = ?", o.ID, o.TenantID, currentVersion).
			Updates(map[string]interface{}{
				"counterparty_id":   o.CounterpartyID,
				"counterparty_name": o.CounterpartyName,
				"status":            o.Status,
				"payment_status":    o.PaymentStatus,
				"shipping_address":  o.ShippingAddress,
				"expected_delivery": o.ExpectedDelivery,
				"notes":             o.Notes,
				"total_amount":      o.TotalAmount,
				"fulfilled_at":      o.FulfilledAt,
				"cancelled_at":      o.CancelledAt,
				"cancel_reason":     o.CancelReason,
				"version":           o.Version,
				"updated_at":        o.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			o.Version = currentVersion
			return shared.ErrConcurrencyConflict
		}

		return r.syncItems(tx, o)
	})
}

// syncItems reconciles the item table with the aggregate's current item set
func (r *GormOrderRepository) syncItems(tx *gorm.DB, o *order.Order) error {
	currentItemIDs := make([]uuid.UUID, len(o.Items))
	for i := range o.Items {
		currentItemIDs[i] = o.Items[i].ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", o.ID, currentItemIDs).
			Delete(&order.LineItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", o.ID).
			Delete(&order.LineItem{}).Error; err != nil {
			return err
		}
	}

	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		if err := tx.Save(&o.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteForTenant hard-deletes an order and its items as one transaction
func (r *GormOrderRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o order.Order
		if err := tx.Where("tenant_id = ? AND id = ?", tenantID, id).First(&o).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := tx.Where("order_id = ?", id).Delete(&order.LineItem{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&order.Order{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountForTenant counts orders for a tenant with optional filters
func (r *GormOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&order.Order{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts orders by status for a tenant
func (r *GormOrderRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status order.OrderStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByOrderNumber checks if an order number exists for a tenant
func (r *GormOrderRepository) ExistsByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateOrderNumber generates a unique order number for a tenant.
// Format: SO-YYYY-NNNNN for sales, PO-YYYY-NNNNN for purchases.
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID, orderType order.OrderType) (string, error) {
	year := time.Now().Year()
	typePrefix := "SO"
	if orderType == order.OrderTypePurchase {
		typePrefix = "PO"
	}
	prefix := fmt.Sprintf("%s-%d-", typePrefix, year)

	var lastOrder order.Order
	err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("tenant_id = ? AND order_number LIKE ?", tenantID, prefix+"%").
		Order("order_number DESC").
		First(&lastOrder).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastOrder.OrderNumber != "" {
		parts := strings.Split(lastOrder.OrderNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	orderNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	exists, err := r.ExistsByOrderNumber(ctx, tenantID, orderNumber)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			orderNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.ExistsByOrderNumber(ctx, tenantID, orderNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return orderNumber, nil
}

// applyFilter applies filter options to the query
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR counterparty_name ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "counterparty_id":
			query = query.Where("counterparty_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("order_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("order_date <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
