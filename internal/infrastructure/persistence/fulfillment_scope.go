package persistence

import (
	"context"
	"time"

	"github.com/stockflow/backend/internal/application/fulfillment"
	"github.com/stockflow/backend/internal/domain/order"
	"github.com/stockflow/backend/internal/domain/stock"
	"gorm.io/gorm"
)

// GormTransactionScope implements fulfillment.TransactionScope using GORM
// transactions. All repositories handed to the callback are bound to the same
// database transaction.
type GormTransactionScope struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// NewGormTransactionScopeWithTimeout creates a scope that bounds every
// Execute call. The deadline covers the whole transaction, including the
// wait for the order row lock.
func NewGormTransactionScopeWithTimeout(db *gorm.DB, timeout time.Duration) *GormTransactionScope {
	return &GormTransactionScope{db: db, timeout: timeout}
}

// Execute runs the given function within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos fulfillment.TransactionalRepositories) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides repositories bound to a transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) OrderRepo() order.Repository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) LineItemRepo() order.LineItemRepository {
	return NewGormLineItemRepository(r.tx)
}

func (r *gormTransactionalRepositories) StockLevelRepo() stock.LevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

func (r *gormTransactionalRepositories) StockTransactionRepo() stock.TransactionRepository {
	return NewGormStockTransactionRepository(r.tx)
}

// Ensure interfaces are satisfied
var (
	_ fulfillment.TransactionScope          = (*GormTransactionScope)(nil)
	_ fulfillment.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
