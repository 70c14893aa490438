package fulfillment

import (
	"context"

	"github.com/stockflow/backend/internal/domain/order"
	"github.com/stockflow/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to the repositories the
// fulfillment path writes. When a function is executed within a scope, all
// repository operations are part of the same database transaction and commit
// or roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within a
// transaction. All repositories returned share the same underlying database
// transaction, so the three-way write of one fulfillment (transaction append,
// stock counter update, item counter update) is atomic.
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.Repository
	// LineItemRepo returns the line item repository scoped to the current transaction
	LineItemRepo() order.LineItemRepository
	// StockLevelRepo returns the stock level repository scoped to the current transaction
	StockLevelRepo() stock.LevelRepository
	// StockTransactionRepo returns the movement ledger scoped to the current transaction
	StockTransactionRepo() stock.TransactionRepository
}

// NoOpTransactionScope is a transaction scope that doesn't use real database
// transactions. Useful for tests built on in-memory repositories.
type NoOpTransactionScope struct {
	orderRepo    order.Repository
	lineItemRepo order.LineItemRepository
	levelRepo    stock.LevelRepository
	txRepo       stock.TransactionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	orderRepo order.Repository,
	lineItemRepo order.LineItemRepository,
	levelRepo stock.LevelRepository,
	txRepo stock.TransactionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:    orderRepo,
		lineItemRepo: lineItemRepo,
		levelRepo:    levelRepo,
		txRepo:       txRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository
func (s *NoOpTransactionScope) OrderRepo() order.Repository {
	return s.orderRepo
}

// LineItemRepo returns the line item repository
func (s *NoOpTransactionScope) LineItemRepo() order.LineItemRepository {
	return s.lineItemRepo
}

// StockLevelRepo returns the stock level repository
func (s *NoOpTransactionScope) StockLevelRepo() stock.LevelRepository {
	return s.levelRepo
}

// StockTransactionRepo returns the movement ledger repository
func (s *NoOpTransactionScope) StockTransactionRepo() stock.TransactionRepository {
	return s.txRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
