package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/order"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockOrderRepository creates a GormOrderRepository with a mocked SQL connection
func newMockOrderRepository(t *testing.T) (*GormOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormOrderRepository(gormDB), mock, mockDB
}

func orderRows(orderID, tenantID uuid.UUID, status order.OrderStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "order_number", "type", "counterparty_id",
		"counterparty_name", "status", "total_amount", "version",
	}).AddRow(
		orderID, tenantID, "SO-2026-00001", order.OrderTypeSales, uuid.New(),
		"Acme Corp", status, decimal.NewFromFloat(99.50), 1,
	)
}

func TestGormOrderRepository_FindByID(t *testing.T) {
	t.Run("finds existing order with items", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		tenantID := uuid.New()
		itemID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1`).
			WithArgs(orderID, 1).
			WillReturnRows(orderRows(orderID, tenantID, order.OrderStatusPending))

		itemRows := sqlmock.NewRows([]string{
			"id", "order_id", "product_id", "product_name",
			"quantity_ordered", "quantity_fulfilled", "unit_price",
		}).AddRow(
			itemID, orderID, uuid.New(), "Widget",
			10, 4, decimal.NewFromFloat(9.95),
		)
		mock.ExpectQuery(`SELECT \* FROM "order_line_items"`).
			WillReturnRows(itemRows)

		o, err := repo.FindByID(context.Background(), orderID)

		assert.NoError(t, err)
		assert.NotNil(t, o)
		assert.Equal(t, orderID, o.ID)
		assert.Equal(t, "SO-2026-00001", o.OrderNumber)
		require.Len(t, o.Items, 1)
		assert.Equal(t, int64(10), o.Items[0].QuantityOrdered)
		assert.Equal(t, int64(4), o.Items[0].QuantityFulfilled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing order", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1`).
			WithArgs(orderID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		o, err := repo.FindByID(context.Background(), orderID)

		assert.Error(t, err)
		assert.Nil(t, o)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds order within tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, orderID, 1).
			WillReturnRows(orderRows(orderID, tenantID, order.OrderStatusPending))
		mock.ExpectQuery(`SELECT \* FROM "order_line_items"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

		o, err := repo.FindByIDForTenant(context.Background(), tenantID, orderID)

		assert.NoError(t, err)
		assert.NotNil(t, o)
		assert.Equal(t, tenantID, o.TenantID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_FindByIDForUpdate(t *testing.T) {
	t.Run("locks the order row", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE tenant_id = \$1 AND id = \$2 .* FOR UPDATE`).
			WithArgs(tenantID, orderID, 1).
			WillReturnRows(orderRows(orderID, tenantID, order.OrderStatusPending))
		mock.ExpectQuery(`SELECT \* FROM "order_line_items"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

		o, err := repo.FindByIDForUpdate(context.Background(), tenantID, orderID)

		assert.NoError(t, err)
		assert.NotNil(t, o)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing order", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		orderID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE tenant_id = \$1 AND id = \$2 .* FOR UPDATE`).
			WithArgs(tenantID, orderID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		o, err := repo.FindByIDForUpdate(context.Background(), tenantID, orderID)

		assert.Error(t, err)
		assert.Nil(t, o)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	t.Run("increments version on success", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		o, err := order.NewOrder(tenantID, "SO-2026-00001", order.OrderTypeSales, uuid.New(), "Acme Corp")
		require.NoError(t, err)
		o.Version = 3

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "order_line_items" WHERE order_id = \$1`).
			WithArgs(o.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err = repo.SaveWithLock(context.Background(), o)

		assert.NoError(t, err)
		assert.Equal(t, 4, o.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when version is stale", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		o, err := order.NewOrder(tenantID, "SO-2026-00001", order.OrderTypeSales, uuid.New(), "Acme Corp")
		require.NoError(t, err)
		o.Version = 3

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.SaveWithLock(context.Background(), o)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.Equal(t, 3, o.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_DeleteForTenant(t *testing.T) {
	t.Run("deletes order and its items", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		orderID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, orderID, 1).
			WillReturnRows(orderRows(orderID, tenantID, order.OrderStatusDraft))
		mock.ExpectExec(`DELETE FROM "order_line_items" WHERE order_id = \$1`).
			WithArgs(orderID).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM "orders" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, orderID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.DeleteForTenant(context.Background(), tenantID, orderID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing order", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		orderID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, orderID, 1).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectRollback()

		err := repo.DeleteForTenant(context.Background(), tenantID, orderID)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_CountByStatus(t *testing.T) {
	t.Run("counts orders by status", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE tenant_id = \$1 AND status = \$2`).
			WithArgs(tenantID, order.OrderStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		count, err := repo.CountByStatus(context.Background(), tenantID, order.OrderStatusPending)

		assert.NoError(t, err)
		assert.Equal(t, int64(7), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_ExistsByOrderNumber(t *testing.T) {
	t.Run("returns true when number exists", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE tenant_id = \$1 AND order_number = \$2`).
			WithArgs(tenantID, "SO-2026-00042").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByOrderNumber(context.Background(), tenantID, "SO-2026-00042")

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns false when number does not exist", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE tenant_id = \$1 AND order_number = \$2`).
			WithArgs(tenantID, "SO-2026-00042").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsByOrderNumber(context.Background(), tenantID, "SO-2026-00042")

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_GenerateOrderNumber(t *testing.T) {
	t.Run("starts at 1 for the first order of the year", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE tenant_id = \$1 AND order_number LIKE \$2`).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		number, err := repo.GenerateOrderNumber(context.Background(), tenantID, order.OrderTypeSales)

		assert.NoError(t, err)
		assert.Regexp(t, `^SO-\d{4}-00001$`, number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("increments the highest existing number", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		orderID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "order_number"}).
			AddRow(orderID, tenantID, "PO-2026-00041")
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE tenant_id = \$1 AND order_number LIKE \$2`).
			WillReturnRows(rows)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		number, err := repo.GenerateOrderNumber(context.Background(), tenantID, order.OrderTypePurchase)

		assert.NoError(t, err)
		assert.Regexp(t, `^PO-\d{4}-00042$`, number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements order.Repository interface", func(t *testing.T) {
		repo, _, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		var _ order.Repository = repo
	})
}
