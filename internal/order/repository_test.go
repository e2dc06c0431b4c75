package order

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lockQuery      = regexp.QuoteMeta(`SELECT id, name, price, stock FROM products WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE`)
	decrementQuery = regexp.QuoteMeta(`UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1`)
	orderInsert    = regexp.QuoteMeta(`INSERT INTO orders (user_id, description, total_price, status)`)
	itemInsert     = regexp.QuoteMeta(`INSERT INTO order_items (order_id, product_id, quantity, price)`)

	productCols = []string{"id", "name", "price", "stock"}
)

func setupRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestRepository_PlaceOrder_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	ctx := context.Background()

	userID := uuid.New()
	macbook, cable := uuid.New(), uuid.New()
	orderID := uuid.New()
	now := time.Now()

	lines := []LineItem{
		{ProductID: macbook, Quantity: 1},
		{ProductID: cable, Quantity: 3},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).
		WithArgs(pq.Array([]string{macbook.String(), cable.String()})).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(macbook.String(), "MacBook Pro 16\"", "2499.99", 25).
			AddRow(cable.String(), "USB-C to USB-C Cable", "19.99", 300))
	mock.ExpectExec(decrementQuery).WithArgs(1, macbook).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(decrementQuery).WithArgs(3, cable).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(orderInsert).
		WithArgs(userID, "Order with 2 items", decimal.RequireFromString("2559.96"), StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(orderID.String(), now, now))
	mock.ExpectQuery(itemInsert).
		WithArgs(orderID, macbook, 1, decimal.RequireFromString("2499.99")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.NewString(), now))
	mock.ExpectQuery(itemInsert).
		WithArgs(orderID, cable, 3, decimal.RequireFromString("19.99")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.NewString(), now))
	mock.ExpectCommit()

	o, err := repo.PlaceOrder(ctx, userID, lines)
	require.NoError(t, err)

	assert.Equal(t, orderID, o.ID)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "2559.96", o.TotalPrice.StringFixed(2))
	require.Len(t, o.Items, 2)
	assert.Equal(t, orderID, o.Items[0].OrderID)
	assert.Equal(t, "19.99", o.Items[1].Price.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_PlaceOrder_ProductMissing(t *testing.T) {
	repo, mock := setupRepo(t)
	known, unknown := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(known.String(), "iPad Air", "599.99", 75))
	mock.ExpectRollback()

	_, err := repo.PlaceOrder(context.Background(), uuid.New(), []LineItem{
		{ProductID: known, Quantity: 1},
		{ProductID: unknown, Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrProductsNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_PlaceOrder_InsufficientStock(t *testing.T) {
	repo, mock := setupRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(id.String(), "Studio Display", "1599.99", 2))
	mock.ExpectRollback()

	_, err := repo.PlaceOrder(context.Background(), uuid.New(), []LineItem{{ProductID: id, Quantity: 3}})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.ErrorContains(t, err, "Insufficient stock for Studio Display")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_PlaceOrder_DuplicateLinesCannotOversell(t *testing.T) {
	repo, mock := setupRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).
		WithArgs(pq.Array([]string{id.String()})).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(id.String(), "HomePod mini", "99.99", 5))
	mock.ExpectRollback()

	// Each line fits on its own, together they exceed stock.
	_, err := repo.PlaceOrder(context.Background(), uuid.New(), []LineItem{
		{ProductID: id, Quantity: 3},
		{ProductID: id, Quantity: 3},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_PlaceOrder_TotalOutOfRange(t *testing.T) {
	repo, mock := setupRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(id.String(), "Server Rack", "99999999.99", 2000000000))
	mock.ExpectRollback()

	// 20000 x 99999999.99 is beyond the widest total the column stores.
	_, err := repo.PlaceOrder(context.Background(), uuid.New(), []LineItem{{ProductID: id, Quantity: 20000}})
	assert.ErrorIs(t, err, ErrOrderTooLarge)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_PlaceOrder_GuardedDecrementFails(t *testing.T) {
	repo, mock := setupRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(id.String(), "Magic Mouse", "79.99", 10))
	mock.ExpectExec(decrementQuery).WithArgs(2, id).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.PlaceOrder(context.Background(), uuid.New(), []LineItem{{ProductID: id, Quantity: 2}})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_PlaceOrder_InsertFailureRollsBack(t *testing.T) {
	repo, mock := setupRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(id.String(), "Magic Mouse", "79.99", 10))
	mock.ExpectExec(decrementQuery).WithArgs(1, id).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(orderInsert).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.PlaceOrder(context.Background(), uuid.New(), []LineItem{{ProductID: id, Quantity: 1}})
	assert.ErrorContains(t, err, "disk full")
	assert.NotErrorIs(t, err, ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_PlaceOrder_BeginFails(t *testing.T) {
	repo, mock := setupRepo(t)
	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	_, err := repo.PlaceOrder(context.Background(), uuid.New(), []LineItem{{ProductID: uuid.New(), Quantity: 1}})
	assert.ErrorContains(t, err, "pool exhausted")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByUser(t *testing.T) {
	repo, mock := setupRepo(t)
	userID := uuid.New()
	first, second := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT id, user_id, description, total_price, status, created_at, updated_at\s+FROM orders WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "description", "total_price", "status", "created_at", "updated_at"}).
			AddRow(first.String(), userID.String(), "Order with 1 items", "99.99", "pending", now, now).
			AddRow(second.String(), userID.String(), nil, "10.00", "pending", now, now))
	mock.ExpectQuery(`FROM order_items WHERE order_id = ANY\(\$1::uuid\[\]\)`).
		WithArgs(pq.Array([]string{first.String(), second.String()})).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "price", "created_at"}).
			AddRow(uuid.NewString(), first.String(), uuid.NewString(), 1, "99.99", now))

	orders, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Len(t, orders[0].Items, 1)
	assert.NotNil(t, orders[1].Items)
	assert.Empty(t, orders[1].Items)
	assert.Equal(t, "", orders[1].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByUser_Empty(t *testing.T) {
	repo, mock := setupRepo(t)
	userID := uuid.New()

	mock.ExpectQuery(`FROM orders WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "description", "total_price", "status", "created_at", "updated_at"}))

	orders, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}
