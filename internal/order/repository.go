package order

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	// PlaceOrder checks stock, decrements it and records the order with its
	// items in a single transaction.
	PlaceOrder(ctx context.Context, userID uuid.UUID, lines []LineItem) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func distinctIDs(lines []LineItem) []string {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID.String())
	}
	return ids
}

func (r *repository) PlaceOrder(ctx context.Context, userID uuid.UUID, lines []LineItem) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "PlaceOrder"),
		zap.String("user_id", userID.String()),
		zap.Int("item_count", len(lines)),
	)

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			} else {
				log.Debug("transaction rolled back")
			}
		}
	}()

	// 1. Lock every referenced product. Rows are locked in id order so
	// concurrent orders over the same products cannot deadlock.
	ids := distinctIDs(lines)
	products, err := lockProducts(ctx, tx, ids)
	if err != nil {
		log.Error("failed to lock products", zap.Error(err))
		return nil, err
	}
	if len(products) != len(ids) {
		log.Info("order references unknown products",
			zap.Int("requested", len(ids)),
			zap.Int("found", len(products)),
		)
		return nil, ErrProductsNotFound
	}

	// 2. Check stock and price the order. Remaining stock is tracked across
	// lines so a product listed twice cannot oversell.
	remaining := make(map[uuid.UUID]int, len(products))
	for id, p := range products {
		remaining[id] = p.Stock
	}

	total := decimal.Zero
	items := make([]Item, 0, len(lines))
	for _, line := range lines {
		p := products[line.ProductID]
		if line.Quantity > remaining[p.ID] {
			log.Info("insufficient stock",
				zap.String("product_id", p.ID.String()),
				zap.Int("requested", line.Quantity),
				zap.Int("available", remaining[p.ID]),
			)
			return nil, ErrInsufficientStock.WithDetails("Insufficient stock for " + p.Name)
		}
		remaining[p.ID] -= line.Quantity

		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, Item{
			ProductID: p.ID,
			Quantity:  line.Quantity,
			Price:     p.Price,
		})
	}

	if total.GreaterThan(MaxTotal) {
		log.Info("order total out of range", zap.String("total", total.String()))
		return nil, ErrOrderTooLarge
	}

	// 3. Decrement stock. The guard makes the update a no-op if stock moved.
	for _, item := range items {
		res, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1`,
			item.Quantity, item.ProductID,
		)
		if err != nil {
			log.Error("failed to decrement stock", zap.String("product_id", item.ProductID.String()), zap.Error(err))
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		if n == 0 {
			return nil, ErrInsufficientStock.WithDetails("Insufficient stock for " + products[item.ProductID].Name)
		}
	}

	// 4. Record the order.
	o := Order{
		UserID:      userID,
		Description: fmt.Sprintf("Order with %d items", len(lines)),
		TotalPrice:  total,
		Status:      StatusPending,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, description, total_price, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		o.UserID, o.Description, o.TotalPrice, o.Status,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return nil, fmt.Errorf("insert order: %w", err)
	}

	// 5. Record its items.
	for i := range items {
		items[i].OrderID = o.ID
		err = tx.QueryRowContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`,
			o.ID, items[i].ProductID, items[i].Quantity, items[i].Price,
		).Scan(&items[i].ID, &items[i].CreatedAt)
		if err != nil {
			log.Error("failed to insert order item", zap.Int("item_index", i), zap.Error(err))
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}
	o.Items = items

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true

	log.Info("order placed",
		zap.String("order_id", o.ID.String()),
		zap.String("total", o.TotalPrice.StringFixed(2)),
	)
	return &o, nil
}

func lockProducts(ctx context.Context, tx *sql.Tx, ids []string) (map[uuid.UUID]lockedProduct, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, name, price, stock FROM products WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	products := make(map[uuid.UUID]lockedProduct, len(ids))
	for rows.Next() {
		var p lockedProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListByUser"),
		zap.String("user_id", userID.String()),
	)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, description, total_price, status, created_at, updated_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		log.Error("db: failed to list orders", zap.Error(err))
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	index := make(map[uuid.UUID]int)
	var ids []string
	for rows.Next() {
		var (
			o    Order
			desc sql.NullString
		)
		if err := rows.Scan(&o.ID, &o.UserID, &desc, &o.TotalPrice, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Description = desc.String
		o.Items = []Item{}
		index[o.ID] = len(orders)
		ids = append(ids, o.ID.String())
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, product_id, quantity, price, created_at
		FROM order_items WHERE order_id = ANY($1::uuid[]) ORDER BY created_at, id`,
		pq.Array(ids),
	)
	if err != nil {
		log.Error("db: failed to list order items", zap.Error(err))
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it Item
		if err := itemRows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return orders, nil
}
