package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/pkg/database"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

const orderSelectColumns = `id, user_id, shipping_info, order_items, payment_info, paid_at, items_price, tax_price, shipping_price, total_price, order_status, delivered_at, created_at`

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	db database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(db database.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

type orderDocuments struct {
	shipping []byte
	items    []byte
	payment  []byte
}

func marshalOrder(o *domain.Order) (orderDocuments, error) {
	var (
		docs orderDocuments
		err  error
	)
	items := o.OrderItems
	if items == nil {
		items = []domain.OrderItem{}
	}
	if docs.shipping, err = json.Marshal(o.ShippingInfo); err != nil {
		return docs, fmt.Errorf("marshal shipping info: %w", err)
	}
	if docs.items, err = json.Marshal(items); err != nil {
		return docs, fmt.Errorf("marshal order items: %w", err)
	}
	if docs.payment, err = json.Marshal(o.PaymentInfo); err != nil {
		return docs, fmt.Errorf("marshal payment info: %w", err)
	}
	return docs, nil
}

// Create inserts a new order.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (err error) {
	docs, err := marshalOrder(o)
	if err != nil {
		return err
	}

	stmt := `
		INSERT INTO orders (id, user_id, shipping_info, order_items, payment_info, paid_at,
		                    items_price, tax_price, shipping_price, total_price, order_status, delivered_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	ctx, end := database.TraceQuery(ctx, "CreateOrder", stmt)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, stmt,
		o.ID, o.UserID, docs.shipping, docs.items, docs.payment, o.PaidAt,
		o.ItemsPrice, o.TaxPrice, o.ShippingPrice, o.TotalPrice, o.OrderStatus, o.DeliveredAt, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (_ *domain.Order, err error) {
	stmt := `SELECT ` + orderSelectColumns + ` FROM orders WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetOrder", stmt)
	defer func() { end(err) }()

	o, err := scanOrder(r.db.QueryRow(ctx, stmt, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// ListByUser returns the orders placed by userID, oldest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, "ListUserOrders",
		`SELECT `+orderSelectColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at, id`, userID)
}

// List returns every order, oldest first.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, "ListOrders", `SELECT `+orderSelectColumns+` FROM orders ORDER BY created_at, id`)
}

func (r *OrderRepository) list(ctx context.Context, op, stmt string, args ...any) (_ []domain.Order, err error) {
	ctx, end := database.TraceQuery(ctx, op, stmt)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

// Update writes the order status and delivery time.
func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) (err error) {
	stmt := `UPDATE orders SET order_status = $1, delivered_at = $2 WHERE id = $3`

	ctx, end := database.TraceQuery(ctx, "UpdateOrder", stmt)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, stmt, o.OrderStatus, o.DeliveredAt, o.ID)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete removes an order by ID.
func (r *OrderRepository) Delete(ctx context.Context, id string) (err error) {
	stmt := `DELETE FROM orders WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteOrder", stmt)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, stmt, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                       domain.Order
		shipping, items, paying []byte
	)
	if err := row.Scan(
		&o.ID, &o.UserID, &shipping, &items, &paying, &o.PaidAt,
		&o.ItemsPrice, &o.TaxPrice, &o.ShippingPrice, &o.TotalPrice, &o.OrderStatus, &o.DeliveredAt, &o.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(shipping, &o.ShippingInfo); err != nil {
		return nil, fmt.Errorf("unmarshal shipping info: %w", err)
	}
	if err := json.Unmarshal(items, &o.OrderItems); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(paying, &o.PaymentInfo); err != nil {
		return nil, fmt.Errorf("unmarshal payment info: %w", err)
	}
	return &o, nil
}
