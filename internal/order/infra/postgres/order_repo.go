package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasoula/intershop-sub000/internal/order/app"
	"github.com/tasoula/intershop-sub000/internal/order/domain"
)

type OrderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

func (r *OrderRepo) CreateHeader(ctx context.Context, userID uuid.UUID) (domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `
		INSERT INTO orders (user_id, total_amount)
		VALUES ($1, 0)
		RETURNING id, user_id, total_amount, created_at`,
		userID).Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.CreatedAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order header: %w", err)
	}
	return o, nil
}

func (r *OrderRepo) SetTotal(ctx context.Context, order domain.Order) (domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `
		UPDATE orders
		SET total_amount = $2
		WHERE id = $1
		RETURNING id, user_id, total_amount, created_at`,
		order.ID, order.TotalAmount).Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("set order total: %w", err)
	}
	return o, nil
}

func (r *OrderRepo) SaveItem(ctx context.Context, item domain.OrderItem) (domain.OrderItem, error) {
	var saved domain.OrderItem
	err := r.pool.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, price_at_time_of_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, order_id, product_id, quantity, price_at_time_of_order`,
		item.OrderID, item.ProductID, item.Quantity, item.PriceAtTimeOfOrder).
		Scan(&saved.ID, &saved.OrderID, &saved.ProductID, &saved.Quantity, &saved.PriceAtTimeOfOrder)
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("save order item: %w", err)
	}
	return saved, nil
}

func (r *OrderRepo) Delete(ctx context.Context, orderID uuid.UUID) error {
	// order_items rows go with the order via ON DELETE CASCADE.
	_, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	return err
}

func (r *OrderRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, total_amount, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *OrderRepo) FindByID(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, total_amount, created_at
		FROM orders
		WHERE id = $1`,
		orderID).Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *OrderRepo) FindItemsByOrderID(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price_at_time_of_order
		FROM order_items
		WHERE order_id = $1`,
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.PriceAtTimeOfOrder); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
