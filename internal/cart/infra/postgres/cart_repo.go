package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasoula/intershop-sub000/internal/cart/domain"
)

type CartRepo struct {
	pool *pgxpool.Pool
}

func NewCartRepo(pool *pgxpool.Pool) *CartRepo {
	return &CartRepo{pool: pool}
}

func (r *CartRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, product_id, quantity, created_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.UserID, &it.ProductID, &it.Quantity, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *CartRepo) AddItem(ctx context.Context, item domain.CartItem) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		item.UserID, item.ProductID, item.Quantity)
	return err
}

func (r *CartRepo) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int64) error {
	if quantity <= 0 {
		return r.RemoveItem(ctx, userID, productID)
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity`,
		userID, productID, quantity)
	return err
}

func (r *CartRepo) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	return err
}

func (r *CartRepo) DeleteAllByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM cart_items WHERE user_id = $1`,
		userID)
	return err
}
