package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasoula/intershop-sub000/internal/catalog/app"
	"github.com/tasoula/intershop-sub000/internal/catalog/domain"
)

type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

const productColumns = "id, title, description, price, stock_quantity, created_at, updated_at"

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (title, description, price, stock_quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING `+productColumns,
		p.Title, p.Description, p.Price, p.StockQuantity)
	return scanProduct(row)
}

func (r *ProductRepo) Get(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (r *ProductRepo) List(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	var cur uuid.NullUUID
	if strings.TrimSpace(cursor) != "" {
		uid, err := uuid.Parse(strings.TrimSpace(cursor))
		if err != nil {
			return nil, "", app.ErrInvalidInput
		}
		cur = uuid.NullUUID{UUID: uid, Valid: true}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')
		  AND ($2::uuid IS NULL OR id > $2)
		ORDER BY id
		LIMIT $3`,
		strings.TrimSpace(query), cur, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	out := make([]domain.Product, 0, limit)
	var nextCursor string
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, "", err
		}
		out = append(out, p)
		nextCursor = p.ID.String()
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	if len(out) < limit {
		nextCursor = ""
	}
	return out, nextCursor, nil
}

func (r *ProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET title = $2, description = $3, price = $4, stock_quantity = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		p.ID, p.Title, p.Description, p.Price, p.StockQuantity)

	updated, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return updated, nil
}

// DecrementStock relies on the conditional predicate to serialize
// overlapping checkouts of the same product: zero rows affected means
// the remaining stock was insufficient.
func (r *ProductRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE id = $1 AND stock_quantity >= $2`,
		id, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ProductRepo) IncrementStock(ctx context.Context, id uuid.UUID, qty int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity + $2, updated_at = now()
		WHERE id = $1`,
		id, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app.ErrNotFound
	}
	return nil
}
