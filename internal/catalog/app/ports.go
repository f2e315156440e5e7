package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/tasoula/intershop-sub000/internal/catalog/domain"
)

type ProductRepo interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Product, error)
	List(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error)
	// Update persists the product exactly as supplied, stock included.
	Update(ctx context.Context, p domain.Product) (domain.Product, error)
	// DecrementStock atomically subtracts qty where enough stock remains.
	// It reports false when the product is missing or the stock would go
	// negative; the row is left untouched in that case.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int64) (bool, error)
	// IncrementStock adds qty back, used to compensate a failed checkout.
	IncrementStock(ctx context.Context, id uuid.UUID, qty int64) error
}
