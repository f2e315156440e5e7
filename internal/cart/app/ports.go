package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/tasoula/intershop-sub000/internal/cart/domain"
)

type CartRepo interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error)
	// AddItem upserts the (user, product) row, incrementing quantity.
	AddItem(ctx context.Context, item domain.CartItem) error
	// SetQuantity replaces the quantity; zero or less removes the row.
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int64) error
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) error
}
