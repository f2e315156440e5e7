package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/tasoula/intershop-sub000/internal/order/domain"
)

type OrderRepo interface {
	// CreateHeader inserts the order row so items can reference it.
	CreateHeader(ctx context.Context, userID uuid.UUID) (domain.Order, error)
	// SetTotal persists the final total on an existing order.
	SetTotal(ctx context.Context, order domain.Order) (domain.Order, error)
	SaveItem(ctx context.Context, item domain.OrderItem) (domain.OrderItem, error)
	// Delete removes the order and its items, used to unwind a failed
	// checkout.
	Delete(ctx context.Context, orderID uuid.UUID) error

	FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Order, error)
	FindByID(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	FindItemsByOrderID(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error)
}
