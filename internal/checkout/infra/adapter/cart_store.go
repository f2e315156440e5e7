package adapter

import (
	"context"

	"github.com/google/uuid"

	cartapp "github.com/tasoula/intershop-sub000/internal/cart/app"
	checkoutapp "github.com/tasoula/intershop-sub000/internal/checkout/app"
)

type CartServiceStore struct {
	svc *cartapp.Service
}

func NewCartServiceStore(svc *cartapp.Service) *CartServiceStore {
	return &CartServiceStore{svc: svc}
}

func (a *CartServiceStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]checkoutapp.CartLine, error) {
	items, err := a.svc.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]checkoutapp.CartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, checkoutapp.CartLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return lines, nil
}

func (a *CartServiceStore) DeleteAllByUser(ctx context.Context, userID uuid.UUID) error {
	return a.svc.Clear(ctx, userID)
}
