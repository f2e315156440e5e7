package adapter

import (
	"context"
	"errors"

	"github.com/google/uuid"

	catalogapp "github.com/tasoula/intershop-sub000/internal/catalog/app"
	checkoutapp "github.com/tasoula/intershop-sub000/internal/checkout/app"
)

type ProductServiceStore struct {
	svc *catalogapp.Service
}

func NewProductServiceStore(svc *catalogapp.Service) *ProductServiceStore {
	return &ProductServiceStore{svc: svc}
}

func (a *ProductServiceStore) Get(ctx context.Context, productID uuid.UUID) (checkoutapp.Product, error) {
	p, err := a.svc.GetProduct(ctx, productID)
	if errors.Is(err, catalogapp.ErrNotFound) {
		return checkoutapp.Product{}, checkoutapp.ErrProductNotFound
	}
	if err != nil {
		return checkoutapp.Product{}, err
	}

	return checkoutapp.Product{
		ID:            p.ID,
		Title:         p.Title,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
	}, nil
}

func (a *ProductServiceStore) DecrementStock(ctx context.Context, productID uuid.UUID, qty int64) (bool, error) {
	return a.svc.DecrementStock(ctx, productID, qty)
}

func (a *ProductServiceStore) RestoreStock(ctx context.Context, productID uuid.UUID, qty int64) error {
	return a.svc.RestoreStock(ctx, productID, qty)
}
