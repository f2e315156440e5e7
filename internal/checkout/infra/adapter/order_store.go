package adapter

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	checkoutapp "github.com/tasoula/intershop-sub000/internal/checkout/app"
	orderapp "github.com/tasoula/intershop-sub000/internal/order/app"
	orderdomain "github.com/tasoula/intershop-sub000/internal/order/domain"
)

type OrderRepoStore struct {
	repo orderapp.OrderRepo
}

func NewOrderRepoStore(repo orderapp.OrderRepo) *OrderRepoStore {
	return &OrderRepoStore{repo: repo}
}

func (a *OrderRepoStore) CreateHeader(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	order, err := a.repo.CreateHeader(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return order.ID, nil
}

func (a *OrderRepoStore) SaveItem(ctx context.Context, line checkoutapp.OrderLine) error {
	_, err := a.repo.SaveItem(ctx, orderdomain.OrderItem{
		OrderID:            line.OrderID,
		ProductID:          line.ProductID,
		Quantity:           line.Quantity,
		PriceAtTimeOfOrder: line.PriceAtTimeOfOrder,
	})
	return err
}

func (a *OrderRepoStore) SetTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error {
	_, err := a.repo.SetTotal(ctx, orderdomain.Order{ID: orderID, TotalAmount: total})
	return err
}

func (a *OrderRepoStore) Delete(ctx context.Context, orderID uuid.UUID) error {
	return a.repo.Delete(ctx, orderID)
}
