package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tasoula/intershop-sub000/internal/order/domain"
)

var ErrNotFound = errors.New("order not found")

type Service struct {
	repo OrderRepo
}

func NewService(repo OrderRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListOrders(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// GetOrder returns the order header with its line items. Orders are
// only readable by their owner.
func (s *Service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (domain.Order, []domain.OrderItem, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, nil, err
	}
	if order.UserID != userID {
		return domain.Order{}, nil, ErrNotFound
	}

	items, err := s.repo.FindItemsByOrderID(ctx, orderID)
	if err != nil {
		return domain.Order{}, nil, fmt.Errorf("order %s items: %w", orderID, err)
	}
	return order, items, nil
}
