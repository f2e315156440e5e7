package app

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/tasoula/intershop-sub000/internal/cart/domain"
)

var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	repo CartRepo
}

func NewService(repo CartRepo) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) ListItems(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int64) error {
	if userID == uuid.Nil || productID == uuid.Nil || quantity <= 0 {
		return ErrInvalidInput
	}
	return s.repo.AddItem(ctx, domain.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	})
}

// SetQuantity pins the line to an exact quantity; zero deletes the line.
func (s *Service) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int64) error {
	if userID == uuid.Nil || productID == uuid.Nil || quantity < 0 {
		return ErrInvalidInput
	}
	return s.repo.SetQuantity(ctx, userID, productID, quantity)
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil || productID == uuid.Nil {
		return ErrInvalidInput
	}
	return s.repo.RemoveItem(ctx, userID, productID)
}

func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrInvalidInput
	}
	return s.repo.DeleteAllByUser(ctx, userID)
}
