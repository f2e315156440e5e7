package app

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/tasoula/intershop-sub000/internal/cart/domain"
)

type fakeRepo struct {
	items map[uuid.UUID]map[uuid.UUID]int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[uuid.UUID]map[uuid.UUID]int64)}
}

func (r *fakeRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	var out []domain.CartItem
	for pid, qty := range r.items[userID] {
		out = append(out, domain.CartItem{UserID: userID, ProductID: pid, Quantity: qty})
	}
	return out, nil
}

func (r *fakeRepo) AddItem(_ context.Context, item domain.CartItem) error {
	if r.items[item.UserID] == nil {
		r.items[item.UserID] = make(map[uuid.UUID]int64)
	}
	r.items[item.UserID][item.ProductID] += item.Quantity
	return nil
}

func (r *fakeRepo) SetQuantity(_ context.Context, userID, productID uuid.UUID, quantity int64) error {
	if quantity <= 0 {
		return r.RemoveItem(context.Background(), userID, productID)
	}
	if r.items[userID] == nil {
		r.items[userID] = make(map[uuid.UUID]int64)
	}
	r.items[userID][productID] = quantity
	return nil
}

func (r *fakeRepo) RemoveItem(_ context.Context, userID, productID uuid.UUID) error {
	delete(r.items[userID], productID)
	return nil
}

func (r *fakeRepo) DeleteAllByUser(_ context.Context, userID uuid.UUID) error {
	delete(r.items, userID)
	return nil
}

func TestAddItemValidation(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	t.Run("nil user -> invalid", func(t *testing.T) {
		if err := svc.AddItem(ctx, uuid.Nil, uuid.New(), 1); err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("zero quantity -> invalid", func(t *testing.T) {
		if err := svc.AddItem(ctx, uuid.New(), uuid.New(), 0); err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	userID := uuid.New()
	productID := uuid.New()

	if err := svc.AddItem(ctx, userID, productID, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := svc.AddItem(ctx, userID, productID, 3); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	items, err := svc.ListItems(ctx, userID)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 5 {
		t.Fatalf("expected single line with quantity 5, got %+v", items)
	}
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	userID := uuid.New()
	productID := uuid.New()

	if err := svc.AddItem(ctx, userID, productID, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := svc.SetQuantity(ctx, userID, productID, 0); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}

	items, err := svc.ListItems(ctx, userID)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v", items)
	}
}

func TestClearDrainsCart(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	userID := uuid.New()
	_ = svc.AddItem(ctx, userID, uuid.New(), 1)
	_ = svc.AddItem(ctx, userID, uuid.New(), 4)

	if err := svc.Clear(ctx, userID); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	items, _ := svc.ListItems(ctx, userID)
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v", items)
	}
}
