package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tasoula/intershop-sub000/internal/cart/domain"
)

// CartRepo keeps a user's cart as a single JSON document under
// cart:{userId}. Suited to session-style carts that never outlive the
// shopping session.
type CartRepo struct {
	client *redis.Client
}

func NewCartRepo(client *redis.Client) *CartRepo {
	return &CartRepo{client: client}
}

type storedItem struct {
	ProductID string    `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

func cartKey(userID uuid.UUID) string {
	return "cart:" + userID.String()
}

func (r *CartRepo) load(ctx context.Context, userID uuid.UUID) ([]storedItem, error) {
	raw, err := r.client.Get(ctx, cartKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []storedItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CartRepo) store(ctx context.Context, userID uuid.UUID, items []storedItem) error {
	if len(items) == 0 {
		return r.client.Del(ctx, cartKey(userID)).Err()
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, cartKey(userID), raw, 0).Err()
}

func (r *CartRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	stored, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.CartItem, 0, len(stored))
	for _, it := range stored {
		productID, err := uuid.Parse(it.ProductID)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.CartItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  it.Quantity,
			CreatedAt: it.CreatedAt,
		})
	}
	return items, nil
}

func (r *CartRepo) AddItem(ctx context.Context, item domain.CartItem) error {
	stored, err := r.load(ctx, item.UserID)
	if err != nil {
		return err
	}

	pid := item.ProductID.String()
	for i := range stored {
		if stored[i].ProductID == pid {
			stored[i].Quantity += item.Quantity
			return r.store(ctx, item.UserID, stored)
		}
	}

	stored = append(stored, storedItem{
		ProductID: pid,
		Quantity:  item.Quantity,
		CreatedAt: time.Now().UTC(),
	})
	return r.store(ctx, item.UserID, stored)
}

func (r *CartRepo) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int64) error {
	if quantity <= 0 {
		return r.RemoveItem(ctx, userID, productID)
	}

	stored, err := r.load(ctx, userID)
	if err != nil {
		return err
	}

	pid := productID.String()
	for i := range stored {
		if stored[i].ProductID == pid {
			stored[i].Quantity = quantity
			return r.store(ctx, userID, stored)
		}
	}

	stored = append(stored, storedItem{
		ProductID: pid,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
	})
	return r.store(ctx, userID, stored)
}

func (r *CartRepo) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	stored, err := r.load(ctx, userID)
	if err != nil {
		return err
	}

	pid := productID.String()
	kept := stored[:0]
	for _, it := range stored {
		if it.ProductID != pid {
			kept = append(kept, it)
		}
	}
	return r.store(ctx, userID, kept)
}

func (r *CartRepo) DeleteAllByUser(ctx context.Context, userID uuid.UUID) error {
	return r.client.Del(ctx, cartKey(userID)).Err()
}
