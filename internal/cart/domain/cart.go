package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one line in a user's cart: one row per (user, product).
type CartItem struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int64
	CreatedAt time.Time
}
