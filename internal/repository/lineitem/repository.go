package lineitem

import (
	"context"

	"bookstore/internal/domain"
)

type Repository interface {
	// ListByCart returns the cart's line items in insertion order.
	ListByCart(ctx context.Context, cartID string) ([]domain.LineItem, error)
	Create(ctx context.Context, item domain.LineItem) (*domain.LineItem, error)
	UpdateQuantity(ctx context.Context, cartID, id string, quantity int, totalCents int64) error
	Delete(ctx context.Context, cartID, id string) error
	DeleteByCart(ctx context.Context, cartID string) error
}
