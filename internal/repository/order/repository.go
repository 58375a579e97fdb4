package order

import (
	"context"

	"bookstore/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByCartID(ctx context.Context, cartID string) (*domain.Order, error)
	// ListByCustomer pages through a customer's orders oldest first.
	ListByCustomer(ctx context.Context, customerID string, page domain.Page) ([]domain.Order, error)
}
