package cart

import (
	"context"

	"bookstore/internal/domain"
)

type CreateCartInput struct {
	CustomerID string
}

// Repository persists carts. Returned carts never carry line items; those
// live behind the lineitem repository.
type Repository interface {
	Create(ctx context.Context, in CreateCartInput) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	// GetByIDForUpdate loads the cart and holds a row lock until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveByCustomer(ctx context.Context, customerID string) (*domain.Cart, error)
	Update(ctx context.Context, id string, patch domain.CartPatch) (*domain.Cart, error)
	Delete(ctx context.Context, id string) error
}
