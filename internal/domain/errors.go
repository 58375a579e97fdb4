package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidInput marks caller errors detected before any mutation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict marks operations not allowed in the entity's current state.
	ErrConflict = errors.New("conflict")
)

var (
	ErrCartNotFound     = fmt.Errorf("cart %w", ErrNotFound)
	ErrLineItemNotFound = fmt.Errorf("line item %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrBookNotFound     = fmt.Errorf("book %w", ErrNotFound)
	ErrCustomerNotFound = fmt.Errorf("customer %w", ErrNotFound)

	ErrInvalidQuantity      = fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	ErrInvalidPaymentMethod = fmt.Errorf("%w: unsupported payment method", ErrInvalidInput)
	ErrCartOwnership        = fmt.Errorf("%w: cart belongs to another customer", ErrInvalidInput)

	ErrCartInactive = fmt.Errorf("%w: cart is not active", ErrConflict)
	ErrEmptyCart    = fmt.Errorf("%w: cart has no line items", ErrConflict)
)
