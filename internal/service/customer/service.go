package customer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"bookstore/internal/domain"
	"bookstore/internal/uow"
)

// ErrInvalidEmail is returned when a customer is registered without a
// usable email address.
var ErrInvalidEmail = fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)

// Service links authenticated users to customer records. Authentication
// itself happens in front of the API.
type Service struct{}

func New() *Service {
	return &Service{}
}

// Register creates the customer for userID, or returns the existing one.
func (s *Service) Register(ctx context.Context, tx uow.Tx, userID, email string) (*domain.Customer, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	existing, err := tx.Customers().GetByUserID(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return tx.Customers().Create(ctx, domain.Customer{UserID: userID, Email: email})
}

// Resolve maps an authenticated user id to its customer.
func (s *Service) Resolve(ctx context.Context, tx uow.Tx, userID string) (*domain.Customer, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrCustomerNotFound
	}
	return tx.Customers().GetByUserID(ctx, userID)
}
