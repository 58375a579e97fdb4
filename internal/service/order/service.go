package order

import (
	"context"
	"encoding/json"
	"fmt"

	"bookstore/internal/domain"
	"bookstore/internal/uow"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service turns carts into orders.
type Service struct {
	logger    *zap.Logger
	newNumber func() string
	newEvent  func() string
}

func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger:    logger,
		newNumber: uuid.NewString,
		newEvent:  uuid.NewString,
	}
}

type CreateInput struct {
	CartID        string               `json:"cartId"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
}

// Create checks out the cart: the order row, the cart's switch to inactive
// and the order.created outbox event are written in tx and stand or fall
// together.
func (s *Service) Create(ctx context.Context, tx uow.Tx, creatorID string, in CreateInput) (*domain.Order, error) {
	if !in.PaymentMethod.Valid() {
		return nil, domain.ErrInvalidPaymentMethod
	}

	cart, err := tx.Carts().GetByIDForUpdate(ctx, in.CartID)
	if err != nil {
		return nil, err
	}
	if cart.CustomerID != creatorID {
		return nil, domain.ErrCartOwnership
	}
	if !cart.Active() {
		return nil, domain.ErrCartInactive
	}
	lines, err := tx.LineItems().ListByCart(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	order, err := tx.Orders().Create(ctx, domain.Order{
		CartID:        cart.ID,
		CustomerID:    creatorID,
		OrderNumber:   s.newNumber(),
		Status:        domain.OrderCreated,
		PaymentMethod: in.PaymentMethod,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	inactive := domain.CartInactive
	if _, err := tx.Carts().Update(ctx, cart.ID, domain.CartPatch{Status: &inactive}); err != nil {
		return nil, fmt.Errorf("deactivate cart: %w", err)
	}

	if err := s.recordCreated(ctx, tx, order, cart.TotalCents); err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("cart_id", cart.ID),
		zap.String("customer_id", creatorID),
		zap.Int64("total_cents", cart.TotalCents))
	return order, nil
}

func (s *Service) recordCreated(ctx context.Context, tx uow.Tx, order *domain.Order, totalCents int64) error {
	payload, err := json.Marshal(domain.OrderCreatedPayload{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		CartID:        order.CartID,
		CustomerID:    order.CustomerID,
		PaymentMethod: order.PaymentMethod,
		TotalCents:    totalCents,
		CreatedAt:     order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}
	err = tx.Outbox().Append(ctx, domain.OutboxEvent{
		EventID: s.newEvent(),
		Topic:   domain.TopicOrderCreated,
		Key:     order.ID,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("append order event: %w", err)
	}
	return nil
}

// Find returns a single order.
func (s *Service) Find(ctx context.Context, tx uow.Tx, orderID string) (*domain.Order, error) {
	return tx.Orders().GetByID(ctx, orderID)
}

// FindByCustomer pages through a customer's orders oldest first. No orders
// is an empty slice, not an error.
func (s *Service) FindByCustomer(ctx context.Context, tx uow.Tx, customerID string, page domain.Page) ([]domain.Order, error) {
	orders, err := tx.Orders().ListByCustomer(ctx, customerID, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}
