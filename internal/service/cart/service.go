package cart

import (
	"context"
	"errors"
	"fmt"

	"bookstore/internal/domain"
	"bookstore/internal/ledger"
	cartrepo "bookstore/internal/repository/cart"
	"bookstore/internal/uow"
	"go.uber.org/zap"
)

// Service owns the cart lifecycle. Every method runs inside the caller's
// transaction and reaches storage only through tx.
type Service struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

type AddLineItemInput struct {
	BookID   string `json:"bookId"`
	Quantity int    `json:"quantity"`
}

type RemoveLineItemInput struct {
	LineItemID string `json:"lineItemId"`
	Quantity   int    `json:"quantity"`
}

func (s *Service) Create(ctx context.Context, tx uow.Tx, customerID string) (*domain.Cart, error) {
	cart, err := tx.Carts().Create(ctx, cartrepo.CreateCartInput{CustomerID: customerID})
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	cart.LineItems = []domain.LineItem{}
	s.logger.Info("cart created", zap.String("cart_id", cart.ID), zap.String("customer_id", customerID))
	return cart, nil
}

// Find loads a cart, with its line items when withLines is set.
func (s *Service) Find(ctx context.Context, tx uow.Tx, cartID string, withLines bool) (*domain.Cart, error) {
	cart, err := tx.Carts().GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !withLines {
		return cart, nil
	}
	if err := loadLines(ctx, tx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// FindActiveByCustomer returns the customer's newest active cart.
func (s *Service) FindActiveByCustomer(ctx context.Context, tx uow.Tx, customerID string) (*domain.Cart, error) {
	cart, err := tx.Carts().GetActiveByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := loadLines(ctx, tx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Update applies the fields set in patch. A total written here is an
// administrative correction; the next line item change resums it.
func (s *Service) Update(ctx context.Context, tx uow.Tx, cartID string, patch domain.CartPatch) (*domain.Cart, error) {
	if patch.Status != nil && *patch.Status != domain.CartActive && *patch.Status != domain.CartInactive {
		return nil, fmt.Errorf("%w: unknown cart status %q", domain.ErrInvalidInput, *patch.Status)
	}
	if patch.TotalCents != nil && *patch.TotalCents < 0 {
		return nil, fmt.Errorf("%w: total must not be negative", domain.ErrInvalidInput)
	}
	if patch.Empty() {
		return s.Find(ctx, tx, cartID, true)
	}
	cart, err := tx.Carts().Update(ctx, cartID, patch)
	if err != nil {
		return nil, err
	}
	if err := loadLines(ctx, tx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddLineItem adds quantity copies of a book, merging into the book's
// existing line when there is one.
func (s *Service) AddLineItem(ctx context.Context, tx uow.Tx, cartID string, in AddLineItemInput) (*domain.Cart, error) {
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	cart, err := s.lockActive(ctx, tx, cartID)
	if err != nil {
		return nil, err
	}
	book, err := tx.Books().GetByID(ctx, in.BookID)
	if err != nil {
		return nil, err
	}

	change, err := ledger.AddQuantity(cart, *book, in.Quantity)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, tx, cart, change); err != nil {
		return nil, err
	}
	s.logger.Info("line item added",
		zap.String("cart_id", cart.ID),
		zap.String("book_id", book.ID),
		zap.Int("quantity", in.Quantity),
		zap.Int64("total_cents", cart.TotalCents))
	return cart, nil
}

// RemoveLineItem takes quantity copies out of a line; the line disappears
// once nothing is left of it.
func (s *Service) RemoveLineItem(ctx context.Context, tx uow.Tx, cartID string, in RemoveLineItemInput) (*domain.Cart, error) {
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	cart, err := s.lockActive(ctx, tx, cartID)
	if err != nil {
		return nil, err
	}

	change, err := ledger.RemoveQuantity(cart, in.LineItemID, in.Quantity)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, tx, cart, change); err != nil {
		return nil, err
	}
	s.logger.Info("line item removed",
		zap.String("cart_id", cart.ID),
		zap.String("line_item_id", in.LineItemID),
		zap.Int("quantity", in.Quantity),
		zap.Int64("total_cents", cart.TotalCents))
	return cart, nil
}

// Delete removes an active cart together with its line items. Carts that
// were turned into orders stay, the order still points at them.
func (s *Service) Delete(ctx context.Context, tx uow.Tx, cartID string) error {
	cart, err := tx.Carts().GetByIDForUpdate(ctx, cartID)
	if err != nil {
		return err
	}
	if !cart.Active() {
		return domain.ErrCartInactive
	}
	if err := tx.LineItems().DeleteByCart(ctx, cartID); err != nil {
		return fmt.Errorf("delete line items: %w", err)
	}
	if err := tx.Carts().Delete(ctx, cartID); err != nil {
		return err
	}
	s.logger.Info("cart deleted", zap.String("cart_id", cartID))
	return nil
}

func (s *Service) lockActive(ctx context.Context, tx uow.Tx, cartID string) (*domain.Cart, error) {
	cart, err := tx.Carts().GetByIDForUpdate(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !cart.Active() {
		return nil, domain.ErrCartInactive
	}
	if err := loadLines(ctx, tx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// persist writes the single line change and the resummed total.
func (s *Service) persist(ctx context.Context, tx uow.Tx, cart *domain.Cart, change ledger.Change) error {
	lines := tx.LineItems()
	switch {
	case change.Created != nil:
		created, err := lines.Create(ctx, *change.Created)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return fmt.Errorf("create line item: book %s already in cart: %w", change.Created.BookID, err)
			}
			return fmt.Errorf("create line item: %w", err)
		}
		cart.LineItems[len(cart.LineItems)-1] = *created
	case change.Updated != nil:
		if err := lines.UpdateQuantity(ctx, cart.ID, change.Updated.ID, change.Updated.Quantity, change.Updated.TotalCents); err != nil {
			return fmt.Errorf("update line item: %w", err)
		}
	case change.DeletedID != "":
		if err := lines.Delete(ctx, cart.ID, change.DeletedID); err != nil {
			return fmt.Errorf("delete line item: %w", err)
		}
	}

	total := change.TotalCents
	updated, err := tx.Carts().Update(ctx, cart.ID, domain.CartPatch{TotalCents: &total})
	if err != nil {
		return fmt.Errorf("update cart total: %w", err)
	}
	cart.TotalCents = updated.TotalCents
	cart.UpdatedAt = updated.UpdatedAt
	return nil
}

func loadLines(ctx context.Context, tx uow.Tx, cart *domain.Cart) error {
	lines, err := tx.LineItems().ListByCart(ctx, cart.ID)
	if err != nil {
		return fmt.Errorf("list line items: %w", err)
	}
	if lines == nil {
		lines = []domain.LineItem{}
	}
	cart.LineItems = lines
	return nil
}
