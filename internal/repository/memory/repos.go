package memory

import (
	"context"
	"sort"

	"bookstore/internal/domain"
	cartrepo "bookstore/internal/repository/cart"
	"github.com/google/uuid"
)

type cartRepo struct{ t *Session }

func (r cartRepo) Create(_ context.Context, in cartrepo.CreateCartInput) (*domain.Cart, error) {
	s, err := r.t.live()
	if err != nil {
		return nil, err
	}
	now := r.t.now()
	c := domain.Cart{
		ID:         uuid.NewString(),
		CustomerID: in.CustomerID,
		Status:     domain.CartActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.carts[c.ID] = c
	return &c, nil
}

func (r cartRepo) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	s, err := r.t.live()
	if err != nil {
		return nil, err
	}
	c, ok := s.carts[id]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	return &c, nil
}

// GetByIDForUpdate needs no extra locking: the session already holds the store.
func (r cartRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Cart, error) {
	return r.GetByID(ctx, id)
}

func (r cartRepo) GetActiveByCustomer(_ context.Context, customerID string) (*domain.Cart, error) {
	s, err := r.t.live()
	if err != nil {
		return nil, err
	}
	var latest *domain.Cart
	for _, c := range s.carts {
		if c.CustomerID != customerID || c.Status != domain.CartActive {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			found := c
			latest = &found
		}
	}
	if latest == nil {
		return nil, domain.ErrCartNotFound
	}
	return latest, nil
}

func (r cartRepo) Update(_ context.Context, id string, patch domain.CartPatch) (*domain.Cart, error) {
	s, err := r.t.live()
	if err != nil {
		return nil, err
	}
	c, ok := s.carts[id]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	patch.Apply(&c)
	c.UpdatedAt = r.t.now()
	s.carts[id] = c
	return &c, nil
}

func (r cartRepo) Delete(_ context.Context, id string) error {
	s, err := r.t.live()
	if err != nil {
		return err
	}
	if _, ok := s.carts[id]; !ok {
		return domain.ErrCartNotFound
	}
	delete(s.carts, id)
	return nil
}

type lineItemRepo struct{ t *Session }

func (r lineItemRepo) ListByCart(_ context.Context, cartID string) ([]domain.LineItem, error) {
	s, err := r.t.live()
	if err != nil {
		return nil, err
	}
	var items []domain.LineItem
	for _, item := range s.lines {
		if item.CartID == cartID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r lineItemRepo) Create(_ context.Context, item domain.LineItem) (*domain.LineItem, error) {
	s, err := r.t.live()
	if err != nil {
		return nil, err
	}
	for _, existing := range s.lines {
		if existing.CartID == item.CartID && existing.BookID == item.BookID {
			return nil, domain.ErrAlreadyExists
		}
	}
	item.ID = uuid.NewString()
	item.CreatedAt = r.t.now()
	s.lines = append(s.lines, item)
	return &item, nil
}

func (r lineItemRepo) UpdateQuantity(_ context.Context, cartID, id string, quantity int, totalCents int64) error {
	s, err := r.t.live()
	if err != nil {
		return err
	}
	for i, item := range s.lines {
		if item.ID == id && item.CartID == cartID {
			s.lines[i].Quantity = quantity
			s.lines[i].TotalCents = totalCents
			return nil
		}
	}
	return domain.ErrLineItemNotFound
}

func (r lineItemRepo) Delete(_ context.Context, cartID, id string) error {
	s, err := r.t.live()
	if err != nil {
		return err
	}
	for i, item := range s.lines {
		if item.ID == id && item.CartID == cartID {
			s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
			return nil
		}
	}
	return domain.ErrLineItemNotFound
}

func (r lineItemRepo) DeleteByCart(_ context.Context, cartID string) error {
	s, err := r.t.live()
	if err != nil {
		return err
	}
	kept := s.lines[:0:0]
	for _, item := range s.lines {
		if item.CartID != cartID {
			kept = append(kept, item)
		}
	}
	s.lines = kept
	return nil
}

type orderRepo struct{ t *Session }

func (r orderRepo) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	s, err := r.t.live()
	if err != nil {
		return nil, err
	}
	for _, existing := range s.orders {
		if existing.CartID == o.CartID || existing.OrderNumber == o.OrderNumber {
			return nil, domain.ErrAlreadyExists
		}
	}
	o.ID = uuid.NewString()
	o.CreatedAt = r.t.now()
	s.orders = append(s.orders, o)
	return &o, nil
}

func (r orderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	return r.find(func(o domain.Order) bool { return o.ID == id })
}

func (r orderRepo) GetByCartID(_ context.Context, cartID string) (*domain.Order, error) {
	return r.find(func(o domain.Order) bool { return o.CartID == cartID })
}

func (r orderRepo) find(match func(domain.Order) bool) (*domain.Order, error) {
	s, err := r.t.live()
	if err != nil {
		return nil, err
	}
	for _, o := range s.orders {
		if match(o) {
			found := o
			return &found, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r orderRepo) ListByCustomer(_ context.Context, customerID string, page domain.Page) ([]domain.Order, error) {
	s, err := r.t.live()
	if err != nil {
		return nil, err
	}
	page = page.Normalize()
	orders := []domain.Order{}
	skipped := 0
	for _, o := range s.orders {
		if o.CustomerID != customerID {
			continue
		}
		if skipped < page.Offset {
			skipped++
			continue
		}
		if len(orders) == page.Limit {
			break
		}
		orders = append(orders, o)
	}
	return orders, nil
}

type bookRepo struct{ t *Session }

func (r bookRepo) List(_ context.Context) ([]domain.Book, error) {
	s, err := r.t.live()
	if err != nil {
		return nil, err
	}
	books := make([]domain.Book, 0, len(s.books))
	for _, b := range s.books {
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	return books, nil
}

func (r bookRepo) GetByID(_ context.Context, id string) (*domain.Book, error) {
	s, err := r.t.live()
	if err != nil {
		return nil, err
	}
	b, ok := s.books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	return &b, nil
}

func (r bookRepo) Upsert(_ context.Context, book domain.Book) (*domain.Book, error) {
	s, err := r.t.live()
	if err != nil {
		return nil, err
	}
	for id, existing := range s.books {
		if existing.ISBN == book.ISBN {
			book.ID = id
			book.CreatedAt = existing.CreatedAt
			s.books[id] = book
			return &book, nil
		}
	}
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	book.CreatedAt = r.t.now()
	s.books[book.ID] = book
	return &book, nil
}

type customerRepo struct{ t *Session }

func (r customerRepo) Create(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	s, err := r.t.live()
	if err != nil {
		return nil, err
	}
	for _, existing := range s.customers {
		if existing.UserID == c.UserID {
			return nil, domain.ErrAlreadyExists
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = r.t.now()
	s.customers[c.ID] = c
	return &c, nil
}

func (r customerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	s, err := r.t.live()
	if err != nil {
		return nil, err
	}
	c, ok := s.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return &c, nil
}

func (r customerRepo) GetByUserID(_ context.Context, userID string) (*domain.Customer, error) {
	s, err := r.t.live()
	if err != nil {
		return nil, err
	}
	for _, c := range s.customers {
		if c.UserID == userID {
			found := c
			return &found, nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

type outboxRepo struct{ t *Session }

func (r outboxRepo) Append(_ context.Context, ev domain.OutboxEvent) error {
	s, err := r.t.live()
	if err != nil {
		return err
	}
	for _, existing := range s.outbox {
		if existing.EventID == ev.EventID {
			return domain.ErrAlreadyExists
		}
	}
	s.outboxSeq++
	ev.ID = s.outboxSeq
	ev.CreatedAt = r.t.now()
	ev.SentAt = nil
	s.outbox = append(s.outbox, ev)
	return nil
}

func (r outboxRepo) FetchPending(_ context.Context, limit int) ([]domain.OutboxEvent, error) {
	s, err := r.t.live()
	if err != nil {
		return nil, err
	}
	var out []domain.OutboxEvent
	for _, ev := range s.outbox {
		if ev.SentAt != nil {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, ev)
	}
	return out, nil
}

func (r outboxRepo) MarkSent(_ context.Context, id int64) error {
	s, err := r.t.live()
	if err != nil {
		return err
	}
	for i, ev := range s.outbox {
		if ev.ID == id {
			now := r.t.now()
			s.outbox[i].SentAt = &now
			return nil
		}
	}
	return domain.ErrNotFound
}
