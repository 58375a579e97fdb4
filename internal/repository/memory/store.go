// Package memory keeps every repository in process memory. A Session sees a
// private copy of the data and publishes it on Commit, so rolled back work
// never becomes visible. Only one session is open at a time.
package memory

import (
	"context"
	"errors"
	"time"

	"bookstore/internal/domain"
	bookrepo "bookstore/internal/repository/book"
	cartrepo "bookstore/internal/repository/cart"
	customerrepo "bookstore/internal/repository/customer"
	lineitemrepo "bookstore/internal/repository/lineitem"
	orderrepo "bookstore/internal/repository/order"
	outboxrepo "bookstore/internal/repository/outbox"
)

// ErrSessionClosed is returned when a finished session is used again.
var ErrSessionClosed = errors.New("memory: session closed")

type state struct {
	carts     map[string]domain.Cart
	lines     []domain.LineItem
	orders    []domain.Order
	books     map[string]domain.Book
	customers map[string]domain.Customer
	outbox    []domain.OutboxEvent
	outboxSeq int64
}

func newState() *state {
	return &state{
		carts:     make(map[string]domain.Cart),
		books:     make(map[string]domain.Book),
		customers: make(map[string]domain.Customer),
	}
}

func (s *state) clone() *state {
	out := &state{
		carts:     make(map[string]domain.Cart, len(s.carts)),
		lines:     append([]domain.LineItem(nil), s.lines...),
		orders:    append([]domain.Order(nil), s.orders...),
		books:     make(map[string]domain.Book, len(s.books)),
		customers: make(map[string]domain.Customer, len(s.customers)),
		outbox:    make([]domain.OutboxEvent, len(s.outbox)),
		outboxSeq: s.outboxSeq,
	}
	for k, v := range s.carts {
		out.carts[k] = v
	}
	for k, v := range s.books {
		out.books[k] = v
	}
	for k, v := range s.customers {
		out.customers[k] = v
	}
	for i, ev := range s.outbox {
		ev.Payload = append([]byte(nil), ev.Payload...)
		out.outbox[i] = ev
	}
	return out
}

// Store is an in-memory database.
type Store struct {
	sem   chan struct{}
	state *state
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		sem:   make(chan struct{}, 1),
		state: newState(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Begin waits for exclusive access and opens a session over a snapshot.
// The wait ends only when the open session finishes or ctx is done. A
// caller that already holds a session and calls Begin again, on a context
// the uow runner has not marked, waits until ctx is done; pass a context
// with a deadline when that can happen.
func (s *Store) Begin(ctx context.Context) (*Session, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &Session{store: s, state: s.state.clone()}, nil
}

// Session is one unit of work against the store.
type Session struct {
	store *Store
	state *state
	done  bool
}

// Commit publishes the session's changes.
func (t *Session) Commit() error {
	if t.done {
		return ErrSessionClosed
	}
	t.store.state = t.state
	t.release()
	return nil
}

// Rollback discards the session's changes.
func (t *Session) Rollback() error {
	if t.done {
		return ErrSessionClosed
	}
	t.release()
	return nil
}

// Close releases the session if neither Commit nor Rollback ran.
func (t *Session) Close() {
	if !t.done {
		t.release()
	}
}

func (t *Session) release() {
	t.done = true
	t.state = nil
	<-t.store.sem
}

func (t *Session) Carts() cartrepo.Repository         { return cartRepo{t} }
func (t *Session) LineItems() lineitemrepo.Repository { return lineItemRepo{t} }
func (t *Session) Orders() orderrepo.Repository       { return orderRepo{t} }
func (t *Session) Books() bookrepo.Repository         { return bookRepo{t} }
func (t *Session) Customers() customerrepo.Repository { return customerRepo{t} }
func (t *Session) Outbox() outboxrepo.Repository      { return outboxRepo{t} }

func (t *Session) live() (*state, error) {
	if t.done {
		return nil, ErrSessionClosed
	}
	return t.state, nil
}

func (t *Session) now() time.Time {
	return t.store.now()
}
