package uow

import (
	"context"
	"errors"
	"testing"

	"bookstore/internal/domain"
	cartrepo "bookstore/internal/repository/cart"
	"bookstore/internal/repository/memory"
)

type fakeHandle struct {
	Tx
	commitErr   error
	rollbackErr error
	commits     int
	rollbacks   int
	releases    int
	events      []string
}

func (h *fakeHandle) commit(context.Context) error {
	h.commits++
	h.events = append(h.events, "commit")
	return h.commitErr
}

func (h *fakeHandle) rollback(context.Context) error {
	h.rollbacks++
	h.events = append(h.events, "rollback")
	return h.rollbackErr
}

func (h *fakeHandle) release() {
	h.releases++
	h.events = append(h.events, "release")
}

func beginWith(h *fakeHandle) func(context.Context) (handle, error) {
	return func(context.Context) (handle, error) { return h, nil }
}

func TestRun_CommitsOnSuccess(t *testing.T) {
	h := &fakeHandle{}
	var outcomes []Outcome
	hooks := Hooks{OnFinish: func(o Outcome) { outcomes = append(outcomes, o) }}

	err := run(context.Background(), hooks, beginWith(h), func(context.Context, Tx) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.commits != 1 || h.rollbacks != 0 || h.releases != 1 {
		t.Fatalf("unexpected calls: %+v", h.events)
	}
	if h.events[len(h.events)-1] != "release" {
		t.Fatalf("expected release last, got %v", h.events)
	}
	if len(outcomes) != 1 || outcomes[0] != OutcomeCommitted {
		t.Fatalf("unexpected outcomes %v", outcomes)
	}
}

func TestRun_RollsBackAndReturnsBodyErrorUnchanged(t *testing.T) {
	h := &fakeHandle{}
	err := run(context.Background(), Hooks{}, beginWith(h), func(context.Context, Tx) error {
		return domain.ErrCartNotFound
	})
	if err != domain.ErrCartNotFound {
		t.Fatalf("expected the body error itself, got %v", err)
	}
	if h.commits != 0 || h.rollbacks != 1 || h.releases != 1 {
		t.Fatalf("unexpected calls: %+v", h.events)
	}
}

func TestRun_RollbackFailurePropagates(t *testing.T) {
	rbErr := errors.New("connection reset")
	h := &fakeHandle{rollbackErr: rbErr}
	err := run(context.Background(), Hooks{}, beginWith(h), func(context.Context, Tx) error {
		return domain.ErrCartNotFound
	})
	if !errors.Is(err, ErrTxFailed) || !errors.Is(err, rbErr) {
		t.Fatalf("expected rollback failure, got %v", err)
	}
	if !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected body error to stay inspectable, got %v", err)
	}
	if h.releases != 1 {
		t.Fatalf("expected release after failed rollback")
	}
}

func TestRun_CommitFailure(t *testing.T) {
	h := &fakeHandle{commitErr: errors.New("serialization failure")}
	err := run(context.Background(), Hooks{}, beginWith(h), func(context.Context, Tx) error { return nil })
	var txErr *TxError
	if !errors.As(err, &txErr) || txErr.Op != "commit" {
		t.Fatalf("expected commit TxError, got %v", err)
	}
	if !errors.Is(err, ErrTxFailed) {
		t.Fatalf("expected ErrTxFailed match")
	}
	if h.rollbacks != 0 || h.releases != 1 {
		t.Fatalf("unexpected calls: %+v", h.events)
	}
}

func TestRun_BeginFailure(t *testing.T) {
	called := false
	err := run(context.Background(), Hooks{}, func(context.Context) (handle, error) {
		return nil, errors.New("pool closed")
	}, func(context.Context, Tx) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrTxFailed) {
		t.Fatalf("expected ErrTxFailed, got %v", err)
	}
	if called {
		t.Fatalf("body must not run without a transaction")
	}
}

func TestRun_PanicRollsBack(t *testing.T) {
	h := &fakeHandle{}
	defer func() {
		if p := recover(); p != "boom" {
			t.Fatalf("expected panic to be re-raised, got %v", p)
		}
		if h.rollbacks != 1 || h.releases != 1 || h.commits != 0 {
			t.Fatalf("unexpected calls: %+v", h.events)
		}
	}()
	_ = run(context.Background(), Hooks{}, beginWith(h), func(context.Context, Tx) error {
		panic("boom")
	})
}

func TestRun_RejectsNesting(t *testing.T) {
	r := NewMemory(memory.NewStore(), Hooks{})
	err := r.Run(context.Background(), func(ctx context.Context, _ Tx) error {
		return r.Run(ctx, func(context.Context, Tx) error { return nil })
	})
	if !errors.Is(err, ErrNestedTx) {
		t.Fatalf("expected ErrNestedTx, got %v", err)
	}
}

func TestMemory_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	r := NewMemory(memory.NewStore(), Hooks{})

	var cartID string
	err := r.Run(ctx, func(ctx context.Context, tx Tx) error {
		c, err := tx.Carts().Create(ctx, cartrepo.CreateCartInput{CustomerID: "cust"})
		if err != nil {
			return err
		}
		cartID = c.ID
		return errors.New("abort")
	})
	if err == nil || err.Error() != "abort" {
		t.Fatalf("expected abort, got %v", err)
	}

	err = r.Run(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.Carts().GetByID(ctx, cartID)
		return err
	})
	if !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected rolled back cart to be absent, got %v", err)
	}
}

func TestDo_ReturnsValue(t *testing.T) {
	r := NewMemory(memory.NewStore(), Hooks{})
	cart, err := Do(context.Background(), r, func(ctx context.Context, tx Tx) (*domain.Cart, error) {
		return tx.Carts().Create(ctx, cartrepo.CreateCartInput{CustomerID: "cust"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := Do(context.Background(), r, func(ctx context.Context, tx Tx) (*domain.Cart, error) {
		return tx.Carts().GetByID(ctx, cart.ID)
	})
	if err != nil {
		t.Fatalf("committed cart not visible: %v", err)
	}
	if got.Status != domain.CartActive || got.TotalCents != 0 {
		t.Fatalf("unexpected cart %+v", got)
	}
}
