// Package uow runs a body of repository calls as one atomic unit of work.
package uow

import (
	"context"
	"errors"
	"fmt"

	bookrepo "bookstore/internal/repository/book"
	cartrepo "bookstore/internal/repository/cart"
	customerrepo "bookstore/internal/repository/customer"
	lineitemrepo "bookstore/internal/repository/lineitem"
	orderrepo "bookstore/internal/repository/order"
	outboxrepo "bookstore/internal/repository/outbox"
)

var (
	// ErrTxFailed matches every begin, commit or rollback failure.
	ErrTxFailed = errors.New("transaction failed")
	// ErrNestedTx is returned when Run is called from inside another Run body.
	ErrNestedTx = errors.New("nested transactions are not supported")
)

// Tx hands out repositories bound to one open transaction.
type Tx interface {
	Carts() cartrepo.Repository
	LineItems() lineitemrepo.Repository
	Orders() orderrepo.Repository
	Books() bookrepo.Repository
	Customers() customerrepo.Repository
	Outbox() outboxrepo.Repository
}

// Runner opens transactions.
type Runner interface {
	// Run commits when fn returns nil and rolls back otherwise. The error
	// returned by fn is passed through unchanged.
	Run(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Do is Run for bodies that produce a value.
func Do[T any](ctx context.Context, r Runner, fn func(ctx context.Context, tx Tx) (T, error)) (T, error) {
	var out T
	err := r.Run(ctx, func(ctx context.Context, tx Tx) error {
		v, err := fn(ctx, tx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// TxError reports a failure of the transaction resource itself.
type TxError struct {
	Op  string
	Err error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("%s transaction: %v", e.Op, e.Err)
}

func (e *TxError) Unwrap() error { return e.Err }

func (e *TxError) Is(target error) bool { return target == ErrTxFailed }

type ctxKey struct{}

func markActive(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, true)
}

func active(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKey{}).(bool)
	return v
}

// handle is the lifecycle every backend implements.
type handle interface {
	Tx
	commit(ctx context.Context) error
	rollback(ctx context.Context) error
	release()
}

// run drives begin/body/commit-or-rollback/release for any backend.
func run(ctx context.Context, hooks Hooks, begin func(ctx context.Context) (handle, error), fn func(ctx context.Context, tx Tx) error) (err error) {
	if active(ctx) {
		return ErrNestedTx
	}
	h, err := begin(ctx)
	if err != nil {
		hooks.observe(OutcomeBeginFailed)
		return &TxError{Op: "begin", Err: err}
	}
	defer h.release()

	committed := false
	defer func() {
		if committed {
			return
		}
		if p := recover(); p != nil {
			_ = h.rollback(context.WithoutCancel(ctx))
			hooks.observe(OutcomeRolledBack)
			panic(p)
		}
	}()

	if err := fn(markActive(ctx), h); err != nil {
		if rbErr := h.rollback(context.WithoutCancel(ctx)); rbErr != nil {
			hooks.observe(OutcomeRollbackFailed)
			return errors.Join(err, &TxError{Op: "rollback", Err: rbErr})
		}
		hooks.observe(OutcomeRolledBack)
		return err
	}

	committed = true
	if err := h.commit(ctx); err != nil {
		hooks.observe(OutcomeCommitFailed)
		return &TxError{Op: "commit", Err: err}
	}
	hooks.observe(OutcomeCommitted)
	return nil
}
