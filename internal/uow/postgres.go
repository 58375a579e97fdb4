package uow

import (
	"context"

	bookrepo "bookstore/internal/repository/book"
	cartrepo "bookstore/internal/repository/cart"
	customerrepo "bookstore/internal/repository/customer"
	lineitemrepo "bookstore/internal/repository/lineitem"
	orderrepo "bookstore/internal/repository/order"
	outboxrepo "bookstore/internal/repository/outbox"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Postgres runs units of work as pgx transactions on a pool.
type Postgres struct {
	pool   *pgxpool.Pool
	opts   pgx.TxOptions
	logger *zap.Logger
	hooks  Hooks
}

// NewPostgres uses read committed isolation; cart writers serialise on the
// cart row lock taken by GetByIDForUpdate.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger, hooks Hooks) *Postgres {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{
		pool:   pool,
		opts:   pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
		logger: logger,
		hooks:  hooks,
	}
}

func (p *Postgres) Run(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return run(ctx, p.hooks, p.begin, fn)
}

func (p *Postgres) begin(ctx context.Context) (handle, error) {
	tx, err := p.pool.BeginTx(ctx, p.opts)
	if err != nil {
		p.logger.Error("uow: begin", zap.Error(err))
		return nil, err
	}
	return &pgHandle{ctx: ctx, tx: tx, logger: p.logger}, nil
}

type pgHandle struct {
	ctx    context.Context
	tx     pgx.Tx
	logger *zap.Logger
}

func (h *pgHandle) Carts() cartrepo.Repository         { return cartrepo.NewPostgres(h.tx, h.logger) }
func (h *pgHandle) LineItems() lineitemrepo.Repository { return lineitemrepo.NewPostgres(h.tx, h.logger) }
func (h *pgHandle) Orders() orderrepo.Repository       { return orderrepo.NewPostgres(h.tx, h.logger) }
func (h *pgHandle) Books() bookrepo.Repository         { return bookrepo.NewPostgres(h.tx, h.logger) }
func (h *pgHandle) Customers() customerrepo.Repository { return customerrepo.NewPostgres(h.tx, h.logger) }
func (h *pgHandle) Outbox() outboxrepo.Repository      { return outboxrepo.NewPostgres(h.tx, h.logger) }

func (h *pgHandle) commit(ctx context.Context) error {
	return h.tx.Commit(ctx)
}

func (h *pgHandle) rollback(ctx context.Context) error {
	return h.tx.Rollback(ctx)
}

// release returns the connection; it is a no-op once Commit or Rollback ran.
func (h *pgHandle) release() {
	_ = h.tx.Rollback(context.WithoutCancel(h.ctx))
}
