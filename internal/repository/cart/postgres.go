package cart

import (
	"context"

	"bookstore/internal/db"
	"bookstore/internal/domain"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const cartColumns = `id::text, customer_id::text, status, total_cents, billing_address_id, shipping_address_id, delivery_method, created_at, updated_at`

type postgresRepo struct {
	q      db.Querier
	logger *zap.Logger
}

// NewPostgres returns a Repository running its statements on q, which is
// either the pool or a transaction.
func NewPostgres(q db.Querier, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{q: q, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, in CreateCartInput) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (customer_id, status, total_cents)
VALUES ($1, 'active', 0)
RETURNING ` + cartColumns
	cart, err := scanCart(r.q.QueryRow(ctx, q, in.CustomerID))
	if err != nil {
		r.logger.Error("cart repo: create", zap.String("customer_id", in.CustomerID), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("cart repo: created", zap.String("cart_id", cart.ID), zap.String("customer_id", in.CustomerID))
	return cart, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	const q = `SELECT ` + cartColumns + ` FROM carts WHERE id = $1`
	return r.fetch(ctx, "get", q, id)
}

func (r *postgresRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Cart, error) {
	const q = `SELECT ` + cartColumns + ` FROM carts WHERE id = $1 FOR UPDATE`
	return r.fetch(ctx, "get for update", q, id)
}

func (r *postgresRepo) GetActiveByCustomer(ctx context.Context, customerID string) (*domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE customer_id = $1 AND status = 'active'
ORDER BY created_at DESC
LIMIT 1
`
	return r.fetch(ctx, "get active", q, customerID)
}

func (r *postgresRepo) Update(ctx context.Context, id string, patch domain.CartPatch) (*domain.Cart, error) {
	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	const q = `
UPDATE carts
SET status = COALESCE($2, status),
    total_cents = COALESCE($3, total_cents),
    billing_address_id = COALESCE($4, billing_address_id),
    shipping_address_id = COALESCE($5, shipping_address_id),
    delivery_method = COALESCE($6, delivery_method),
    updated_at = now()
WHERE id = $1
RETURNING ` + cartColumns
	cart, err := scanCart(r.q.QueryRow(ctx, q, id, status, patch.TotalCents, patch.BillingAddressID, patch.ShippingAddressID, patch.DeliveryMethod))
	if err != nil {
		if db.IsMissing(err) {
			return nil, domain.ErrCartNotFound
		}
		r.logger.Error("cart repo: update", zap.String("cart_id", id), zap.Error(err))
		return nil, err
	}
	return cart, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		if db.IsMissing(err) {
			return domain.ErrCartNotFound
		}
		r.logger.Error("cart repo: delete", zap.String("cart_id", id), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrCartNotFound
	}
	return nil
}

func (r *postgresRepo) fetch(ctx context.Context, op, query string, args ...any) (*domain.Cart, error) {
	cart, err := scanCart(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if db.IsMissing(err) {
			r.logger.Debug("cart repo: "+op+" not found", zap.Any("args", args))
			return nil, domain.ErrCartNotFound
		}
		r.logger.Error("cart repo: "+op, zap.Any("args", args), zap.Error(err))
		return nil, err
	}
	return cart, nil
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var (
		cart   domain.Cart
		status string
	)
	if err := row.Scan(
		&cart.ID,
		&cart.CustomerID,
		&status,
		&cart.TotalCents,
		&cart.BillingAddressID,
		&cart.ShippingAddressID,
		&cart.DeliveryMethod,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	); err != nil {
		return nil, err
	}
	cart.Status = domain.CartStatus(status)
	return &cart, nil
}
