package order

import (
	"context"

	"bookstore/internal/db"
	"bookstore/internal/domain"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const orderColumns = `id::text, cart_id::text, customer_id::text, order_number, status, payment_method, created_at`

type postgresRepo struct {
	q      db.Querier
	logger *zap.Logger
}

func NewPostgres(q db.Querier, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{q: q, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	const q = `
INSERT INTO orders (cart_id, customer_id, order_number, status, payment_method)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + orderColumns
	out, err := scanOrder(r.q.QueryRow(ctx, q, o.CartID, o.CustomerID, o.OrderNumber, string(o.Status), string(o.PaymentMethod)))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("order repo: create", zap.String("cart_id", o.CartID), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("order repo: created", zap.String("order_id", out.ID), zap.String("order_number", out.OrderNumber))
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.fetch(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *postgresRepo) GetByCartID(ctx context.Context, cartID string) (*domain.Order, error) {
	return r.fetch(ctx, `SELECT `+orderColumns+` FROM orders WHERE cart_id = $1`, cartID)
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string, page domain.Page) ([]domain.Order, error) {
	page = page.Normalize()
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE customer_id = $1
ORDER BY created_at ASC, id ASC
LIMIT $2 OFFSET $3
`
	rows, err := r.q.Query(ctx, q, customerID, page.Limit, page.Offset)
	if err != nil {
		r.logger.Error("order repo: list", zap.String("customer_id", customerID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *postgresRepo) fetch(ctx context.Context, query string, arg string) (*domain.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if db.IsMissing(err) {
			return nil, domain.ErrOrderNotFound
		}
		r.logger.Error("order repo: get", zap.String("arg", arg), zap.Error(err))
		return nil, err
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o             domain.Order
		status        string
		paymentMethod string
	)
	if err := row.Scan(&o.ID, &o.CartID, &o.CustomerID, &o.OrderNumber, &status, &paymentMethod, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	o.PaymentMethod = domain.PaymentMethod(paymentMethod)
	return &o, nil
}
