package customer

import (
	"context"
	"strings"

	"bookstore/internal/db"
	"bookstore/internal/domain"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type postgresRepo struct {
	q      db.Querier
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(q db.Querier, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{q: q, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	const q = `
INSERT INTO customers (user_id, email)
VALUES ($1, $2)
RETURNING id::text, user_id, email, created_at
`
	return r.scanCustomer(r.q.QueryRow(ctx, q, c.UserID, strings.ToLower(c.Email)))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const q = `SELECT id::text, user_id, email, created_at FROM customers WHERE id = $1`
	return r.scanCustomer(r.q.QueryRow(ctx, q, id))
}

func (r *postgresRepo) GetByUserID(ctx context.Context, userID string) (*domain.Customer, error) {
	const q = `SELECT id::text, user_id, email, created_at FROM customers WHERE user_id = $1`
	return r.scanCustomer(r.q.QueryRow(ctx, q, userID))
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.UserID, &c.Email, &c.CreatedAt)
	if err != nil {
		if db.IsMissing(err) {
			return nil, domain.ErrCustomerNotFound
		}
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("customer repo: scan", zap.Error(err))
		return nil, err
	}
	return &c, nil
}
