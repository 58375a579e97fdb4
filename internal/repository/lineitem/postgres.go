package lineitem

import (
	"context"

	"bookstore/internal/db"
	"bookstore/internal/domain"
	"go.uber.org/zap"
)

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

func (r *postgresRepo) ListByCart(ctx context.Context, cartID string) ([]domain.LineItem, error) {
	const q = `
SELECT id::text, cart_id::text, book_id::text, price_cents, quantity, total_cents, created_at
FROM line_items
WHERE cart_id = $1
ORDER BY seq ASC
`
	rows, err := r.q.Query(ctx, q, cartID)
	if err != nil {
		r.logger.Error("line item repo: list", zap.String("cart_id", cartID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.BookID,
			&item.PriceCents,
			&item.Quantity,
			&item.TotalCents,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *postgresRepo) Create(ctx context.Context, item domain.LineItem) (*domain.LineItem, error) {
	const q = `
INSERT INTO line_items (cart_id, book_id, price_cents, quantity, total_cents)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text, created_at
`
	out := item
	if err := r.q.QueryRow(ctx, q, item.CartID, item.BookID, item.PriceCents, item.Quantity, item.TotalCents).Scan(&out.ID, &out.CreatedAt); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("line item repo: create", zap.String("cart_id", item.CartID), zap.String("book_id", item.BookID), zap.Error(err))
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) UpdateQuantity(ctx context.Context, cartID, id string, quantity int, totalCents int64) error {
	cmd, err := r.q.Exec(ctx, `
UPDATE line_items
SET quantity = $1, total_cents = $2
WHERE id = $3 AND cart_id = $4
`, quantity, totalCents, id, cartID)
	if err != nil {
		if db.IsMissing(err) {
			return domain.ErrLineItemNotFound
		}
		r.logger.Error("line item repo: update", zap.String("line_item_id", id), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrLineItemNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, cartID, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM line_items WHERE id = $1 AND cart_id = $2`, id, cartID)
	if err != nil {
		if db.IsMissing(err) {
			return domain.ErrLineItemNotFound
		}
		r.logger.Error("line item repo: delete", zap.String("line_item_id", id), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrLineItemNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteByCart(ctx context.Context, cartID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM line_items WHERE cart_id = $1`, cartID)
	return err
}
