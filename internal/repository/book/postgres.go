package book

import (
	"context"
	"fmt"

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

func (r *postgresRepo) List(ctx context.Context) ([]domain.Book, error) {
	const q = `
SELECT id::text, isbn, title, COALESCE(author, ''), price_cents, currency, created_at
FROM books
ORDER BY title ASC
`
	rows, err := r.q.Query(ctx, q)
	if err != nil {
		r.logger.Error("book repo: list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.PriceCents, &b.Currency, &b.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("book repo: list rows", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("book repo: list", zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	const q = `
SELECT id::text, isbn, title, COALESCE(author, ''), price_cents, currency, created_at
FROM books
WHERE id = $1
`
	var b domain.Book
	err := r.q.QueryRow(ctx, q, id).Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.PriceCents, &b.Currency, &b.CreatedAt)
	if err != nil {
		if db.IsMissing(err) {
			r.logger.Debug("book repo: get not found", zap.String("book_id", id))
			return nil, domain.ErrBookNotFound
		}
		r.logger.Error("book repo: get", zap.String("book_id", id), zap.Error(err))
		return nil, err
	}
	return &b, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, book domain.Book) (*domain.Book, error) {
	const q = `
INSERT INTO books (id, isbn, title, author, price_cents, currency)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, NULLIF($4, ''), $5, $6)
ON CONFLICT (isbn) DO UPDATE SET
    title = EXCLUDED.title,
    author = EXCLUDED.author,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency
RETURNING id::text, created_at
`
	res := book
	err := r.q.QueryRow(ctx, q, book.ID, book.ISBN, book.Title, book.Author, book.PriceCents, book.Currency).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error("book repo: upsert", zap.String("isbn", book.ISBN), zap.Error(err))
		return nil, err
	}
	if book.ID != "" && res.ID != book.ID {
		return nil, fmt.Errorf("book repo: id mismatch for isbn=%s existing_id=%s import_id=%s", book.ISBN, res.ID, book.ID)
	}
	r.logger.Debug("book repo: upserted", zap.String("isbn", res.ISBN), zap.String("book_id", res.ID))
	return &res, nil
}
