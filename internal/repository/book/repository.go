package book

import (
	"context"

	"bookstore/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Book, error)
	GetByID(ctx context.Context, id string) (*domain.Book, error)
	Upsert(ctx context.Context, book domain.Book) (*domain.Book, error)
}
