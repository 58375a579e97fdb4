package book

import (
	"context"

	"bookstore/internal/domain"
	"bookstore/internal/uow"
)

// Service exposes the book catalog read side.
type Service struct{}

func New() *Service {
	return &Service{}
}

func (s *Service) List(ctx context.Context, tx uow.Tx) ([]domain.Book, error) {
	books, err := tx.Books().List(ctx)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []domain.Book{}
	}
	return books, nil
}

func (s *Service) Get(ctx context.Context, tx uow.Tx, id string) (*domain.Book, error) {
	return tx.Books().GetByID(ctx, id)
}
