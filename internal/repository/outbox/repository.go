package outbox

import (
	"context"

	"bookstore/internal/domain"
)

// Repository stores events awaiting publication.
type Repository interface {
	Append(ctx context.Context, ev domain.OutboxEvent) error
	FetchPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	MarkSent(ctx context.Context, id int64) error
}
