package seed

import (
	"context"
	"fmt"

	"bookstore/internal/domain"
	customersvc "bookstore/internal/service/customer"
	"bookstore/internal/uow"
)

type customerSeed struct {
	UserID string
	Email  string
}

var books = []domain.Book{
	{ISBN: "978-0134190440", Title: "The Go Programming Language", Author: "Alan Donovan, Brian Kernighan", PriceCents: 3999, Currency: "USD"},
	{ISBN: "978-1492077213", Title: "Designing Data-Intensive Applications", Author: "Martin Kleppmann", PriceCents: 4599, Currency: "USD"},
	{ISBN: "978-0201633610", Title: "Design Patterns", Author: "Gamma, Helm, Johnson, Vlissides", PriceCents: 5499, Currency: "USD"},
}

var customers = []customerSeed{
	{UserID: "demo-user", Email: "demo@example.com"},
	{UserID: "demo-admin", Email: "admin@example.com"},
}

// Apply inserts basic seed data for manual testing. It is idempotent: books
// upsert by ISBN and customers are registered once per user id.
func Apply(ctx context.Context, runner uow.Runner) error {
	svc := customersvc.New()
	return runner.Run(ctx, func(ctx context.Context, tx uow.Tx) error {
		for _, b := range books {
			if _, err := tx.Books().Upsert(ctx, b); err != nil {
				return fmt.Errorf("upsert book %s: %w", b.ISBN, err)
			}
		}
		for _, c := range customers {
			if _, err := svc.Register(ctx, tx, c.UserID, c.Email); err != nil {
				return fmt.Errorf("register customer %s: %w", c.UserID, err)
			}
		}
		return nil
	})
}
