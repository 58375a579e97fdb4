package cart

import (
	"context"
	"errors"
	"os"
	"testing"

	"bookstore/internal/domain"
	"bookstore/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_CreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE outbox, orders, line_items, carts, books, customers CASCADE`); err != nil {
		t.Fatalf("reset tables: %v", err)
	}

	var customerID string
	err := pool.QueryRow(ctx, `INSERT INTO customers (user_id, email) VALUES ('repo-user', 'repo@example.com') RETURNING id::text`).Scan(&customerID)
	if err != nil {
		t.Fatalf("insert customer: %v", err)
	}

	repo := NewPostgres(pool, nil)
	created, err := repo.Create(ctx, CreateCartInput{CustomerID: customerID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.CustomerID != customerID || created.Status != domain.CartActive || created.TotalCents != 0 {
		t.Fatalf("unexpected cart %+v", created)
	}

	method := "courier"
	updated, err := repo.Update(ctx, created.ID, domain.CartPatch{DeliveryMethod: &method})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.DeliveryMethod == nil || *updated.DeliveryMethod != method || updated.Status != domain.CartActive {
		t.Fatalf("patch not applied partially: %+v", updated)
	}

	active, err := repo.GetActiveByCustomer(ctx, customerID)
	if err != nil || active.ID != created.ID {
		t.Fatalf("GetActiveByCustomer: %+v, %v", active, err)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, created.ID); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound for malformed id, got %v", err)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set; skipping integration test")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}
