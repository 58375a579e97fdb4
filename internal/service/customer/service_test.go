package customer

import (
	"context"
	"errors"
	"testing"

	"bookstore/internal/domain"
	"bookstore/internal/repository/memory"
	"bookstore/internal/uow"
)

func TestRegisterAndResolve(t *testing.T) {
	ctx := context.Background()
	runner := uow.NewMemory(memory.NewStore(), uow.Hooks{})
	svc := New()

	created, err := uow.Do(ctx, runner, func(ctx context.Context, tx uow.Tx) (*domain.Customer, error) {
		return svc.Register(ctx, tx, "user-1", " Reader@Example.com ")
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.ID == "" || created.Email != "reader@example.com" {
		t.Fatalf("unexpected customer %+v", created)
	}

	again, err := uow.Do(ctx, runner, func(ctx context.Context, tx uow.Tx) (*domain.Customer, error) {
		return svc.Register(ctx, tx, "user-1", "reader@example.com")
	})
	if err != nil || again.ID != created.ID {
		t.Fatalf("expected the existing customer back, got %+v, %v", again, err)
	}

	resolved, err := uow.Do(ctx, runner, func(ctx context.Context, tx uow.Tx) (*domain.Customer, error) {
		return svc.Resolve(ctx, tx, "user-1")
	})
	if err != nil || resolved.ID != created.ID {
		t.Fatalf("unexpected resolve result %+v, %v", resolved, err)
	}
}

func TestRegister_Validation(t *testing.T) {
	runner := uow.NewMemory(memory.NewStore(), uow.Hooks{})
	svc := New()

	cases := []struct {
		name   string
		userID string
		email  string
	}{
		{name: "missing user", userID: " ", email: "a@example.com"},
		{name: "bad email", userID: "user-1", email: "not-an-email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := runner.Run(context.Background(), func(ctx context.Context, tx uow.Tx) error {
				_, err := svc.Register(ctx, tx, tc.userID, tc.email)
				return err
			})
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestResolve_Unknown(t *testing.T) {
	runner := uow.NewMemory(memory.NewStore(), uow.Hooks{})
	svc := New()
	for _, userID := range []string{"", "ghost"} {
		err := runner.Run(context.Background(), func(ctx context.Context, tx uow.Tx) error {
			_, err := svc.Resolve(ctx, tx, userID)
			return err
		})
		if !errors.Is(err, domain.ErrCustomerNotFound) {
			t.Fatalf("user %q: expected ErrCustomerNotFound, got %v", userID, err)
		}
	}
}
