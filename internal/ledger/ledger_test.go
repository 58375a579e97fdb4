package ledger

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"bookstore/internal/domain"
)

func checkInvariants(t *testing.T, cart domain.Cart) {
	t.Helper()
	var sum int64
	for _, line := range cart.LineItems {
		if line.TotalCents != line.PriceCents*int64(line.Quantity) {
			t.Fatalf("line %s total %d != %d * %d", line.ID, line.TotalCents, line.PriceCents, line.Quantity)
		}
		if line.Quantity <= 0 {
			t.Fatalf("line %s has non-positive quantity %d", line.ID, line.Quantity)
		}
		sum += line.TotalCents
	}
	if cart.TotalCents != sum {
		t.Fatalf("cart total %d != line sum %d", cart.TotalCents, sum)
	}
}

func TestAddQuantity_NewLine(t *testing.T) {
	cart := &domain.Cart{ID: "cart", Status: domain.CartActive}
	book := domain.Book{ID: "b1", PriceCents: 50}

	change, err := AddQuantity(cart, book, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if change.Created == nil || change.Updated != nil || change.DeletedID != "" {
		t.Fatalf("expected a created line, got %+v", change)
	}
	if change.Created.Quantity != 2 || change.Created.PriceCents != 50 || change.Created.TotalCents != 100 {
		t.Fatalf("unexpected line %+v", change.Created)
	}
	if cart.TotalCents != 100 || change.TotalCents != 100 || len(cart.LineItems) != 1 {
		t.Fatalf("unexpected cart %+v", cart)
	}
	checkInvariants(t, *cart)
}

func TestAddQuantity_MergesSameBookAtCapturedPrice(t *testing.T) {
	cart := &domain.Cart{ID: "cart", LineItems: []domain.LineItem{
		{ID: "l1", CartID: "cart", BookID: "b1", PriceCents: 50, Quantity: 2, TotalCents: 100},
	}, TotalCents: 100}
	repriced := domain.Book{ID: "b1", PriceCents: 80}

	change, err := AddQuantity(cart, repriced, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if change.Updated == nil || change.Updated.ID != "l1" {
		t.Fatalf("expected update of l1, got %+v", change)
	}
	if change.Updated.Quantity != 5 || change.Updated.PriceCents != 50 || change.Updated.TotalCents != 250 {
		t.Fatalf("unexpected merged line %+v", change.Updated)
	}
	if len(cart.LineItems) != 1 || cart.TotalCents != 250 {
		t.Fatalf("unexpected cart %+v", cart)
	}
	checkInvariants(t, *cart)
}

func TestAddQuantity_ResumsDriftedTotal(t *testing.T) {
	cart := &domain.Cart{ID: "cart", TotalCents: 9999, LineItems: []domain.LineItem{
		{ID: "l1", BookID: "b1", PriceCents: 10, Quantity: 1, TotalCents: 10},
	}}
	if _, err := AddQuantity(cart, domain.Book{ID: "b2", PriceCents: 5}, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.TotalCents != 20 {
		t.Fatalf("expected resummed total 20, got %d", cart.TotalCents)
	}
	checkInvariants(t, *cart)
}

func TestAddQuantity_RejectsNonPositive(t *testing.T) {
	for _, qty := range []int{0, -1} {
		cart := &domain.Cart{ID: "cart"}
		if _, err := AddQuantity(cart, domain.Book{ID: "b1", PriceCents: 50}, qty); !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("qty %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
		if len(cart.LineItems) != 0 {
			t.Fatalf("qty %d: cart mutated", qty)
		}
	}
}

func TestAddQuantity_RejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name  string
		lines []domain.LineItem
		book  domain.Book
		qty   int
	}{
		{
			name: "quantity above line bound",
			book: domain.Book{ID: "b1", PriceCents: 50},
			qty:  math.MaxInt64 / 40,
		},
		{
			name: "line total overflows",
			book: domain.Book{ID: "b1", PriceCents: math.MaxInt64 / 10},
			qty:  100,
		},
		{
			name:  "merged quantity above line bound",
			lines: []domain.LineItem{{ID: "l1", BookID: "b1", PriceCents: 1, Quantity: MaxQuantity - 1, TotalCents: MaxQuantity - 1}},
			book:  domain.Book{ID: "b1", PriceCents: 1},
			qty:   2,
		},
		{
			name:  "cart total overflows",
			lines: []domain.LineItem{{ID: "l1", BookID: "b1", PriceCents: math.MaxInt64 - 10, Quantity: 1, TotalCents: math.MaxInt64 - 10}},
			book:  domain.Book{ID: "b2", PriceCents: 20},
			qty:   1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cart := &domain.Cart{ID: "cart", LineItems: append([]domain.LineItem(nil), tc.lines...)}
			cart.TotalCents = Resum(cart.LineItems)
			before := *cart
			before.LineItems = append([]domain.LineItem(nil), cart.LineItems...)

			if _, err := AddQuantity(cart, tc.book, tc.qty); !errors.Is(err, domain.ErrInvalidQuantity) {
				t.Fatalf("expected ErrInvalidQuantity, got %v", err)
			}
			if !reflect.DeepEqual(before, *cart) {
				t.Fatalf("cart mutated: %+v", cart)
			}
			if cart.TotalCents < 0 {
				t.Fatalf("negative total %d", cart.TotalCents)
			}
		})
	}
}

func TestAddQuantity_AcceptsLineBound(t *testing.T) {
	cart := &domain.Cart{ID: "cart"}
	if _, err := AddQuantity(cart, domain.Book{ID: "b1", PriceCents: 3}, MaxQuantity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.TotalCents != 3*MaxQuantity {
		t.Fatalf("unexpected total %d", cart.TotalCents)
	}
	checkInvariants(t, *cart)
}

func TestRemoveQuantity(t *testing.T) {
	cases := []struct {
		name      string
		remove    int
		wantLines int
		wantQty   int
		wantTotal int64
	}{
		{name: "partial", remove: 1, wantLines: 1, wantQty: 1, wantTotal: 50},
		{name: "exact", remove: 2, wantLines: 0, wantTotal: 0},
		{name: "more than present", remove: 3, wantLines: 0, wantTotal: 0},
		{name: "far more than present", remove: 1000, wantLines: 0, wantTotal: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cart := &domain.Cart{ID: "cart", TotalCents: 100, LineItems: []domain.LineItem{
				{ID: "l1", CartID: "cart", BookID: "b1", PriceCents: 50, Quantity: 2, TotalCents: 100},
			}}
			change, err := RemoveQuantity(cart, "l1", tc.remove)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(cart.LineItems) != tc.wantLines || cart.TotalCents != tc.wantTotal || change.TotalCents != tc.wantTotal {
				t.Fatalf("unexpected cart %+v", cart)
			}
			if tc.wantLines == 0 {
				if change.DeletedID != "l1" {
					t.Fatalf("expected delete of l1, got %+v", change)
				}
			} else {
				if change.Updated == nil || change.Updated.Quantity != tc.wantQty {
					t.Fatalf("expected update to qty %d, got %+v", tc.wantQty, change)
				}
			}
			checkInvariants(t, *cart)
		})
	}
}

func TestRemoveQuantity_Errors(t *testing.T) {
	cart := &domain.Cart{ID: "cart", LineItems: []domain.LineItem{
		{ID: "l1", BookID: "b1", PriceCents: 50, Quantity: 2, TotalCents: 100},
	}, TotalCents: 100}

	if _, err := RemoveQuantity(cart, "missing", 1); !errors.Is(err, domain.ErrLineItemNotFound) {
		t.Fatalf("expected ErrLineItemNotFound, got %v", err)
	}
	if _, err := RemoveQuantity(cart, "l1", 0); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if cart.LineItems[0].Quantity != 2 || cart.TotalCents != 100 {
		t.Fatalf("cart mutated by rejected removal: %+v", cart)
	}
}

func TestRemoveQuantity_KeepsOtherLines(t *testing.T) {
	cart := &domain.Cart{ID: "cart", LineItems: []domain.LineItem{
		{ID: "l1", BookID: "b1", PriceCents: 50, Quantity: 2, TotalCents: 100},
		{ID: "l2", BookID: "b2", PriceCents: 30, Quantity: 1, TotalCents: 30},
		{ID: "l3", BookID: "b3", PriceCents: 7, Quantity: 3, TotalCents: 21},
	}, TotalCents: 151}

	if _, err := RemoveQuantity(cart, "l2", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.LineItems) != 2 || cart.LineItems[0].ID != "l1" || cart.LineItems[1].ID != "l3" {
		t.Fatalf("unexpected remaining lines %+v", cart.LineItems)
	}
	if cart.TotalCents != 121 {
		t.Fatalf("expected total 121, got %d", cart.TotalCents)
	}
	checkInvariants(t, *cart)
}
