// Package ledger holds the quantity and price arithmetic of cart line items.
// It mutates the in-memory cart and describes the single write the caller
// must persist.
package ledger

import (
	"fmt"
	"math"

	"bookstore/internal/domain"
)

// MaxQuantity bounds a single line's quantity; it matches the INTEGER
// column the line is stored in.
const MaxQuantity = math.MaxInt32

// Change is the outcome of one ledger operation.
type Change struct {
	// Created is set when a new line must be inserted.
	Created *domain.LineItem
	// Updated is set when an existing line's quantity and total changed.
	Updated *domain.LineItem
	// DeletedID is set when a line must be removed.
	DeletedID string
	// TotalCents is the cart total after the change.
	TotalCents int64
}

// LineTotal is price * quantity.
func LineTotal(priceCents int64, quantity int) int64 {
	return priceCents * int64(quantity)
}

// checkedLineTotal is LineTotal that reports int64 overflow.
func checkedLineTotal(priceCents int64, quantity int) (int64, bool) {
	if priceCents < 0 || quantity < 0 {
		return 0, false
	}
	if priceCents != 0 && int64(quantity) > math.MaxInt64/priceCents {
		return 0, false
	}
	return priceCents * int64(quantity), true
}

// Resum recomputes a cart total from its lines.
func Resum(lines []domain.LineItem) int64 {
	var total int64
	for _, line := range lines {
		total += line.TotalCents
	}
	return total
}

// AddQuantity adds quantity copies of book to cart. A book already in the
// cart is merged into its existing line and keeps the price captured on
// first add.
func AddQuantity(cart *domain.Cart, book domain.Book, quantity int) (Change, error) {
	if quantity <= 0 {
		return Change{}, domain.ErrInvalidQuantity
	}
	if quantity > MaxQuantity {
		return Change{}, fmt.Errorf("%w: at most %d per line", domain.ErrInvalidQuantity, MaxQuantity)
	}

	idx := cart.LineByBook(book.ID)
	price, newQty := book.PriceCents, quantity
	if idx >= 0 {
		price = cart.LineItems[idx].PriceCents
		newQty = cart.LineItems[idx].Quantity + quantity
		if newQty > MaxQuantity {
			return Change{}, fmt.Errorf("%w: at most %d per line", domain.ErrInvalidQuantity, MaxQuantity)
		}
	}
	lineTotal, ok := checkedLineTotal(price, newQty)
	if !ok {
		return Change{}, fmt.Errorf("%w: line total out of range", domain.ErrInvalidQuantity)
	}
	cartTotal := lineTotal
	for i, line := range cart.LineItems {
		if i == idx {
			continue
		}
		if line.TotalCents > math.MaxInt64-cartTotal {
			return Change{}, fmt.Errorf("%w: cart total out of range", domain.ErrInvalidQuantity)
		}
		cartTotal += line.TotalCents
	}

	var change Change
	if idx >= 0 {
		line := &cart.LineItems[idx]
		line.Quantity = newQty
		line.TotalCents = lineTotal
		updated := *line
		change.Updated = &updated
	} else {
		line := domain.LineItem{
			CartID:     cart.ID,
			BookID:     book.ID,
			PriceCents: price,
			Quantity:   newQty,
			TotalCents: lineTotal,
		}
		cart.LineItems = append(cart.LineItems, line)
		change.Created = &line
	}

	cart.TotalCents = cartTotal
	change.TotalCents = cart.TotalCents
	return change, nil
}

// RemoveQuantity takes quantity copies out of the line. Removing the whole
// quantity or more deletes the line.
func RemoveQuantity(cart *domain.Cart, lineItemID string, quantity int) (Change, error) {
	if quantity <= 0 {
		return Change{}, domain.ErrInvalidQuantity
	}
	idx := cart.LineByID(lineItemID)
	if idx < 0 {
		return Change{}, domain.ErrLineItemNotFound
	}

	var change Change
	line := &cart.LineItems[idx]
	if quantity < line.Quantity {
		line.Quantity -= quantity
		line.TotalCents = LineTotal(line.PriceCents, line.Quantity)
		updated := *line
		change.Updated = &updated
	} else {
		change.DeletedID = line.ID
		cart.LineItems = append(cart.LineItems[:idx:idx], cart.LineItems[idx+1:]...)
	}

	cart.TotalCents = Resum(cart.LineItems)
	change.TotalCents = cart.TotalCents
	return change, nil
}
