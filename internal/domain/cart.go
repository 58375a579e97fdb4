package domain

import "time"

type CartStatus string

const (
	CartActive   CartStatus = "active"
	CartInactive CartStatus = "inactive"
)

type Cart struct {
	ID                string     `json:"id"`
	CustomerID        string     `json:"customerId"`
	Status            CartStatus `json:"status"`
	TotalCents        int64      `json:"totalCents"`
	BillingAddressID  *string    `json:"billingAddressId,omitempty"`
	ShippingAddressID *string    `json:"shippingAddressId,omitempty"`
	DeliveryMethod    *string    `json:"deliveryMethod,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	LineItems         []LineItem `json:"lineItems,omitempty"`
}

// Active reports whether the cart still accepts line item changes.
func (c Cart) Active() bool {
	return c.Status == CartActive
}

// LineByBook returns the index of the line referencing bookID, or -1.
func (c Cart) LineByBook(bookID string) int {
	for i, line := range c.LineItems {
		if line.BookID == bookID {
			return i
		}
	}
	return -1
}

// LineByID returns the index of the line with the given id, or -1.
func (c Cart) LineByID(id string) int {
	for i, line := range c.LineItems {
		if line.ID == id {
			return i
		}
	}
	return -1
}

type LineItem struct {
	ID         string    `json:"id"`
	CartID     string    `json:"cartId"`
	BookID     string    `json:"bookId"`
	PriceCents int64     `json:"priceCents"`
	Quantity   int       `json:"quantity"`
	TotalCents int64     `json:"totalCents"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CartPatch carries a partial cart update. Nil fields are left untouched.
type CartPatch struct {
	Status            *CartStatus `json:"status,omitempty"`
	TotalCents        *int64      `json:"totalCents,omitempty"`
	BillingAddressID  *string     `json:"billingAddressId,omitempty"`
	ShippingAddressID *string     `json:"shippingAddressId,omitempty"`
	DeliveryMethod    *string     `json:"deliveryMethod,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p CartPatch) Empty() bool {
	return p.Status == nil && p.TotalCents == nil && p.BillingAddressID == nil &&
		p.ShippingAddressID == nil && p.DeliveryMethod == nil
}

// Apply merges the patch into c.
func (p CartPatch) Apply(c *Cart) {
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.TotalCents != nil {
		c.TotalCents = *p.TotalCents
	}
	if p.BillingAddressID != nil {
		v := *p.BillingAddressID
		c.BillingAddressID = &v
	}
	if p.ShippingAddressID != nil {
		v := *p.ShippingAddressID
		c.ShippingAddressID = &v
	}
	if p.DeliveryMethod != nil {
		v := *p.DeliveryMethod
		c.DeliveryMethod = &v
	}
}
