package domain

import (
	"encoding/json"
	"time"
)

const TopicOrderCreated = "order.created"

// OutboxEvent is a message recorded in the same transaction as the change it describes.
type OutboxEvent struct {
	ID        int64           `json:"id"`
	EventID   string          `json:"eventId"`
	Topic     string          `json:"topic"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
	SentAt    *time.Time      `json:"sentAt,omitempty"`
}

// OrderCreatedPayload is the body of an order.created event.
type OrderCreatedPayload struct {
	OrderID       string        `json:"orderId"`
	OrderNumber   string        `json:"orderNumber"`
	CartID        string        `json:"cartId"`
	CustomerID    string        `json:"customerId"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	TotalCents    int64         `json:"totalCents"`
	CreatedAt     time.Time     `json:"createdAt"`
}
