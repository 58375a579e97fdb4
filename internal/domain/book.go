package domain

import "time"

type Book struct {
	ID         string    `json:"id"`
	ISBN       string    `json:"isbn"`
	Title      string    `json:"title"`
	Author     string    `json:"author,omitempty"`
	PriceCents int64     `json:"priceCents"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"createdAt"`
}
