package domain

import "time"

// Customer links an authenticated user to the shopping records it owns.
type Customer struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
