package chat

import "time"

// Session captures one anonymous conversation and its lifecycle timestamps.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
