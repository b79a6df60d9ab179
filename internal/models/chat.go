package models

import "time"

// Message is a single chat exchange line, user or assistant
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	IsUser    bool      `json:"is_user"`
	CreatedAt time.Time `json:"created_at"`
}
