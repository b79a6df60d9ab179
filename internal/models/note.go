package models

import "time"

// Space is a named container for notes
type Space struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Note is a voice or text note belonging to exactly one space
type Note struct {
	ID        string          `json:"id"`
	SpaceID   string          `json:"space_id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Recording *VoiceRecording `json:"recording,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
