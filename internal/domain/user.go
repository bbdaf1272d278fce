package domain

import "time"

// User is an agent or requester account. Staff users may manage the
// knowledge base and see internal comments.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsStaff      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
