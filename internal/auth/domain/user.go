package domain

import "time"

// User is a resource owner. Users live in exactly one realm; password grants
// resolve usernames within the requesting client's realm only.
type User struct {
	ID           string
	Username     string
	PasswordHash string // argon2 encoded
	Frontend     Frontend
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
