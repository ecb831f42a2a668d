package domain

import "time"

// User represents a registered account. PasswordHash never leaves the
// service layer.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthPayload pairs a signed credential token with the user it was issued
// for. It is returned from signup and login and never persisted.
type AuthPayload struct {
	Token string
	User  *User
}
