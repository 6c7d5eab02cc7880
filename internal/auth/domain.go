package auth

import "time"

// Admin is a console operator account.
type Admin struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Principal identifies the authenticated admin behind a request.
type Principal struct {
	AdminID   string
	Username  string
	TokenID   string
	ExpiresAt time.Time
}
