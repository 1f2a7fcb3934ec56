package domain

import "time"

// Role names carried in access tokens.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// User is the domain entity for a portal account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}
